package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	callArgs := append([]interface{}{ctx, query}, args...)
	ret := m.Called(callArgs...)
	var r0 sql.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(sql.Result)
	}
	return r0, ret.Error(1)
}

func (m *MockDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	callArgs := append([]interface{}{ctx, query}, args...)
	ret := m.Called(callArgs...)
	var r0 *sql.Rows
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*sql.Rows)
	}
	return r0, ret.Error(1)
}

// QueryRowContext: *sql.Row tidak bisa dibuat di luar database/sql,
// jadi test yang memanggil ini harus menyediakan return value.
func (m *MockDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	callArgs := append([]interface{}{ctx, query}, args...)
	ret := m.Called(callArgs...)
	if ret.Get(0) != nil {
		return ret.Get(0).(*sql.Row)
	}
	return nil
}

func (m *MockDBTX) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBTX) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
