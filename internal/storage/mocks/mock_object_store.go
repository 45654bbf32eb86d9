package mocks

import (
	"context"
	"io"

	"github.com/ridloal/apparel-store/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, filename string, r io.Reader) (*storage.Object, error) {
	args := m.Called(ctx, filename, r)
	if obj := args.Get(0); obj != nil {
		return obj.(*storage.Object), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
