package mocks

import (
	"context"

	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/payment/service"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) HandleCallback(ctx context.Context, fields gateway.Fields) (*service.CallbackResult, error) {
	args := m.Called(ctx, fields)
	if r := args.Get(0); r != nil {
		return r.(*service.CallbackResult), args.Error(1)
	}
	return nil, args.Error(1)
}
