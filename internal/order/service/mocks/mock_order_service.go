package mocks

import (
	"context"

	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/order/service"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID string, shipping domain.ShippingDetails) (*service.Checkout, error) {
	args := m.Called(ctx, userID, shipping)
	if r := args.Get(0); r != nil {
		return r.(*service.Checkout), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID, isAdmin)
	if r := args.Get(0); r != nil {
		return r.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if r := args.Get(0); r != nil {
		return r.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) PreparePayment(ctx context.Context, orderID, userID string) (*gateway.PaymentRequest, error) {
	args := m.Called(ctx, orderID, userID)
	if r := args.Get(0); r != nil {
		return r.(*gateway.PaymentRequest), args.Error(1)
	}
	return nil, args.Error(1)
}
