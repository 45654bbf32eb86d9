package mocks

import (
	"context"
	"time"

	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	if order != nil && args.Error(0) == nil {
		order.PaymentStatus = domain.PaymentPending
		order.FulfillmentStatus = domain.FulfillmentProcessing
		order.CreatedAt = time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
		order.UpdatedAt = order.CreatedAt
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) TransitionPaymentStatus(ctx context.Context, orderID string, to domain.PaymentStatus, details domain.PaymentDetails) error {
	args := m.Called(ctx, orderID, to, details)
	return args.Error(0)
}
