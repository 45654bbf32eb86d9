package mocks

import (
	"context"

	"github.com/ridloal/apparel-store/internal/cart/domain"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	if args.Error(0) == nil {
		cart.Version++
	}
	return args.Error(0)
}

func (m *MockCartRepository) DeleteCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
