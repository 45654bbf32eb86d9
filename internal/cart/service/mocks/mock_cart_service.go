package mocks

import (
	"context"

	"github.com/ridloal/apparel-store/internal/cart/domain"
	"github.com/ridloal/apparel-store/internal/cart/service"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*domain.Cart, error) {
	if c := args.Get(0); c != nil {
		return c.(*domain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, req domain.AddItemRequest, design *service.DesignUpload) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, req, design))
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, itemID string, req domain.UpdateItemRequest, design *service.DesignUpload) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID, req, design))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) ClearCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
