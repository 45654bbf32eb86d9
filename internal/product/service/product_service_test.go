package service

import (
	"context"
	"errors"
	"testing"

	pDomain "github.com/ridloal/apparel-store/internal/product/domain"
	pRepo "github.com/ridloal/apparel-store/internal/product/repository"
	"github.com/ridloal/apparel-store/internal/product/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockImageDeleter struct {
	mock.Mock
}

func (m *mockImageDeleter) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Successful creation", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo, nil)
		req := pDomain.CreateProductRequest{
			Name:            " Classic Tee ",
			Price:           decimal.RequireFromString("24.999"),
			AvailableSizes:  []string{"Small", "Large"},
			AvailableColors: []string{"Black"},
		}
		mockRepo.On("CreateProduct", ctx, mock.MatchedBy(func(p *pDomain.Product) bool {
			return p.Name == "Classic Tee" && p.Style == "Regular"
		})).Return(nil).Once()

		p, err := svc.CreateProduct(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, "mock-product-id", p.ID)
		assert.Equal(t, "25", p.Price.String())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Validation errors", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo, nil)
		cases := []pDomain.CreateProductRequest{
			{Name: "", Price: decimal.NewFromInt(1), AvailableSizes: []string{"Small"}, AvailableColors: []string{"Red"}},
			{Name: "Tee", Price: decimal.Zero, AvailableSizes: []string{"Small"}, AvailableColors: []string{"Red"}},
			{Name: "Tee", Price: decimal.NewFromInt(1), AvailableSizes: []string{"XXS"}, AvailableColors: []string{"Red"}},
			{Name: "Tee", Price: decimal.NewFromInt(1), AvailableSizes: []string{"Small"}},
		}
		for _, req := range cases {
			_, err := svc.CreateProduct(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		}
		mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.TODO()
	existing := func() *pDomain.Product {
		return &pDomain.Product{
			ID: "prod1", Name: "Tee", Price: decimal.NewFromInt(20),
			AvailableSizes: []string{"Small"}, AvailableColors: []string{"Red"}, ImageID: "old.png",
		}
	}

	t.Run("Replacing image deletes the old object", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		images := new(mockImageDeleter)
		svc := NewProductService(mockRepo, images)
		newID := "new.png"
		newPrice := decimal.RequireFromString("19.50")

		mockRepo.On("GetProductByID", ctx, "prod1").Return(existing(), nil).Once()
		mockRepo.On("UpdateProduct", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()
		images.On("Delete", ctx, "old.png").Return(errors.New("storage down")).Once()

		p, err := svc.UpdateProduct(ctx, "prod1", pDomain.UpdateProductRequest{ImageID: &newID, Price: &newPrice})
		assert.NoError(t, err)
		assert.Equal(t, "new.png", p.ImageID)
		assert.Equal(t, "19.5", p.Price.String())
		images.AssertExpectations(t)
	})

	t.Run("Product not found", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo, nil)
		mockRepo.On("GetProductByID", ctx, "missing").Return(nil, pRepo.ErrProductNotFound).Once()

		_, err := svc.UpdateProduct(ctx, "missing", pDomain.UpdateProductRequest{})
		assert.ErrorIs(t, err, pRepo.ErrProductNotFound)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.TODO()
	mockRepo := new(mocks.MockProductRepository)
	images := new(mockImageDeleter)
	svc := NewProductService(mockRepo, images)

	mockRepo.On("GetProductByID", ctx, "prod1").Return(&pDomain.Product{ID: "prod1", ImageID: "img.jpg"}, nil).Once()
	mockRepo.On("DeleteProduct", ctx, "prod1").Return(nil).Once()
	images.On("Delete", ctx, "img.jpg").Return(nil).Once()

	assert.NoError(t, svc.DeleteProduct(ctx, "prod1"))
	mockRepo.AssertExpectations(t)
	images.AssertExpectations(t)
}
