package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridloal/apparel-store/internal/platform/logger"
	"github.com/ridloal/apparel-store/internal/product/domain"
	"github.com/ridloal/apparel-store/internal/product/repository"
)

var ErrInvalidProduct = errors.New("invalid product")

// ImageDeleter menghapus gambar lama dari object storage.
type ImageDeleter interface {
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductDetails(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type productServiceImpl struct {
	repo   repository.ProductRepository
	images ImageDeleter
}

func NewProductService(repo repository.ProductRepository, images ImageDeleter) ProductService {
	return &productServiceImpl{
		repo:   repo,
		images: images,
	}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *productServiceImpl) GetProductDetails(ctx context.Context, productID string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, productID)
}

func validateProduct(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	}
	if len(p.AvailableSizes) == 0 || len(p.AvailableColors) == 0 {
		return fmt.Errorf("%w: at least one size and one color are required", ErrInvalidProduct)
	}
	for _, size := range p.AvailableSizes {
		if !domain.IsKnownSize(size) {
			return fmt.Errorf("%w: unknown size %q", ErrInvalidProduct, size)
		}
	}
	return nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price.Round(2),
		AvailableSizes:  req.AvailableSizes,
		AvailableColors: req.AvailableColors,
		Style:           req.Style,
		ImageURL:        req.ImageURL,
		ImageID:         req.ImageID,
	}
	if p.Style == "" {
		p.Style = "Regular"
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("could not save product: %w", err)
	}
	return p, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	p, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	oldImageID := p.ImageID

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.AvailableSizes != nil {
		p.AvailableSizes = req.AvailableSizes
	}
	if req.AvailableColors != nil {
		p.AvailableColors = req.AvailableColors
	}
	if req.Style != nil {
		p.Style = *req.Style
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.ImageID != nil {
		p.ImageID = *req.ImageID
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	if oldImageID != "" && oldImageID != p.ImageID {
		s.deleteImage(ctx, oldImageID)
	}
	return p, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID string) error {
	p, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	if p.ImageID != "" {
		s.deleteImage(ctx, p.ImageID)
	}
	return nil
}

// deleteImage best-effort; produk sudah tersimpan, file yatim hanya dicatat.
func (s *productServiceImpl) deleteImage(ctx context.Context, imageID string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		logger.Warn("Product image %s could not be deleted: %v", imageID, err)
	}
}
