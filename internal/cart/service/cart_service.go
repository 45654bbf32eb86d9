package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/ridloal/apparel-store/internal/cart/domain"
	"github.com/ridloal/apparel-store/internal/cart/repository"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	productDomain "github.com/ridloal/apparel-store/internal/product/domain"
	"github.com/ridloal/apparel-store/internal/storage"
)

var (
	ErrInvalidSize      = errors.New("invalid size for this product")
	ErrInvalidColor     = errors.New("invalid color for this product")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrCartItemNotFound = errors.New("item not found in cart")
)

const maxSaveAttempts = 3

// ProductLookup adalah bagian katalog yang dibutuhkan cart.
type ProductLookup interface {
	GetProductByID(ctx context.Context, id string) (*productDomain.Product, error)
}

// DesignUpload adalah file desain custom dari client (opsional).
type DesignUpload struct {
	Filename string
	Content  io.Reader
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, req domain.AddItemRequest, design *DesignUpload) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, req domain.UpdateItemRequest, design *DesignUpload) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartServiceImpl struct {
	repo     repository.CartRepository
	products ProductLookup
	objects  storage.ObjectStore
}

func NewCartService(repo repository.CartRepository, products ProductLookup, objects storage.ObjectStore) CartService {
	return &cartServiceImpl{repo: repo, products: products, objects: objects}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		// Cart kosong dibuat otomatis
		cart = domain.NewCart(userID)
		if err := s.repo.SaveCart(ctx, cart); err != nil && !errors.Is(err, repository.ErrCartConflict) {
			return nil, err
		}
		return cart, nil
	}
	return cart, err
}

// mutate membaca cart, menerapkan fn lalu menyimpan. Konflik versi diulang.
func (s *cartServiceImpl) mutate(ctx context.Context, userID string, createIfMissing bool, fn func(*domain.Cart) error) (*domain.Cart, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		cart, err := s.repo.GetCartByUserID(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) && createIfMissing {
			cart, err = domain.NewCart(userID), nil
		}
		if err != nil {
			return nil, err
		}

		if err := fn(cart); err != nil {
			return nil, err
		}

		err = s.repo.SaveCart(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrCartConflict) {
			return nil, err
		}
		logger.Warn("Cart for user %s changed concurrently, retrying (%d/%d)", userID, attempt, maxSaveAttempts)
	}
	return nil, repository.ErrCartConflict
}

func (s *cartServiceImpl) validateVariant(p *productDomain.Product, size, color string) error {
	if !p.SupportsSize(size) {
		return ErrInvalidSize
	}
	if !p.SupportsColor(color) {
		return ErrInvalidColor
	}
	return nil
}

func (s *cartServiceImpl) uploadDesign(ctx context.Context, design *DesignUpload) (*storage.Object, error) {
	if design == nil {
		return nil, nil
	}
	obj, err := s.objects.Upload(ctx, design.Filename, design.Content)
	if err != nil {
		return nil, fmt.Errorf("design upload failed: %w", err)
	}
	return obj, nil
}

// discardDesign membersihkan upload jika cart gagal disimpan.
func (s *cartServiceImpl) discardDesign(ctx context.Context, obj *storage.Object) {
	if obj == nil {
		return
	}
	if err := s.objects.Delete(ctx, obj.ID); err != nil {
		logger.Warn("Orphaned design object %s: %v", obj.ID, err)
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req domain.AddItemRequest, design *DesignUpload) (*domain.Cart, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.validateVariant(product, req.Size, req.Color); err != nil {
		return nil, err
	}

	obj, err := s.uploadDesign(ctx, design)
	if err != nil {
		return nil, err
	}

	item := domain.CartItem{
		ID:              uuid.NewString(),
		ProductID:       product.ID,
		Size:            req.Size,
		Color:           req.Color,
		Pattern:         req.Pattern,
		CustomText:      req.CustomText,
		Quantity:        req.Quantity,
		PriceAtAddition: product.Price,
	}
	if obj != nil {
		item.Design = obj.URL
		item.DesignID = obj.ID
	}

	cart, err := s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		c.AddOrMerge(item)
		return nil
	})
	if err != nil {
		s.discardDesign(ctx, obj)
		return nil, err
	}
	return cart, nil
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID, itemID string, req domain.UpdateItemRequest, design *DesignUpload) (*domain.Cart, error) {
	if req.Quantity != nil && *req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	obj, err := s.uploadDesign(ctx, design)
	if err != nil {
		return nil, err
	}

	cart, err := s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		idx := c.FindItem(itemID)
		if idx < 0 {
			return ErrCartItemNotFound
		}
		item := c.Items[idx]

		if req.Size != nil || req.Color != nil {
			size, color := item.Size, item.Color
			if req.Size != nil {
				size = *req.Size
			}
			if req.Color != nil {
				color = *req.Color
			}
			product, err := s.products.GetProductByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := s.validateVariant(product, size, color); err != nil {
				return err
			}
			item.Size, item.Color = size, color
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.Pattern != nil {
			item.Pattern = *req.Pattern
		}
		if req.CustomText != nil {
			item.CustomText = *req.CustomText
		}
		// Desain lama tidak dihapus: order yang sudah dibuat mungkin masih merujuknya.
		if obj != nil {
			item.Design = obj.URL
			item.DesignID = obj.ID
		}

		c.Items[idx] = item
		c.Recalculate()
		return nil
	})
	if err != nil {
		s.discardDesign(ctx, obj)
		return nil, err
	}
	return cart, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		if !c.RemoveItem(itemID) {
			return ErrCartItemNotFound
		}
		return nil
	})
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) error {
	return s.repo.DeleteCart(ctx, userID)
}
