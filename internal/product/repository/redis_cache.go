package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	"github.com/ridloal/apparel-store/internal/product/domain"
)

// ProductCache adalah subset redis.Cmdable yang dipakai cache produk.
type ProductCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cachedProductRepository struct {
	next  ProductRepository
	cache ProductCache
	ttl   time.Duration
}

// NewCachedProductRepository membungkus repository dengan read-through cache per produk.
// Kegagalan Redis tidak pernah menggagalkan request; kita jatuh ke database.
func NewCachedProductRepository(next ProductRepository, cache ProductCache, ttl time.Duration) ProductRepository {
	return &cachedProductRepository{next: next, cache: cache, ttl: ttl}
}

func productKey(id string) string {
	return "product:" + id
}

func (r *cachedProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.next.ListProducts(ctx)
}

func (r *cachedProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := r.cache.Get(ctx, productKey(id)).Bytes()
	if err == nil {
		var p domain.Product
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		logger.Warn("ProductCache: corrupt entry for %s, reloading", id)
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("ProductCache: get failed", err, logger.Fields{"product_id": id})
	}

	p, err := r.next.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := r.cache.Set(ctx, productKey(id), data, r.ttl).Err(); err != nil {
			logger.Error("ProductCache: set failed", err, logger.Fields{"product_id": id})
		}
	}
	return p, nil
}

func (r *cachedProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	return r.next.CreateProduct(ctx, p)
}

func (r *cachedProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := r.next.UpdateProduct(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *cachedProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if err := r.next.DeleteProduct(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(ctx, productKey(id)).Err(); err != nil {
		logger.Error("ProductCache: invalidate failed", err, logger.Fields{"product_id": id})
	}
}
