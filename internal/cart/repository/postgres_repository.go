package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/apparel-store/internal/cart/domain"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartConflict: cart diubah request lain sejak dibaca.
	ErrCartConflict = errors.New("cart was modified concurrently")
)

type CartRepository interface {
	GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error)
	// SaveCart menyimpan cart dengan pengecekan versi (optimistic).
	SaveCart(ctx context.Context, cart *domain.Cart) error
	// DeleteCart tidak error jika cart tidak ada.
	DeleteCart(ctx context.Context, userID string) error
}

type postgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) CartRepository {
	return &postgresCartRepository{db: db}
}

func (r *postgresCartRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `SELECT user_id, items, total, version, updated_at FROM carts WHERE user_id = $1`
	var (
		c        domain.Cart
		rawItems []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &rawItems, &c.Total, &c.Version, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		logger.Error("GetCartByUserID: query failed", err, logger.Fields{"user_id": userID})
		return nil, err
	}
	if err := json.Unmarshal(rawItems, &c.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c, nil
}

func (r *postgresCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}
	now := time.Now().UTC()

	var res sql.Result
	if cart.Version == 0 {
		query := `INSERT INTO carts (user_id, items, total, version, updated_at)
                  VALUES ($1, $2, $3, 1, $4) ON CONFLICT (user_id) DO NOTHING`
		res, err = r.db.ExecContext(ctx, query, cart.UserID, items, cart.Total, now)
	} else {
		query := `UPDATE carts SET items = $1, total = $2, version = version + 1, updated_at = $3
                  WHERE user_id = $4 AND version = $5`
		res, err = r.db.ExecContext(ctx, query, items, cart.Total, now, cart.UserID, cart.Version)
	}
	if err != nil {
		logger.Error("SaveCart: exec failed", err, logger.Fields{"user_id": cart.UserID})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCartConflict
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func (r *postgresCartRepository) DeleteCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		logger.Error("DeleteCart: exec failed", err, logger.Fields{"user_id": userID})
		return err
	}
	return nil
}
