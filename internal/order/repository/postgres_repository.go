package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrderID: order_id sudah dipakai (tabrakan id).
	ErrDuplicateOrderID = errors.New("order id already exists")
	// ErrStatusConflict: status pembayaran bukan Pending lagi saat update.
	ErrStatusConflict = errors.New("order payment status already final")
)

const uniqueViolation = "23505"

// isUniqueViolation mengenali error dari driver pgx (dipakai pool utama) maupun lib/pq.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) error
	// TransitionPaymentStatus adalah compare-and-set dari Pending.
	TransitionPaymentStatus(ctx context.Context, orderID string, to domain.PaymentStatus, details domain.PaymentDetails) error
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

const orderColumns = `order_id, user_id, items, shipping_details, total_amount, payment_status,
                      payment_details, fulfillment_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                            domain.Order
		rawItems, rawShip, rawDetail []byte
	)
	err := row.Scan(&o.OrderID, &o.UserID, &rawItems, &rawShip, &o.TotalAmount, &o.PaymentStatus,
		&rawDetail, &o.FulfillmentStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawItems, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(rawShip, &o.ShippingDetails); err != nil {
		return nil, fmt.Errorf("failed to decode shipping details: %w", err)
	}
	if len(rawDetail) > 0 {
		var d domain.PaymentDetails
		if err := json.Unmarshal(rawDetail, &d); err != nil {
			return nil, fmt.Errorf("failed to decode payment details: %w", err)
		}
		o.PaymentDetails = &d
	}
	return &o, nil
}

// CreateOrder menyimpan order baru. Items dan shipping disimpan sebagai JSONB.
func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingDetails)
	if err != nil {
		return fmt.Errorf("failed to encode shipping details: %w", err)
	}

	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentPending
	}
	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = domain.FulfillmentProcessing
	}
	now := time.Now().UTC()

	query := `INSERT INTO orders (order_id, user_id, items, shipping_details, total_amount,
                                  payment_status, fulfillment_status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
              RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query, order.OrderID, order.UserID, items, shipping, order.TotalAmount,
		order.PaymentStatus, order.FulfillmentStatus, now).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrderID
		}
		logger.Error("CreateOrder: insert failed", err, logger.Fields{"order_id": order.OrderID})
		return err
	}
	return nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err, logger.Fields{"order_id": orderID})
		return nil, err
	}
	return o, nil
}

func (r *postgresOrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("listOrders: query failed", err)
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			logger.Error("listOrders: scan failed", err)
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresOrderRepository) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresOrderRepository) UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) error {
	query := `UPDATE orders SET fulfillment_status = $1, updated_at = $2 WHERE order_id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), orderID)
	if err != nil {
		logger.Error("UpdateFulfillmentStatus: exec failed", err, logger.Fields{"order_id": orderID})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresOrderRepository) TransitionPaymentStatus(ctx context.Context, orderID string, to domain.PaymentStatus, details domain.PaymentDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode payment details: %w", err)
	}
	query := `UPDATE orders SET payment_status = $1, payment_details = $2, updated_at = $3
              WHERE order_id = $4 AND payment_status = $5`
	res, err := r.db.ExecContext(ctx, query, to, raw, time.Now().UTC(), orderID, domain.PaymentPending)
	if err != nil {
		logger.Error("TransitionPaymentStatus: exec failed", err, logger.Fields{"order_id": orderID, "to": to})
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	// Tidak ada baris yang berubah: order tidak ada atau sudah final.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrStatusConflict
}
