package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/order/repository"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

// ErrPaymentDeclined: callback valid tapi bank tidak menyetujui transaksi.
var ErrPaymentDeclined = errors.New("payment was declined")

type CallbackVerifier interface {
	Verify(fields gateway.Fields) error
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

// ConfirmationNotifier mengantrikan notifikasi order terbayar (fire-and-forget).
type ConfirmationNotifier interface {
	OrderConfirmed(ctx context.Context, order *domain.Order) error
}

// CallbackResult adalah hasil akhir callback untuk ditampilkan ke pembeli.
type CallbackResult struct {
	OrderID string
	Status  domain.PaymentStatus
	// Duplicate: order sudah final sebelum callback ini, tidak ada perubahan.
	Duplicate bool
}

type PaymentService interface {
	HandleCallback(ctx context.Context, fields gateway.Fields) (*CallbackResult, error)
}

type paymentServiceImpl struct {
	verifier CallbackVerifier
	orders   repository.OrderRepository
	carts    CartClearer
	notifier ConfirmationNotifier
	now      func() time.Time
}

func NewPaymentService(v CallbackVerifier, orders repository.OrderRepository, carts CartClearer, notifier ConfirmationNotifier) PaymentService {
	return &paymentServiceImpl{
		verifier: v,
		orders:   orders,
		carts:    carts,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *paymentServiceImpl) HandleCallback(ctx context.Context, fields gateway.Fields) (*CallbackResult, error) {
	// Hash dicek lebih dulu, sebelum menyentuh data apapun.
	if err := s.verifier.Verify(fields); err != nil {
		return nil, err
	}

	cb := gateway.ParseCallback(fields)
	if cb.OrderID == "" {
		return nil, fmt.Errorf("%w: callback has no order id", repository.ErrOrderNotFound)
	}

	order, err := s.orders.GetOrderByID(ctx, cb.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus.IsTerminal() {
		logger.Info("Duplicate callback ignored", logger.Fields{"order_id": order.OrderID, "status": order.PaymentStatus})
		return &CallbackResult{OrderID: order.OrderID, Status: order.PaymentStatus, Duplicate: true}, nil
	}

	if cb.Approved() {
		return s.markPaid(ctx, order, cb)
	}
	return s.markFailed(ctx, order, cb)
}

func (s *paymentServiceImpl) markPaid(ctx context.Context, order *domain.Order, cb gateway.Callback) (*CallbackResult, error) {
	details := domain.PaymentDetails{
		TransactionID: cb.TransID,
		AuthCode:      cb.AuthCode,
		ReturnCode:    cb.ProcReturnCode,
		ProcessedAt:   s.now(),
	}
	if res, done, err := s.transition(ctx, order, domain.PaymentPaid, details); done {
		return res, err
	}

	logger.Info("Order paid", logger.Fields{"order_id": order.OrderID, "transaction_id": cb.TransID})

	// Langkah setelah commit bersifat best-effort: kegagalan tidak membatalkan pembayaran.
	if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
		logger.Error("Cart could not be cleared after payment", err, logger.Fields{"order_id": order.OrderID, "user_id": order.UserID})
	}
	if err := s.notifier.OrderConfirmed(ctx, order); err != nil {
		logger.Error("Order confirmation could not be queued", err, logger.Fields{"order_id": order.OrderID})
	}

	return &CallbackResult{OrderID: order.OrderID, Status: domain.PaymentPaid}, nil
}

func (s *paymentServiceImpl) markFailed(ctx context.Context, order *domain.Order, cb gateway.Callback) (*CallbackResult, error) {
	reason := cb.FailureReason()
	details := domain.PaymentDetails{
		TransactionID: cb.TransID,
		ReturnCode:    cb.ProcReturnCode,
		Error:         reason,
		ProcessedAt:   s.now(),
	}
	if res, done, err := s.transition(ctx, order, domain.PaymentFailed, details); done {
		return res, err
	}

	logger.Warn("Payment declined", logger.Fields{"order_id": order.OrderID, "reason": reason})
	return &CallbackResult{OrderID: order.OrderID, Status: domain.PaymentFailed}, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
}

// transition menjalankan CAS Pending -> to. done=true berarti pemanggil harus
// langsung mengembalikan res/err (error, atau callback lain menang lebih dulu).
func (s *paymentServiceImpl) transition(ctx context.Context, order *domain.Order, to domain.PaymentStatus, details domain.PaymentDetails) (*CallbackResult, bool, error) {
	err := s.orders.TransitionPaymentStatus(ctx, order.OrderID, to, details)
	switch {
	case err == nil:
		order.PaymentStatus = to
		order.PaymentDetails = &details
		return nil, false, nil
	case errors.Is(err, repository.ErrStatusConflict):
		// callback duplikat yang datang bersamaan; baca status yang menang
		current, getErr := s.orders.GetOrderByID(ctx, order.OrderID)
		if getErr != nil {
			return nil, true, getErr
		}
		return &CallbackResult{OrderID: current.OrderID, Status: current.PaymentStatus, Duplicate: true}, true, nil
	default:
		logger.Error("Payment status update failed", err, logger.Fields{"order_id": order.OrderID, "to": to})
		return nil, true, err
	}
}
