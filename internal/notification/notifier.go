package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/shopspring/decimal"
)

// OrderConfirmed adalah payload event yang dikirim setelah pembayaran Approved.
type OrderConfirmed struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}

// OrderNotifier menaruh event konfirmasi ke outbox. Pengiriman ke broker
// dilakukan terpisah oleh Relay.
type OrderNotifier struct {
	outbox OutboxRepository
	topic  string
}

func NewOrderNotifier(outbox OutboxRepository, topic string) *OrderNotifier {
	return &OrderNotifier{outbox: outbox, topic: topic}
}

func (n *OrderNotifier) OrderConfirmed(ctx context.Context, order *domain.Order) error {
	ev := OrderConfirmed{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   order.ItemCount(),
		PaidAt:      time.Now().UTC(),
	}
	if order.PaymentDetails != nil {
		ev.TransactionID = order.PaymentDetails.TransactionID
		ev.PaidAt = order.PaymentDetails.ProcessedAt
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode order confirmation: %w", err)
	}
	// key = order id, jadi satu order hanya punya satu event konfirmasi
	return n.outbox.Enqueue(ctx, Event{Topic: n.topic, Key: order.OrderID, Payload: payload})
}
