package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// IsTerminal: Paid dan Failed tidak bisa berubah lagi.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// FulfillmentStatus terpisah dari status pembayaran, diubah oleh admin.
type FulfillmentStatus string

const (
	FulfillmentProcessing FulfillmentStatus = "Processing"
	FulfillmentShipped    FulfillmentStatus = "Shipped"
	FulfillmentDelivered  FulfillmentStatus = "Delivered"
	FulfillmentCancelled  FulfillmentStatus = "Cancelled"
)

func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentProcessing, FulfillmentShipped, FulfillmentDelivered, FulfillmentCancelled:
		return true
	}
	return false
}

type ShippingDetails struct {
	FullName   string `json:"full_name" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
}

// OrderItem adalah snapshot item cart saat checkout.
type OrderItem struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Pattern         string          `json:"pattern,omitempty"`
	CustomText      string          `json:"custom_text,omitempty"`
	Design          string          `json:"design,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// PaymentDetails hanya diisi saat transisi status pembayaran.
type PaymentDetails struct {
	TransactionID string    `json:"transaction_id,omitempty"`
	AuthCode      string    `json:"auth_code,omitempty"`
	ReturnCode    string    `json:"return_code,omitempty"`
	Error         string    `json:"error,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

type Order struct {
	OrderID           string            `json:"order_id"`
	UserID            string            `json:"user_id"`
	Items             []OrderItem       `json:"items"`
	ShippingDetails   ShippingDetails   `json:"shipping_details"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	PaymentDetails    *PaymentDetails   `json:"payment_details,omitempty"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (o *Order) ItemCount() int {
	return len(o.Items)
}

// StatusView adalah ringkasan yang dikembalikan ke client saat cek status.
type StatusView struct {
	OrderID       string          `json:"order_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Order) Status() StatusView {
	return StatusView{
		OrderID:       o.OrderID,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
	}
}

type CreateOrderRequest struct {
	ShippingDetails ShippingDetails `json:"shipping_details" binding:"required"`
}

type UpdateFulfillmentRequest struct {
	Status FulfillmentStatus `json:"status" binding:"required"`
}
