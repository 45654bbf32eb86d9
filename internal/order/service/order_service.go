package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	cartDomain "github.com/ridloal/apparel-store/internal/cart/domain"
	cartRepo "github.com/ridloal/apparel-store/internal/cart/repository"
	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/order/repository"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	productDomain "github.com/ridloal/apparel-store/internal/product/domain"
	productRepo "github.com/ridloal/apparel-store/internal/product/repository"
)

var (
	ErrEmptyCart                = errors.New("no items in cart")
	ErrNotAuthorized            = errors.New("not authorized to access this order")
	ErrOrderCreationFailed      = errors.New("order creation failed")
	ErrProductUnavailable       = errors.New("cart contains a product that is no longer available")
	ErrInvalidFulfillmentStatus = errors.New("invalid fulfillment status")
	ErrOrderNotPayable          = errors.New("order is not awaiting payment")
	ErrInvalidOrderTotal        = errors.New("order total must be greater than zero")
)

const maxOrderIDAttempts = 3

type CartReader interface {
	GetCartByUserID(ctx context.Context, userID string) (*cartDomain.Cart, error)
}

type ProductLookup interface {
	GetProductByID(ctx context.Context, id string) (*productDomain.Product, error)
}

// PaymentRequestBuilder menandatangani parameter redirect ke bank.
type PaymentRequestBuilder interface {
	BuildPaymentRequest(order *domain.Order) (*gateway.PaymentRequest, error)
}

// Checkout adalah hasil createOrder: order tersimpan plus parameter pembayaran.
type Checkout struct {
	Order   *domain.Order           `json:"order"`
	Payment *gateway.PaymentRequest `json:"payment"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, shipping domain.ShippingDetails) (*Checkout, error)
	GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*domain.Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) (*domain.Order, error)
	// PreparePayment membuat parameter redirect baru untuk order Pending milik user.
	PreparePayment(ctx context.Context, orderID, userID string) (*gateway.PaymentRequest, error)
}

type orderServiceImpl struct {
	orderRepo  repository.OrderRepository
	carts      CartReader
	products   ProductLookup
	payments   PaymentRequestBuilder
	newOrderID func() string
}

func NewOrderService(or repository.OrderRepository, carts CartReader, products ProductLookup, payments PaymentRequestBuilder) OrderService {
	return &orderServiceImpl{
		orderRepo:  or,
		carts:      carts,
		products:   products,
		payments:   payments,
		newOrderID: generateOrderID,
	}
}

// generateOrderID: ORD-<unix millis>-<suffix acak> supaya dua checkout
// di milidetik yang sama tidak bertabrakan.
func generateOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, shipping domain.ShippingDetails) (*Checkout, error) {
	cart, err := s.carts.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, cartRepo.ErrCartNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		product, err := s.products.GetProductByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, productRepo.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, it.ProductID)
			}
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Size:            it.Size,
			Color:           it.Color,
			Pattern:         it.Pattern,
			CustomText:      it.CustomText,
			Design:          it.Design,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtAddition,
		})
	}

	total := cart.Total
	if sum := cart.ComputeTotal(); !sum.Equal(total) {
		// running total tidak sinkron; yang dipakai hasil hitung ulang item
		logger.Warn("Cart total drifted from item sum", logger.Fields{
			"user_id": userID, "running": total.StringFixed(2), "computed": sum.StringFixed(2),
		})
		total = sum
	}
	// bank menolak amount 0, jadi order tidak disimpan
	if !total.IsPositive() {
		return nil, ErrInvalidOrderTotal
	}

	order := &domain.Order{
		UserID:            userID,
		Items:             items,
		ShippingDetails:   shipping,
		TotalAmount:       total,
		PaymentStatus:     domain.PaymentPending,
		FulfillmentStatus: domain.FulfillmentProcessing,
	}

	for attempt := 1; ; attempt++ {
		order.OrderID = s.newOrderID()
		err = s.orderRepo.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateOrderID) && attempt < maxOrderIDAttempts {
			logger.Warn("Order id collision, generating a new one", logger.Fields{"order_id": order.OrderID})
			continue
		}
		logger.Error("CreateOrder: failed to save order to repository", err, logger.Fields{"user_id": userID})
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	// Cart sengaja tidak dikosongkan; baru dibersihkan setelah callback Approved.
	payment, err := s.payments.BuildPaymentRequest(order)
	if err != nil {
		logger.Error("CreateOrder: could not sign payment request", err, logger.Fields{"order_id": order.OrderID})
		return nil, err
	}

	logger.Info("Order created", logger.Fields{"order_id": order.OrderID, "user_id": userID, "total": total.StringFixed(2)})
	return &Checkout{Order: order, Payment: payment}, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return order, nil
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByUserID(ctx, userID)
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListAllOrders(ctx)
}

func (s *orderServiceImpl) UpdateFulfillmentStatus(ctx context.Context, orderID string, status domain.FulfillmentStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFulfillmentStatus, status)
	}
	if err := s.orderRepo.UpdateFulfillmentStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) PreparePayment(ctx context.Context, orderID, userID string) (*gateway.PaymentRequest, error) {
	order, err := s.GetOrder(ctx, orderID, userID, false)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentPending {
		return nil, ErrOrderNotPayable
	}
	return s.payments.BuildPaymentRequest(order)
}
