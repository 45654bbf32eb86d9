package service

import (
	"context"
	"errors"
	"testing"

	cartDomain "github.com/ridloal/apparel-store/internal/cart/domain"
	cartRepo "github.com/ridloal/apparel-store/internal/cart/repository"
	cartMocks "github.com/ridloal/apparel-store/internal/cart/repository/mocks"
	"github.com/ridloal/apparel-store/internal/order/domain"
	oRepo "github.com/ridloal/apparel-store/internal/order/repository"
	"github.com/ridloal/apparel-store/internal/order/repository/mocks"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/config"
	pDomain "github.com/ridloal/apparel-store/internal/product/domain"
	pRepo "github.com/ridloal/apparel-store/internal/product/repository"
	productMocks "github.com/ridloal/apparel-store/internal/product/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orders   *mocks.MockOrderRepository
	carts    *cartMocks.MockCartRepository
	products *productMocks.MockProductRepository
	signer   *gateway.Signer
	svc      *orderServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := gateway.NewSigner(config.PaymentConfig{
		GatewayURL: "https://bank.example/gate",
		ClientID:   "180000335",
		StoreKey:   "SKEY0335",
		StoreType:  "3D_PAY_HOSTING",
		Currency:   "807",
		TranType:   "Auth",
	})
	require.NoError(t, err)

	f := &fixture{
		orders:   new(mocks.MockOrderRepository),
		carts:    new(cartMocks.MockCartRepository),
		products: new(productMocks.MockProductRepository),
		signer:   signer,
	}
	f.svc = NewOrderService(f.orders, f.carts, f.products, signer).(*orderServiceImpl)
	f.svc.newOrderID = func() string { return "ORD-1700000000000" }
	return f
}

func twoTeesCart() *cartDomain.Cart {
	c := cartDomain.NewCart("user-1")
	c.Items = []cartDomain.CartItem{
		{ID: "i1", ProductID: "prod-1", Size: "Medium", Color: "Black", Quantity: 1, PriceAtAddition: decimal.RequireFromString("24.99")},
		{ID: "i2", ProductID: "prod-1", Size: "Large", Color: "Black", CustomText: "Hi", Quantity: 1, PriceAtAddition: decimal.RequireFromString("24.99")},
	}
	c.Recalculate()
	c.Version = 1
	return c
}

var shipping = domain.ShippingDetails{FullName: "Ana", Address: "Main 1", City: "Skopje", Country: "MK"}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.TODO()
	product := &pDomain.Product{ID: "prod-1", Name: "Classic Tee", Price: decimal.RequireFromString("24.99")}

	t.Run("Successful order creation", func(t *testing.T) {
		f := newFixture(t)
		cart := twoTeesCart()
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(cart, nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(product, nil).Twice()
		f.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		require.NoError(t, err)

		assert.Equal(t, "ORD-1700000000000", res.Order.OrderID)
		assert.Equal(t, domain.PaymentPending, res.Order.PaymentStatus)
		assert.True(t, res.Order.TotalAmount.Equal(cart.Total))
		assert.Equal(t, "49.98", res.Order.TotalAmount.StringFixed(2))
		assert.Equal(t, len(cart.Items), res.Order.ItemCount())
		assert.Equal(t, "Classic Tee", res.Order.Items[1].ProductName)
		assert.Equal(t, "Hi", res.Order.Items[1].CustomText)

		assert.Equal(t, "ORD-1700000000000", res.Payment.Fields[gateway.FieldOrderID])
		assert.Equal(t, "49.98", res.Payment.Fields[gateway.FieldAmount])
		assert.Equal(t, f.signer.Hash(res.Payment.Fields), res.Payment.Fields[gateway.FieldHash])

		// cart tidak disentuh saat checkout
		f.carts.AssertNotCalled(t, "DeleteCart", mock.Anything, mock.Anything)
		f.orders.AssertExpectations(t)
	})

	t.Run("Empty cart", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(cartDomain.NewCart("user-1"), nil).Once()

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Nil(t, res)
		f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Missing cart", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(nil, cartRepo.ErrCartNotFound).Once()

		_, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		assert.ErrorIs(t, err, ErrEmptyCart)
		f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Deleted product", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(twoTeesCart(), nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(nil, pRepo.ErrProductNotFound).Once()

		_, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		assert.ErrorIs(t, err, ErrProductUnavailable)
		f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Retries on order id collision", func(t *testing.T) {
		f := newFixture(t)
		ids := []string{"ORD-1", "ORD-2"}
		f.svc.newOrderID = func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(twoTeesCart(), nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(product, nil)
		f.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(oRepo.ErrDuplicateOrderID).Once()
		f.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		require.NoError(t, err)
		assert.Equal(t, "ORD-2", res.Order.OrderID)
	})

	t.Run("Persistence failure", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(twoTeesCart(), nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(product, nil)
		f.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(errors.New("connection reset")).Once()

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		assert.ErrorIs(t, err, ErrOrderCreationFailed)
		assert.Nil(t, res)
	})

	t.Run("Zero total is rejected before saving", func(t *testing.T) {
		f := newFixture(t)
		cart := twoTeesCart()
		for i := range cart.Items {
			cart.Items[i].PriceAtAddition = decimal.Zero
		}
		cart.Recalculate()
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(cart, nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(product, nil)

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		assert.ErrorIs(t, err, ErrInvalidOrderTotal)
		assert.Nil(t, res)
		f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Drifted running total uses item sum", func(t *testing.T) {
		f := newFixture(t)
		cart := twoTeesCart()
		cart.Total = decimal.RequireFromString("10.00")
		f.carts.On("GetCartByUserID", ctx, "user-1").Return(cart, nil).Once()
		f.products.On("GetProductByID", ctx, "prod-1").Return(product, nil)
		f.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		res, err := f.svc.CreateOrder(ctx, "user-1", shipping)
		require.NoError(t, err)
		assert.Equal(t, "49.98", res.Order.TotalAmount.StringFixed(2))
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.TODO()
	order := &domain.Order{OrderID: "ORD-1", UserID: "user-1", PaymentStatus: domain.PaymentPending, TotalAmount: decimal.NewFromInt(10)}

	tests := []struct {
		name    string
		userID  string
		isAdmin bool
		wantErr error
	}{
		{"Owner", "user-1", false, nil},
		{"Admin", "admin-1", true, nil},
		{"Other user", "user-2", false, ErrNotAuthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.orders.On("GetOrderByID", ctx, "ORD-1").Return(order, nil).Once()

			got, err := f.svc.GetOrder(ctx, "ORD-1", tc.userID, tc.isAdmin)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ORD-1", got.OrderID)
		})
	}

	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t)
		f.orders.On("GetOrderByID", ctx, "ORD-X").Return(nil, oRepo.ErrOrderNotFound).Once()
		_, err := f.svc.GetOrder(ctx, "ORD-X", "user-1", false)
		assert.ErrorIs(t, err, oRepo.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateFulfillmentStatus(t *testing.T) {
	ctx := context.TODO()

	t.Run("Valid status", func(t *testing.T) {
		f := newFixture(t)
		updated := &domain.Order{OrderID: "ORD-1", FulfillmentStatus: domain.FulfillmentShipped, PaymentStatus: domain.PaymentPaid}
		f.orders.On("UpdateFulfillmentStatus", ctx, "ORD-1", domain.FulfillmentShipped).Return(nil).Once()
		f.orders.On("GetOrderByID", ctx, "ORD-1").Return(updated, nil).Once()

		got, err := f.svc.UpdateFulfillmentStatus(ctx, "ORD-1", domain.FulfillmentShipped)
		require.NoError(t, err)
		assert.Equal(t, domain.FulfillmentShipped, got.FulfillmentStatus)
		// status pembayaran tidak ikut berubah
		assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	})

	t.Run("Invalid status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdateFulfillmentStatus(ctx, "ORD-1", "Paid")
		assert.ErrorIs(t, err, ErrInvalidFulfillmentStatus)
		f.orders.AssertNotCalled(t, "UpdateFulfillmentStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_PreparePayment(t *testing.T) {
	ctx := context.TODO()

	t.Run("Pending order", func(t *testing.T) {
		f := newFixture(t)
		f.orders.On("GetOrderByID", ctx, "ORD-1").
			Return(&domain.Order{OrderID: "ORD-1", UserID: "user-1", PaymentStatus: domain.PaymentPending, TotalAmount: decimal.RequireFromString("49.98")}, nil).Once()

		req, err := f.svc.PreparePayment(ctx, "ORD-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, f.signer.Hash(req.Fields), req.Fields[gateway.FieldHash])
	})

	t.Run("Already paid", func(t *testing.T) {
		f := newFixture(t)
		f.orders.On("GetOrderByID", ctx, "ORD-1").
			Return(&domain.Order{OrderID: "ORD-1", UserID: "user-1", PaymentStatus: domain.PaymentPaid, TotalAmount: decimal.NewFromInt(1)}, nil).Once()

		_, err := f.svc.PreparePayment(ctx, "ORD-1", "user-1")
		assert.ErrorIs(t, err, ErrOrderNotPayable)
	})

	t.Run("Someone else's order", func(t *testing.T) {
		f := newFixture(t)
		f.orders.On("GetOrderByID", ctx, "ORD-1").
			Return(&domain.Order{OrderID: "ORD-1", UserID: "user-1", PaymentStatus: domain.PaymentPending, TotalAmount: decimal.NewFromInt(1)}, nil).Once()

		_, err := f.svc.PreparePayment(ctx, "ORD-1", "user-2")
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}
