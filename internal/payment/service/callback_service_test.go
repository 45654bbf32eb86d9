package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridloal/apparel-store/internal/order/domain"
	oRepo "github.com/ridloal/apparel-store/internal/order/repository"
	"github.com/ridloal/apparel-store/internal/order/repository/mocks"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCartClearer struct {
	mock.Mock
}

func (m *mockCartClearer) ClearCart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderConfirmed(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

var fixedNow = time.Date(2023, 11, 14, 22, 15, 0, 0, time.UTC)

type fixture struct {
	signer   *gateway.Signer
	orders   *mocks.MockOrderRepository
	carts    *mockCartClearer
	notifier *mockNotifier
	svc      PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := gateway.NewSigner(config.PaymentConfig{ClientID: "180000335", StoreKey: "SKEY0335"})
	require.NoError(t, err)
	f := &fixture{
		signer:   signer,
		orders:   new(mocks.MockOrderRepository),
		carts:    new(mockCartClearer),
		notifier: new(mockNotifier),
	}
	impl := NewPaymentService(signer, f.orders, f.carts, f.notifier).(*paymentServiceImpl)
	impl.now = func() time.Time { return fixedNow }
	f.svc = impl
	return f
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		OrderID:       "ORD-1700000000000",
		UserID:        "user-1",
		TotalAmount:   decimal.RequireFromString("49.98"),
		PaymentStatus: domain.PaymentPending,
	}
}

// signedCallback menyusun callback bank yang sudah ditandatangani.
func (f *fixture) signedCallback(response, code string) gateway.Fields {
	fields := gateway.Fields{
		"clientid":       "180000335",
		"oid":            "ORD-1700000000000",
		"amount":         "49.98",
		"rnd":            "abc123",
		"Response":       response,
		"ProcReturnCode": code,
		"TransId":        "T-1",
		"AuthCode":       "A-9",
	}
	fields["HASH"] = f.signer.CallbackHash(fields)
	return fields
}

func TestHandleCallback_Approved(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)

	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(pendingOrder(), nil).Once()
	f.orders.On("TransitionPaymentStatus", ctx, "ORD-1700000000000", domain.PaymentPaid, domain.PaymentDetails{
		TransactionID: "T-1", AuthCode: "A-9", ReturnCode: "00", ProcessedAt: fixedNow,
	}).Return(nil).Once()
	f.carts.On("ClearCart", ctx, "user-1").Return(nil).Once()
	f.notifier.On("OrderConfirmed", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.PaymentStatus == domain.PaymentPaid && o.PaymentDetails.TransactionID == "T-1"
	})).Return(nil).Once()

	res, err := f.svc.HandleCallback(ctx, f.signedCallback("Approved", "00"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, res.Status)
	assert.False(t, res.Duplicate)
	f.orders.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestHandleCallback_Idempotent(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)
	paid := pendingOrder()
	paid.PaymentStatus = domain.PaymentPaid

	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(pendingOrder(), nil).Once()
	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(paid, nil).Once()
	f.orders.On("TransitionPaymentStatus", ctx, "ORD-1700000000000", domain.PaymentPaid, mock.AnythingOfType("domain.PaymentDetails")).Return(nil).Once()
	f.carts.On("ClearCart", ctx, "user-1").Return(nil).Once()
	f.notifier.On("OrderConfirmed", ctx, mock.Anything).Return(nil).Once()

	callback := f.signedCallback("Approved", "00")
	first, err := f.svc.HandleCallback(ctx, callback)
	require.NoError(t, err)
	second, err := f.svc.HandleCallback(ctx, callback)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentPaid, first.Status)
	assert.Equal(t, domain.PaymentPaid, second.Status)
	assert.True(t, second.Duplicate)
	f.notifier.AssertNumberOfCalls(t, "OrderConfirmed", 1)
	f.orders.AssertNumberOfCalls(t, "TransitionPaymentStatus", 1)
}

func TestHandleCallback_ConcurrentDuplicateLosesCAS(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)
	paid := pendingOrder()
	paid.PaymentStatus = domain.PaymentPaid

	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(pendingOrder(), nil).Once()
	f.orders.On("TransitionPaymentStatus", ctx, "ORD-1700000000000", domain.PaymentPaid, mock.AnythingOfType("domain.PaymentDetails")).
		Return(oRepo.ErrStatusConflict).Once()
	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(paid, nil).Once()

	res, err := f.svc.HandleCallback(ctx, f.signedCallback("Approved", "00"))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, domain.PaymentPaid, res.Status)
	f.notifier.AssertNotCalled(t, "OrderConfirmed", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
}

func TestHandleCallback_TamperedHash(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)

	callback := f.signedCallback("Approved", "00")
	h := []byte(callback["HASH"])
	if h[0] == 'A' {
		h[0] = 'B'
	} else {
		h[0] = 'A'
	}
	callback["HASH"] = string(h)

	res, err := f.svc.HandleCallback(ctx, callback)
	assert.ErrorIs(t, err, gateway.ErrCallbackAuthentication)
	assert.Nil(t, res)
	// order tidak disentuh sama sekali, tetap Pending
	f.orders.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_TamperedField(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)

	callback := f.signedCallback("Declined", "05")
	callback["Response"] = "Approved"
	callback["ProcReturnCode"] = "00"

	_, err := f.svc.HandleCallback(ctx, callback)
	assert.ErrorIs(t, err, gateway.ErrCallbackAuthentication)
	f.orders.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_ForgedApprovalFromRedirectForm(t *testing.T) {
	ctx := context.TODO()
	for _, scheme := range []string{gateway.SchemeSorted, gateway.SchemePositional} {
		t.Run(scheme, func(t *testing.T) {
			signer, err := gateway.NewSigner(config.PaymentConfig{ClientID: "180000335", StoreKey: "SKEY0335", HashScheme: scheme})
			require.NoError(t, err)
			orders := new(mocks.MockOrderRepository)
			svc := NewPaymentService(signer, orders, new(mockCartClearer), new(mockNotifier))

			req, err := signer.BuildPaymentRequest(pendingOrder())
			require.NoError(t, err)

			// form redirect yang dilihat browser, ditambah field persetujuan palsu
			forged := gateway.Fields{}
			for k, v := range req.Fields {
				forged[k] = v
			}
			forged["Response"] = "Approved"
			forged["ProcReturnCode"] = "00"
			forged["TransId"] = "FAKE"

			res, err := svc.HandleCallback(ctx, forged)
			assert.ErrorIs(t, err, gateway.ErrCallbackAuthentication)
			assert.Nil(t, res)
			orders.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleCallback_Declined(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)
	callback := f.signedCallback("Declined", "05")
	callback["ErrMsg"] = "Insufficient funds"
	delete(callback, "HASH")
	callback["hash"] = f.signer.CallbackHash(callback)

	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(pendingOrder(), nil).Once()
	f.orders.On("TransitionPaymentStatus", ctx, "ORD-1700000000000", domain.PaymentFailed, mock.MatchedBy(func(d domain.PaymentDetails) bool {
		return d.Error == "Insufficient funds" && d.ReturnCode == "05"
	})).Return(nil).Once()

	res, err := f.svc.HandleCallback(ctx, callback)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	require.NotNil(t, res)
	assert.Equal(t, domain.PaymentFailed, res.Status)
	f.carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "OrderConfirmed", mock.Anything, mock.Anything)
}

func TestHandleCallback_UnknownOrder(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)
	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(nil, oRepo.ErrOrderNotFound).Once()

	_, err := f.svc.HandleCallback(ctx, f.signedCallback("Approved", "00"))
	assert.ErrorIs(t, err, oRepo.ErrOrderNotFound)
}

func TestHandleCallback_PostCommitFailuresKeepPayment(t *testing.T) {
	ctx := context.TODO()
	f := newFixture(t)

	f.orders.On("GetOrderByID", ctx, "ORD-1700000000000").Return(pendingOrder(), nil).Once()
	f.orders.On("TransitionPaymentStatus", ctx, "ORD-1700000000000", domain.PaymentPaid, mock.AnythingOfType("domain.PaymentDetails")).Return(nil).Once()
	f.carts.On("ClearCart", ctx, "user-1").Return(errors.New("db blip")).Once()
	f.notifier.On("OrderConfirmed", ctx, mock.Anything).Return(errors.New("outbox down")).Once()

	res, err := f.svc.HandleCallback(ctx, f.signedCallback("Approved", "00"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, res.Status)
}
