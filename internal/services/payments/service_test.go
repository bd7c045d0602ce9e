package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
	"github.com/technova/storefront-api/internal/services/orders"
)

type mockGateway struct {
	CreateIntentFunc func(ctx context.Context, req IntentRequest) (Intent, error)
	ParseEventFunc   func(payload []byte, signature string) (WebhookEvent, error)
}

func (m *mockGateway) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	return m.CreateIntentFunc(ctx, req)
}

func (m *mockGateway) ParseEvent(payload []byte, signature string) (WebhookEvent, error) {
	return m.ParseEventFunc(payload, signature)
}

type mockOrders struct {
	GetFunc               func(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error)
	MarkPaidFunc          func(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
	MarkPaymentFailedFunc func(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
}

func (m *mockOrders) Get(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error) {
	return m.GetFunc(ctx, userID, isAdmin, orderID)
}

func (m *mockOrders) MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	return m.MarkPaidFunc(ctx, orderID, paymentID)
}

func (m *mockOrders) MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	return m.MarkPaymentFailedFunc(ctx, orderID, paymentID)
}

// priceList reprices every item at the price registered for its product.
type priceList map[primitive.ObjectID]float64

func (p priceList) Reprice(_ context.Context, items []models.CartItem) ([]models.CartItem, error) {
	out := make([]models.CartItem, len(items))
	for i, item := range items {
		price, ok := p[item.ProductID]
		if !ok {
			return nil, errors.New("product is no longer available")
		}
		item.Price = price
		out[i] = item
	}
	return out, nil
}

func (p priceList) Totals(items []models.CartItem) models.CartTotals {
	return pricing.CartTotals(items, pricing.Rules{})
}

func converter(t *testing.T) *currency.Converter {
	t.Helper()
	conv, err := currency.NewDefaultConverter()
	require.NoError(t, err)
	return conv
}

func capture(got *IntentRequest) *mockGateway {
	return &mockGateway{CreateIntentFunc: func(_ context.Context, req IntentRequest) (Intent, error) {
		*got = req
		return Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Amount: req.Amount, Currency: req.Currency}, nil
	}}
}

var user = primitive.NewObjectID()

func TestCreateIntentForOrder(t *testing.T) {
	order := models.Order{
		ID:       primitive.NewObjectID(),
		UserID:   user,
		Total:    1079.99,
		Currency: "USD",
		Status:   models.StatusPending,
	}
	ords := &mockOrders{GetFunc: func(_ context.Context, userID primitive.ObjectID, isAdmin bool, id primitive.ObjectID) (models.Order, error) {
		assert.False(t, isAdmin)
		if id != order.ID {
			return models.Order{}, orders.ErrOrderNotFound
		}
		return order, nil
	}}
	var req IntentRequest
	svc := NewService(capture(&req), ords, priceList{}, converter(t))

	res, err := svc.CreateIntent(context.Background(), user, CreateIntentInput{OrderID: order.ID.Hex()})
	require.NoError(t, err)

	assert.Equal(t, "pi_123_secret", res.ClientSecret)
	assert.Equal(t, int64(107999), req.Amount)
	assert.Equal(t, int64(107999), res.AmountMinor)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, order.ID.Hex(), req.Metadata["orderId"])
	assert.Equal(t, user.Hex(), req.Metadata["userId"])
	assert.NotEmpty(t, req.IdempotencyKey)

	firstKey := req.IdempotencyKey
	_, err = svc.CreateIntent(context.Background(), user, CreateIntentInput{OrderID: order.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, firstKey, req.IdempotencyKey, "retries for the same order reuse the key")

	order.Status = models.StatusPaid
	_, err = svc.CreateIntent(context.Background(), user, CreateIntentInput{OrderID: order.ID.Hex()})
	assert.ErrorIs(t, err, ErrOrderNotPayable)

	_, err = svc.CreateIntent(context.Background(), user, CreateIntentInput{OrderID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestCreateIntentForItemsUsesServerPrices(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	prices := priceList{a: 19.99, b: 5.01}
	var req IntentRequest
	svc := NewService(capture(&req), &mockOrders{}, prices, converter(t))

	res, err := svc.CreateIntent(context.Background(), user, CreateIntentInput{
		Items: []ItemInput{
			{ProductID: a.Hex(), Quantity: 2},
			{ProductID: b.Hex(), Quantity: 1},
		},
		IdempotencyKey: "client-key",
	})
	require.NoError(t, err)

	assert.Equal(t, 44.99, res.Amount)
	assert.Equal(t, int64(4499), req.Amount)
	assert.Equal(t, "client-key", req.IdempotencyKey)
	_, hasOrder := req.Metadata["orderId"]
	assert.False(t, hasOrder)
}

func TestCreateIntentConvertsToZeroDecimalCurrency(t *testing.T) {
	a := primitive.NewObjectID()
	var req IntentRequest
	svc := NewService(capture(&req), &mockOrders{}, priceList{a: 10}, converter(t))

	res, err := svc.CreateIntent(context.Background(), user, CreateIntentInput{
		Items:    []ItemInput{{ProductID: a.Hex(), Quantity: 1}},
		Currency: "jpy",
	})
	require.NoError(t, err)
	assert.Equal(t, "JPY", res.Currency)
	assert.Equal(t, int64(1512), req.Amount)
}

func TestCreateIntentRejections(t *testing.T) {
	a := primitive.NewObjectID()
	gateway := &mockGateway{CreateIntentFunc: func(context.Context, IntentRequest) (Intent, error) {
		t.Fatal("gateway must not be called")
		return Intent{}, nil
	}}
	svc := NewService(gateway, &mockOrders{}, priceList{a: 0.25}, converter(t))
	ctx := context.Background()

	_, err := svc.CreateIntent(ctx, user, CreateIntentInput{})
	assert.ErrorIs(t, err, ErrNothingToPay)

	_, err = svc.CreateIntent(ctx, user, CreateIntentInput{Items: []ItemInput{{ProductID: a.Hex(), Quantity: 1}}})
	assert.ErrorIs(t, err, ErrAmountTooSmall)

	_, err = svc.CreateIntent(ctx, user, CreateIntentInput{Items: []ItemInput{{ProductID: "x", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.CreateIntent(ctx, user, CreateIntentInput{Items: []ItemInput{{ProductID: a.Hex(), BundleID: "x", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.CreateIntent(ctx, user, CreateIntentInput{Items: []ItemInput{{ProductID: a.Hex(), Quantity: 1}}, Currency: "ZZZ"})
	assert.ErrorIs(t, err, currency.ErrUnsupportedCurrency)

	_, err = svc.CreateIntent(ctx, user, CreateIntentInput{OrderID: "nope"})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestHandleWebhook(t *testing.T) {
	orderID := primitive.NewObjectID()
	var paid, failed []string
	ords := &mockOrders{
		MarkPaidFunc: func(_ context.Context, id primitive.ObjectID, paymentID string) error {
			assert.Equal(t, orderID, id)
			paid = append(paid, paymentID)
			return nil
		},
		MarkPaymentFailedFunc: func(_ context.Context, id primitive.ObjectID, paymentID string) error {
			failed = append(failed, paymentID)
			return nil
		},
	}
	events := map[string]WebhookEvent{
		"ok":     {Type: EventPaymentSucceeded, PaymentIntentID: "pi_1", Metadata: map[string]string{"orderId": orderID.Hex()}},
		"failed":  {Type: EventPaymentFailed, PaymentIntentID: "pi_2", Metadata: map[string]string{"orderId": orderID.Hex()}},
		"other":  {Type: "charge.refunded"},
		"orphan": {Type: EventPaymentSucceeded, PaymentIntentID: "pi_3"},
	}
	gateway := &mockGateway{ParseEventFunc: func(payload []byte, signature string) (WebhookEvent, error) {
		if signature != "valid" {
			return WebhookEvent{}, ErrInvalidSignature
		}
		return events[string(payload)], nil
	}}
	svc := NewService(gateway, ords, priceList{}, converter(t))
	ctx := context.Background()

	for _, name := range []string{"ok", "failed", "other", "orphan"} {
		require.NoError(t, svc.HandleWebhook(ctx, []byte(name), "valid"), name)
	}
	assert.Equal(t, []string{"pi_1"}, paid)
	assert.Equal(t, []string{"pi_2"}, failed)

	assert.ErrorIs(t, svc.HandleWebhook(ctx, []byte("ok"), "forged"), ErrInvalidSignature)
}

func TestStripeGatewayDisabledWithoutKeys(t *testing.T) {
	g := NewStripeGateway("", "")
	_, err := g.CreateIntent(context.Background(), IntentRequest{Amount: 100, Currency: "usd"})
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
	_, err = g.ParseEvent([]byte("{}"), "sig")
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestStripeGatewayRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_123", "whsec_test")
	_, err := g.ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
