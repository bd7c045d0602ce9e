// Package payments prices checkouts server side and creates payment intents.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

var (
	ErrNothingToPay     = errors.New("provide an orderId or at least one item")
	ErrAmountTooSmall   = errors.New("amount is below the minimum charge of 0.50")
	ErrOrderNotPayable  = errors.New("order is not awaiting payment")
	ErrInvalidReference = errors.New("invalid product or bundle reference")
)

var minimumCharge = decimal.RequireFromString("0.50")

// intentNamespace scopes the deterministic idempotency keys of order payments.
var intentNamespace = uuid.MustParse("0b5b3d4e-6f1c-4a43-9a57-3f0d1c2e8a10")

type Orders interface {
	Get(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error)
	MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
	MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
}

type Cart interface {
	Reprice(ctx context.Context, items []models.CartItem) ([]models.CartItem, error)
	Totals(items []models.CartItem) models.CartTotals
}

type Currencies interface {
	Normalize(code string) (string, error)
	FromBase(amount float64, to string) (float64, error)
}

type ItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId"`
	BundleID  string `json:"bundleId"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateIntentInput struct {
	OrderID  string      `json:"orderId"`
	Items    []ItemInput `json:"items" binding:"omitempty,dive"`
	Currency string      `json:"currency"`
	// IdempotencyKey overrides the generated key, usually from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type IntentResult struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	AmountMinor     int64   `json:"amountMinor"`
	Currency        string  `json:"currency"`
}

type Service interface {
	CreateIntent(ctx context.Context, userID primitive.ObjectID, in CreateIntentInput) (IntentResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	gateway    Gateway
	orders     Orders
	cart       Cart
	currencies Currencies
}

func NewService(gateway Gateway, orders Orders, cart Cart, currencies Currencies) Service {
	return &service{gateway: gateway, orders: orders, cart: cart, currencies: currencies}
}

func (s *service) CreateIntent(ctx context.Context, userID primitive.ObjectID, in CreateIntentInput) (IntentResult, error) {
	var (
		amount   decimal.Decimal
		code     string
		key      = in.IdempotencyKey
		metadata = map[string]string{"userId": userID.Hex()}
	)

	switch {
	case in.OrderID != "":
		orderID, err := primitive.ObjectIDFromHex(in.OrderID)
		if err != nil {
			return IntentResult{}, ErrInvalidReference
		}
		order, err := s.orders.Get(ctx, userID, false, orderID)
		if err != nil {
			return IntentResult{}, err
		}
		if order.Status != models.StatusPending || order.PaymentStatus == "paid" {
			return IntentResult{}, ErrOrderNotPayable
		}
		amount = pricing.Money(order.Total)
		code = order.Currency
		if code == "" {
			code = currency.Base
		}
		metadata["orderId"] = order.ID.Hex()
		if key == "" {
			// Retrying payment for the same order and amount reuses the intent.
			key = uuid.NewSHA1(intentNamespace, []byte(order.ID.Hex()+":"+amount.String()+":"+code)).String()
		}

	case len(in.Items) > 0:
		var err error
		if code, err = s.currencies.Normalize(in.Currency); err != nil {
			return IntentResult{}, err
		}
		items, err := toCartItems(in.Items)
		if err != nil {
			return IntentResult{}, err
		}
		priced, err := s.cart.Reprice(ctx, items)
		if err != nil {
			return IntentResult{}, err
		}
		totals, err := pricing.ConvertTotals(s.cart.Totals(priced), s.currencies, code)
		if err != nil {
			return IntentResult{}, err
		}
		amount = pricing.Money(totals.Total)

	default:
		return IntentResult{}, ErrNothingToPay
	}

	if amount.LessThan(minimumCharge) {
		return IntentResult{}, ErrAmountTooSmall
	}
	if key == "" {
		key = uuid.NewString()
	}

	minor := currency.MinorUnits(amount, code)
	intent, err := s.gateway.CreateIntent(ctx, IntentRequest{
		Amount:         minor,
		Currency:       code,
		Metadata:       metadata,
		IdempotencyKey: key,
	})
	if err != nil {
		return IntentResult{}, err
	}

	return IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount.InexactFloat64(),
		AmountMinor:     minor,
		Currency:        code,
	}, nil
}

func toCartItems(in []ItemInput) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(in))
	for _, it := range in {
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return nil, ErrInvalidReference
		}
		item := models.CartItem{ProductID: pid, VariantID: it.VariantID, Quantity: it.Quantity}
		if it.BundleID != "" {
			bid, err := primitive.ObjectIDFromHex(it.BundleID)
			if err != nil {
				return nil, ErrInvalidReference
			}
			item.BundleID = &bid
		}
		items = append(items, item)
	}
	return items, nil
}

// HandleWebhook applies a verified provider event. Events that do not
// reference one of our orders are acknowledged and ignored.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"event_type": evt.Type, "payment_intent": evt.PaymentIntentID})
	if evt.Type != EventPaymentSucceeded && evt.Type != EventPaymentFailed {
		log.Debug("ignoring webhook event")
		return nil
	}

	orderID, err := primitive.ObjectIDFromHex(evt.Metadata["orderId"])
	if err != nil {
		log.Info("payment event without an order reference")
		return nil
	}

	switch evt.Type {
	case EventPaymentSucceeded:
		err = s.orders.MarkPaid(ctx, orderID, evt.PaymentIntentID)
	case EventPaymentFailed:
		err = s.orders.MarkPaymentFailed(ctx, orderID, evt.PaymentIntentID)
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", evt.Type, err)
	}
	log.WithField("order_id", orderID.Hex()).Info("payment event applied")
	return nil
}
