// Package orders turns carts into orders and moves them through fulfilment.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/events"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

var (
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("you do not have permission to view this order")
	ErrInvalidTransition = errors.New("order cannot move to that status")
)

type Cart interface {
	Get(ctx context.Context, userID primitive.ObjectID) (models.CartView, error)
	Reprice(ctx context.Context, items []models.CartItem) ([]models.CartItem, error)
	Totals(items []models.CartItem) models.CartTotals
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// Inventory is the stock side of the product repository.
type Inventory interface {
	DecrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) error
}

type Currencies interface {
	Normalize(code string) (string, error)
	FromBase(amount float64, to string) (float64, error)
}

type PlaceOrderInput struct {
	models.PlaceOrderInput
	Currency string `json:"currency"`
}

type StatusUpdate struct {
	Status         models.OrderStatus `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled refunded"`
	TrackingNumber string             `json:"trackingNumber"`
}

type Service interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (models.Order, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// Get returns the order if userID owns it or isAdmin is set.
	Get(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error)
	UpdateStatus(ctx context.Context, orderID primitive.ObjectID, in StatusUpdate) (models.Order, error)
	ConfirmReceipt(ctx context.Context, userID, orderID primitive.ObjectID) (models.Order, error)
	MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
	MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
}

type service struct {
	orders     repository.OrderRepository
	inventory  Inventory
	cart       Cart
	currencies Currencies
	publisher  events.Publisher
	now        func() time.Time
}

func NewService(orders repository.OrderRepository, inventory Inventory, cart Cart, currencies Currencies, publisher events.Publisher) Service {
	return &service{
		orders:     orders,
		inventory:  inventory,
		cart:       cart,
		currencies: currencies,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *service) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (models.Order, error) {
	code, err := s.currencies.Normalize(in.Currency)
	if err != nil {
		return models.Order{}, err
	}

	current, err := s.cart.Get(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if len(current.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	// Prices come from the catalog at checkout, never from the stored snapshot.
	items, err := s.cart.Reprice(ctx, current.Items)
	if err != nil {
		return models.Order{}, err
	}

	reserved, err := s.reserve(ctx, items)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.build(userID, items, in, code)
	if err != nil {
		s.release(reserved)
		return models.Order{}, err
	}
	if err := s.orders.InsertOrder(ctx, order); err != nil {
		s.release(reserved)
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID.Hex()).Warn("order placed but cart was not cleared")
	}
	s.publish(ctx, events.OrderPlaced, order)
	return order, nil
}

// reserve takes stock for every line. On failure it gives back what it took.
func (s *service) reserve(ctx context.Context, items []models.CartItem) ([]models.CartItem, error) {
	taken := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		ok, err := s.inventory.DecrementStock(ctx, item.ProductID, item.VariantID, item.Quantity)
		if err != nil {
			s.release(taken)
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			s.release(taken)
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.Name)
		}
		taken = append(taken, item)
	}
	return taken, nil
}

// release runs on a fresh context; the request context may already be done.
func (s *service) release(items []models.CartItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, item := range items {
		if err := s.inventory.IncrementStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"product_id": item.ProductID.Hex(),
				"variant_id": item.VariantID,
				"quantity":   item.Quantity,
			}).Error("failed to restore stock")
		}
	}
}

func (s *service) build(userID primitive.ObjectID, items []models.CartItem, in PlaceOrderInput, code string) (models.Order, error) {
	totals, err := pricing.ConvertTotals(s.cart.Totals(items), s.currencies, code)
	if err != nil {
		return models.Order{}, err
	}

	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		price, err := s.currencies.FromBase(item.Price, code)
		if err != nil {
			return models.Order{}, err
		}
		original, err := s.currencies.FromBase(item.OriginalPrice, code)
		if err != nil {
			return models.Order{}, err
		}
		lines = append(lines, models.OrderItem{
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			BundleID:      item.BundleID,
			Name:          item.Name,
			Image:         item.Image,
			SKU:           item.SKU,
			Price:         price,
			OriginalPrice: original,
			Quantity:      item.Quantity,
			Subtotal:      pricing.LineTotal(price, item.Quantity).InexactFloat64(),
		})
	}

	now := s.now()
	return models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     OrderNumber(now),
		UserID:          userID,
		Items:           lines,
		Subtotal:        totals.Subtotal,
		Savings:         totals.Savings,
		ShippingFee:     totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Currency:        totals.Currency,
		Status:          models.StatusPending,
		PaymentStatus:   "pending",
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// OrderNumber is the human-facing reference, e.g. TN-260315-1A2B3C.
func OrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TN-%s-%s", at.UTC().Format("060102"), suffix)
}

func (s *service) List(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *service) load(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	order, err := s.orders.GetOrderById(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !isAdmin && order.UserID != userID {
		return models.Order{}, ErrForbidden
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, in StatusUpdate) (models.Order, error) {
	return s.transition(ctx, orderID, in.Status, in.TrackingNumber)
}

func (s *service) ConfirmReceipt(ctx context.Context, userID, orderID primitive.ObjectID) (models.Order, error) {
	order, err := s.Get(ctx, userID, false, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != models.StatusShipped {
		return models.Order{}, fmt.Errorf("%w: only shipped orders can be confirmed", ErrInvalidTransition)
	}
	return s.transition(ctx, orderID, models.StatusDelivered, "")
}

func (s *service) transition(ctx context.Context, orderID primitive.ObjectID, next models.OrderStatus, tracking string) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !order.Status.CanTransition(next) {
		return models.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
	}

	err = s.orders.UpdateOrderStatus(ctx, orderID, order.Status, next, tracking)
	if errors.Is(err, repository.ErrConflict) {
		return models.Order{}, fmt.Errorf("%w: order was updated concurrently", ErrInvalidTransition)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if next == models.StatusCancelled {
		s.restock(order)
	}

	previous := order.Status
	order.Status = next
	if tracking != "" {
		order.TrackingNumber = tracking
	}
	order.UpdatedAt = s.now()

	s.publish(ctx, events.OrderStatusChanged, map[string]any{
		"orderId": order.ID.Hex(),
		"userId":  order.UserID.Hex(),
		"from":    previous,
		"to":      next,
	})
	return order, nil
}

func (s *service) restock(order models.Order) {
	items := make([]models.CartItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.CartItem{ProductID: item.ProductID, VariantID: item.VariantID, Quantity: item.Quantity})
	}
	s.release(items)
}

// MarkPaid is safe to call repeatedly; only the first call publishes.
func (s *service) MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	changed, err := s.orders.MarkPaid(ctx, orderID, paymentID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if changed {
		s.publish(ctx, events.OrderPaid, map[string]string{"orderId": orderID.Hex(), "paymentId": paymentID})
	}
	return nil
}

func (s *service) MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	if err := s.orders.MarkPaymentFailed(ctx, orderID, paymentID); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}

func (s *service) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		logrus.WithError(err).WithField("event_type", eventType).Warn("failed to publish event")
	}
}
