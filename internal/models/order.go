package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefunded  OrderStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusRefunded},
	StatusShipped: {StatusDelivered},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID     primitive.ObjectID  `json:"productId" bson:"productId"`
	VariantID     string              `json:"variantId,omitempty" bson:"variantId,omitempty"`
	BundleID      *primitive.ObjectID `json:"bundleId,omitempty" bson:"bundleId,omitempty"`
	Name          string              `json:"name" bson:"name"`
	Image         string              `json:"image" bson:"image"`
	SKU           string              `json:"sku" bson:"sku"`
	Price         float64             `json:"price" bson:"price"`
	OriginalPrice float64             `json:"originalPrice" bson:"originalPrice"`
	Quantity      int                 `json:"quantity" bson:"quantity"`
	Subtotal      float64             `json:"subtotal" bson:"subtotal"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `json:"orderNumber" bson:"orderNumber"` // e.g., TN-48213-552
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Items       []OrderItem        `json:"items" bson:"items"`

	// Pricing Breakdown
	Subtotal    float64 `json:"subtotal" bson:"subtotal"`
	Savings     float64 `json:"savings" bson:"savings"`
	ShippingFee float64 `json:"shippingFee" bson:"shippingFee"`
	Tax         float64 `json:"tax" bson:"tax"`
	Total       float64 `json:"total" bson:"total"`
	Currency    string  `json:"currency" bson:"currency"`

	Status        OrderStatus `json:"status" bson:"status"`
	PaymentStatus string      `json:"paymentStatus" bson:"paymentStatus"`
	PaymentID     string      `json:"paymentId" bson:"paymentId"`
	PaymentMethod string      `json:"paymentMethod" bson:"paymentMethod"`

	ShippingAddress string `json:"shippingAddress" bson:"shippingAddress"`
	TrackingNumber  string `json:"trackingNumber" bson:"trackingNumber"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type PlaceOrderInput struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	PaymentMethod   string `json:"paymentMethod" binding:"required"`
}
