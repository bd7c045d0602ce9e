package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID     primitive.ObjectID  `json:"productId" bson:"productId"`
	VariantID     string              `json:"variantId,omitempty" bson:"variantId,omitempty"`
	BundleID      *primitive.ObjectID `json:"bundleId,omitempty" bson:"bundleId,omitempty"`
	BundleName    string              `json:"bundleName,omitempty" bson:"bundleName,omitempty"`
	Name          string              `json:"name" bson:"name"`
	Image         string              `json:"image" bson:"image"`
	SKU           string              `json:"sku" bson:"sku"`
	Price         float64             `json:"price" bson:"price"`
	OriginalPrice float64             `json:"originalPrice" bson:"originalPrice"`
	Quantity      int                 `json:"quantity" bson:"quantity"`
	MaxStock      int                 `json:"maxStock" bson:"maxStock"`
	AddedAt       time.Time           `json:"addedAt" bson:"addedAt"`
}

// Key identifies a cart line: the same product can sit in the cart once on its
// own and once per bundle it was added with.
func (i CartItem) Key() string {
	bundle := ""
	if i.BundleID != nil {
		bundle = i.BundleID.Hex()
	}
	return LineKey(i.ProductID.Hex(), i.VariantID, bundle)
}

// StockKey groups lines drawing from the same inventory.
func (i CartItem) StockKey() string {
	return i.ProductID.Hex() + ":" + i.VariantID
}

// MarshalJSON adds the key clients address the line with.
func (i CartItem) MarshalJSON() ([]byte, error) {
	type plain CartItem
	return json.Marshal(struct {
		Key string `json:"key"`
		plain
	}{Key: i.Key(), plain: plain(i)})
}

func LineKey(productID, variantID, bundleID string) string {
	return fmt.Sprintf("%s:%s:%s", productID, variantID, bundleID)
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Items     []CartItem         `json:"items" bson:"items"`
	Version   int                `json:"-" bson:"version"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CartTotals struct {
	ItemCount        int     `json:"itemCount"`
	Subtotal         float64 `json:"subtotal"`
	OriginalSubtotal float64 `json:"originalSubtotal"`
	Savings          float64 `json:"savings"`
	Shipping         float64 `json:"shipping"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
	Currency         string  `json:"currency"`
}

type CartView struct {
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}
