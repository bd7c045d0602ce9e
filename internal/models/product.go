package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

type Variant struct {
	ID      string            `json:"id" bson:"id" yaml:"id"`
	SKU     string            `json:"sku" bson:"sku" yaml:"sku"`
	Name    string            `json:"name" bson:"name" yaml:"name"`
	Price   float64           `json:"price" bson:"price" yaml:"price"`
	Stock   int               `json:"stock" bson:"stock" yaml:"stock"`
	Options map[string]string `json:"options" bson:"options" yaml:"options"` // e.g., {"Storage": "256GB", "Color": "Black"}
	Image   string            `json:"image,omitempty" bson:"image,omitempty" yaml:"image"`
}

type Spec struct {
	Key   string `json:"key" bson:"key" yaml:"key"`
	Value string `json:"value" bson:"value" yaml:"value"`
}

// Product is the catalog document as the CMS stores it. Older documents carry
// their price under one of the alias fields; catalog.Normalize reconciles them.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `json:"name" bson:"name" yaml:"name" validate:"required"`
	Slug        string             `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Brand       string             `json:"brand" bson:"brand" yaml:"brand"`
	Category    string             `json:"category" bson:"category" yaml:"category"` // category slug
	Description string             `json:"description" bson:"description" yaml:"description"`
	Tags        []string           `json:"tags" bson:"tags" yaml:"tags"`

	Images []string `json:"images" bson:"images" yaml:"images"` // First image is primary

	// Pricing
	Price          float64 `json:"price" bson:"price" yaml:"price"`
	SalePrice      float64 `json:"salePrice,omitempty" bson:"salePrice,omitempty" yaml:"salePrice"`
	OriginalPrice  float64 `json:"originalPrice,omitempty" bson:"originalPrice,omitempty" yaml:"originalPrice"`
	DiscountPrice  float64 `json:"discountPrice,omitempty" bson:"discountPrice,omitempty" yaml:"discountPrice"`
	CompareAtPrice float64 `json:"compareAtPrice,omitempty" bson:"compareAtPrice,omitempty" yaml:"compareAtPrice"`

	// Inventory
	SKU      string    `json:"sku" bson:"sku" yaml:"sku"`
	Stock    int       `json:"stock" bson:"stock" yaml:"stock" validate:"gte=0"`
	Variants []Variant `json:"variants" bson:"variants" yaml:"variants"`

	Specs []Spec `json:"specs" bson:"specs" yaml:"specs"`

	Featured    bool          `json:"featured" bson:"featured" yaml:"featured"`
	Status      ProductStatus `json:"status" bson:"status" yaml:"status"`
	Rating      float64       `json:"rating" bson:"rating" yaml:"rating"`
	ReviewCount int           `json:"reviewCount" bson:"reviewCount" yaml:"reviewCount"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// HasVariants reports whether stock is tracked per variant.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

func (p Product) FindVariant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// ProductView is the normalized shape served to the storefront.
type ProductView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Brand           string        `json:"brand"`
	Category        string        `json:"category"`
	Description     string        `json:"description"`
	Tags            []string      `json:"tags"`
	Image           string        `json:"image"`
	Images          []string      `json:"images"`
	Price           float64       `json:"price"`
	CompareAtPrice  float64       `json:"compareAtPrice,omitempty"`
	DiscountPercent int           `json:"discountPercent,omitempty"`
	Currency        string        `json:"currency"`
	SKU             string        `json:"sku"`
	Stock           int           `json:"stock"`
	InStock         bool          `json:"inStock"`
	Variants        []VariantView `json:"variants"`
	Specs           []Spec        `json:"specs"`
	Featured        bool          `json:"featured"`
	Rating          float64       `json:"rating"`
	ReviewCount     int           `json:"reviewCount"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type VariantView struct {
	ID      string            `json:"id"`
	SKU     string            `json:"sku"`
	Name    string            `json:"name"`
	Price   float64           `json:"price"`
	Stock   int               `json:"stock"`
	InStock bool              `json:"inStock"`
	Options map[string]string `json:"options"`
	Image   string            `json:"image"`
}
