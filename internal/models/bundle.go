package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bundle struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `json:"name" bson:"name" yaml:"name"`
	Slug            string               `json:"slug" bson:"slug" yaml:"slug"`
	Description     string               `json:"description" bson:"description" yaml:"description"`
	ProductIDs      []primitive.ObjectID `json:"productIds" bson:"productIds" yaml:"-"`
	DiscountPercent float64              `json:"discountPercent" bson:"discountPercent" yaml:"discountPercent"`
	Active          bool                 `json:"active" bson:"active" yaml:"active"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt" yaml:"-"`
}

type BundleMember struct {
	Product     ProductView `json:"product"`
	BundlePrice float64     `json:"bundlePrice"`
}

// ResolvedBundle is a bundle with its member products fetched and priced.
type ResolvedBundle struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Description     string         `json:"description"`
	DiscountPercent float64        `json:"discountPercent"`
	Members         []BundleMember `json:"members"`
	OriginalTotal   float64        `json:"originalTotal"`
	BundleTotal     float64        `json:"bundleTotal"`
	Savings         float64        `json:"savings"`
	Currency        string         `json:"currency"`
}
