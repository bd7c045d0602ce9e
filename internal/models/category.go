package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `json:"name" bson:"name" yaml:"name" validate:"required"`
	Description string             `json:"description,omitempty" bson:"description" yaml:"description"`
	Slug        string             `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Parent      string             `json:"parent,omitempty" bson:"parent,omitempty" yaml:"parent"` // parent slug, empty for top level
	Image       string             `json:"image,omitempty" bson:"image,omitempty" yaml:"image"`
	Order       int                `json:"order" bson:"order" yaml:"order"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt" yaml:"-"`
}

// NavItem is one column of the storefront mega-menu.
type NavItem struct {
	Category Category      `json:"category"`
	Children []Category    `json:"children"`
	Brands   []string      `json:"brands"`
	Featured []ProductView `json:"featured"`
}
