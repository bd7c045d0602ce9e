package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	UserName  string             `json:"userName" bson:"userName"`

	Rating  int    `json:"rating" bson:"rating"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Comment string `json:"comment" bson:"comment"`

	// Set when the reviewer bought the product through the storefront
	VerifiedPurchase bool `json:"verifiedPurchase" bson:"verifiedPurchase"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CreateReviewInput struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title" binding:"max=120"`
	Comment   string `json:"comment" binding:"required"`
}
