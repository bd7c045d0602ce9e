package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxHistoryItems = 20

type HistoryEntry struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	ViewedAt  time.Time          `json:"viewedAt" bson:"viewedAt"`
}

type History struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `json:"userId" bson:"userId"`
	Entries []HistoryEntry     `json:"entries" bson:"entries"` // most recent first
}

type HistoryItem struct {
	Product  ProductView `json:"product"`
	ViewedAt time.Time   `json:"viewedAt"`
}
