package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxCompareItems = 4

type CompareList struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `json:"userId" bson:"userId"`
	ProductIDs []primitive.ObjectID `json:"productIds" bson:"productIds"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type CompareRow struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type CompareTable struct {
	Products []ProductView `json:"products"`
	Rows     []CompareRow  `json:"rows"`
}
