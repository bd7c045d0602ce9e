package models

import "time"

type CurrencyRate struct {
	Code      string    `json:"code" bson:"code" yaml:"code"`
	Name      string    `json:"name" bson:"name" yaml:"name"`
	Symbol    string    `json:"symbol" bson:"symbol" yaml:"symbol"`
	Rate      float64   `json:"rate" bson:"rate" yaml:"rate"` // units per 1 USD
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}
