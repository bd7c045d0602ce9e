package repository

import (
	"context"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CurrencyRepository interface {
	ListRates(ctx context.Context) ([]models.CurrencyRate, error)
	UpsertRate(ctx context.Context, rate models.CurrencyRate) error
}

type MongoCurrencyRepository struct {
	DB *mongo.Database
}

func NewCurrencyRepository(db *mongo.Database) CurrencyRepository {
	return &MongoCurrencyRepository{DB: db}
}

func (r *MongoCurrencyRepository) ListRates(ctx context.Context) ([]models.CurrencyRate, error) {
	cursor, err := r.DB.Collection("currencyRates").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	rates := []models.CurrencyRate{}
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *MongoCurrencyRepository) UpsertRate(ctx context.Context, rate models.CurrencyRate) error {
	update := bson.M{"$set": bson.M{
		"name":      rate.Name,
		"symbol":    rate.Symbol,
		"rate":      rate.Rate,
		"updatedAt": time.Now(),
	}}
	_, err := r.DB.Collection("currencyRates").UpdateOne(ctx, bson.M{"code": rate.Code}, update, options.Update().SetUpsert(true))
	return err
}
