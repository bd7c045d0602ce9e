package repository

import (
	"context"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BundleRepository interface {
	ListActive(ctx context.Context) ([]models.Bundle, error)
	GetBundle(ctx context.Context, filter bson.M) (models.Bundle, error)
	UpsertBySlug(ctx context.Context, bundle models.Bundle) error
}

type MongoBundleRepository struct {
	DB *mongo.Database
}

func NewBundleRepository(db *mongo.Database) BundleRepository {
	return &MongoBundleRepository{DB: db}
}

func (r *MongoBundleRepository) ListActive(ctx context.Context) ([]models.Bundle, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.DB.Collection("bundles").Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	bundles := []models.Bundle{}
	if err := cursor.All(ctx, &bundles); err != nil {
		return nil, err
	}
	return bundles, nil
}

func (r *MongoBundleRepository) GetBundle(ctx context.Context, filter bson.M) (models.Bundle, error) {
	var bundle models.Bundle
	if err := r.DB.Collection("bundles").FindOne(ctx, filter).Decode(&bundle); err != nil {
		return models.Bundle{}, translate(err)
	}
	return bundle, nil
}

func (r *MongoBundleRepository) UpsertBySlug(ctx context.Context, bundle models.Bundle) error {
	update := bson.M{
		"$set": bson.M{
			"name":            bundle.Name,
			"description":     bundle.Description,
			"productIds":      bundle.ProductIDs,
			"discountPercent": bundle.DiscountPercent,
			"active":          bundle.Active,
		},
		"$setOnInsert": bson.M{
			"slug":      bundle.Slug,
			"createdAt": time.Now(),
		},
	}
	_, err := r.DB.Collection("bundles").UpdateOne(ctx, bson.M{"slug": bundle.Slug}, update, options.Update().SetUpsert(true))
	return err
}
