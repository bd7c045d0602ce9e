package repository

import (
	"context"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpsertBySlug(ctx context.Context, category models.Category) error
}

type MongoCategoryRepository struct {
	DB *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db}
}

func (r *MongoCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.DB.Collection("categories").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategoryRepository) UpsertBySlug(ctx context.Context, category models.Category) error {
	update := bson.M{
		"$set": bson.M{
			"name":        category.Name,
			"description": category.Description,
			"parent":      category.Parent,
			"image":       category.Image,
			"order":       category.Order,
		},
		"$setOnInsert": bson.M{
			"slug":      category.Slug,
			"createdAt": time.Now(),
		},
	}
	_, err := r.DB.Collection("categories").UpdateOne(ctx, bson.M{"slug": category.Slug}, update, options.Update().SetUpsert(true))
	return err
}
