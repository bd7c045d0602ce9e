package repository

import (
	"context"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) error
	HasReviewed(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	GetProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	GetAverageRating(ctx context.Context, productID primitive.ObjectID) (float64, int, error)
}

type MongoReviewRepository struct {
	DB *mongo.Database
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &MongoReviewRepository{DB: db}
}

func (r *MongoReviewRepository) CreateReview(ctx context.Context, review models.Review) error {
	_, err := r.DB.Collection("reviews").InsertOne(ctx, review)
	return translate(err)
}

func (r *MongoReviewRepository) HasReviewed(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	count, err := r.DB.Collection("reviews").CountDocuments(ctx, bson.M{
		"userId":    userID,
		"productId": productID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoReviewRepository) GetProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	collection := r.DB.Collection("reviews")
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoReviewRepository) GetAverageRating(ctx context.Context, productID primitive.ObjectID) (float64, int, error) {
	collection := r.DB.Collection("reviews")
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$productId",
			"avgRating": bson.M{"$avg": "$rating"},
			"total":     bson.M{"$sum": 1},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgRating float64 `bson:"avgRating"`
		Total     int     `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}

	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].AvgRating, results[0].Total, nil
}
