package repository

import (
	"context"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CompareRepository interface {
	GetCompareList(ctx context.Context, userID primitive.ObjectID) (models.CompareList, error)
	SaveCompareList(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error
}

type MongoCompareRepository struct {
	DB *mongo.Database
}

func NewCompareRepository(db *mongo.Database) CompareRepository {
	return &MongoCompareRepository{DB: db}
}

func (r *MongoCompareRepository) GetCompareList(ctx context.Context, userID primitive.ObjectID) (models.CompareList, error) {
	var list models.CompareList
	err := r.DB.Collection("compares").FindOne(ctx, bson.M{"userId": userID}).Decode(&list)
	if err == mongo.ErrNoDocuments {
		return models.CompareList{UserID: userID, ProductIDs: []primitive.ObjectID{}}, nil
	}
	if err != nil {
		return models.CompareList{}, err
	}
	return list, nil
}

func (r *MongoCompareRepository) SaveCompareList(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	if productIDs == nil {
		productIDs = []primitive.ObjectID{}
	}
	update := bson.M{"$set": bson.M{"productIds": productIDs, "updatedAt": time.Now()}}
	_, err := r.DB.Collection("compares").UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	return err
}
