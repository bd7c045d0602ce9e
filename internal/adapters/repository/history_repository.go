package repository

import (
	"context"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HistoryRepository interface {
	GetHistory(ctx context.Context, userID primitive.ObjectID) (models.History, error)
	SaveHistory(ctx context.Context, userID primitive.ObjectID, entries []models.HistoryEntry) error
}

type MongoHistoryRepository struct {
	DB *mongo.Database
}

func NewHistoryRepository(db *mongo.Database) HistoryRepository {
	return &MongoHistoryRepository{DB: db}
}

func (r *MongoHistoryRepository) GetHistory(ctx context.Context, userID primitive.ObjectID) (models.History, error) {
	var h models.History
	err := r.DB.Collection("histories").FindOne(ctx, bson.M{"userId": userID}).Decode(&h)
	if err == mongo.ErrNoDocuments {
		return models.History{UserID: userID, Entries: []models.HistoryEntry{}}, nil
	}
	if err != nil {
		return models.History{}, err
	}
	return h, nil
}

func (r *MongoHistoryRepository) SaveHistory(ctx context.Context, userID primitive.ObjectID, entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	_, err := r.DB.Collection("histories").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"entries": entries}},
		options.Update().SetUpsert(true))
	return err
}
