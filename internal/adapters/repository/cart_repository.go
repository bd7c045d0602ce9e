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

type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	SaveCart(ctx context.Context, cart models.Cart) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type MongoCartRepository struct {
	DB *mongo.Database
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &MongoCartRepository{DB: db}
}

// GetCart never fails for a shopper without a cart; it returns an empty one.
func (r *MongoCartRepository) GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	collection := r.DB.Collection("carts")
	var cart models.Cart

	err := collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// SaveCart replaces the cart if nobody else saved it since it was read.
// A cart read as empty (version 0) is upserted.
func (r *MongoCartRepository) SaveCart(ctx context.Context, cart models.Cart) error {
	collection := r.DB.Collection("carts")
	now := time.Now()

	filter := bson.M{"userId": cart.UserID, "version": cart.Version}
	if cart.Version == 0 {
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
	}
	update := bson.M{
		"$set": bson.M{
			"items":     cart.Items,
			"updatedAt": now,
			"version":   cart.Version + 1,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(cart.Version == 0))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (r *MongoCartRepository) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	collection := r.DB.Collection("carts")
	update := bson.M{
		"$set": bson.M{
			"items":     []models.CartItem{},
			"updatedAt": time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	_, err := collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	return err
}
