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

type OrderRepository interface {
	InsertOrder(ctx context.Context, order models.Order) error
	GetOrdersByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	GetOrderById(ctx context.Context, orderID primitive.ObjectID) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus, trackingNumber string) error
	MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) (bool, error)
	MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
	HasPurchased(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

type MongoOrderRepository struct {
	DB *mongo.Database
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{DB: db}
}

func (r *MongoOrderRepository) InsertOrder(ctx context.Context, order models.Order) error {
	_, err := r.DB.Collection("orders").InsertOne(ctx, order)
	return translate(err)
}

func (r *MongoOrderRepository) GetOrdersByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	collection := r.DB.Collection("orders")
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetOrderById(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	collection := r.DB.Collection("orders")
	var order models.Order
	err := collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	return order, translate(err)
}

// UpdateOrderStatus moves an order from one status to another. The update
// only applies while the order is still in the expected status.
func (r *MongoOrderRepository) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus, trackingNumber string) error {
	collection := r.DB.Collection("orders")

	updateData := bson.M{
		"status":    to,
		"updatedAt": time.Now(),
	}
	if trackingNumber != "" {
		updateData["trackingNumber"] = trackingNumber
	}
	if to == models.StatusRefunded {
		updateData["paymentStatus"] = "refunded"
	}

	res, err := collection.UpdateOne(ctx,
		bson.M{"_id": orderID, "status": from},
		bson.M{"$set": updateData})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// MarkPaid records a successful payment. It reports false when the order was
// already paid or does not exist, which makes webhook redelivery harmless.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) (bool, error) {
	res, err := r.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": orderID, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":        models.StatusPaid,
			"paymentStatus": "paid",
			"paymentId":     paymentID,
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoOrderRepository) MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	_, err := r.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": orderID, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"paymentStatus": "failed",
			"paymentId":     paymentID,
			"updatedAt":     time.Now(),
		}})
	return err
}

func (r *MongoOrderRepository) HasPurchased(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	count, err := r.DB.Collection("orders").CountDocuments(ctx, bson.M{
		"userId":          userID,
		"items.productId": productID,
		"status":          bson.M{"$in": bson.A{models.StatusPaid, models.StatusShipped, models.StatusDelivered}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
