package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexSpec struct {
	Collection string
	Model      mongo.IndexModel
}

// Indexes lists every index the API relies on.
func Indexes() []IndexSpec {
	return []IndexSpec{
		// products
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_slug").SetUnique(true),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_status_category_date"),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "featured", Value: 1}},
			Options: options.Index().SetName("idx_status_featured"),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "brand", Value: 1}},
			Options: options.Index().SetName("idx_brand"),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("idx_price"),
		}},
		// catalog taxonomy
		{"categories", mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_category_slug").SetUnique(true),
		}},
		{"bundles", mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_bundle_slug").SetUnique(true),
		}},
		{"currencyRates", mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("idx_currency_code").SetUnique(true),
		}},
		// shopper state, one document per user
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		}},
		{"carts", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("idx_cart_user").SetUnique(true),
		}},
		{"wishlists", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("idx_wishlist_user").SetUnique(true),
		}},
		{"compares", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("idx_compare_user").SetUnique(true),
		}},
		{"histories", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("idx_history_user").SetUnique(true),
		}},
		// orders and reviews
		{"orders", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_user_orders_date"),
		}},
		{"orders", mongo.IndexModel{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("idx_order_number").SetUnique(true),
		}},
		{"reviews", mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetName("idx_review_product_user").SetUnique(true),
		}},
	}
}

// EnsureIndexes creates every index, logging each one. It keeps going after a
// failure and reports how many were skipped.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	failed := 0
	for _, spec := range Indexes() {
		name, err := db.Collection(spec.Collection).Indexes().CreateOne(ctx, spec.Model)
		if err != nil {
			failed++
			logrus.WithError(err).WithField("collection", spec.Collection).Error("Failed to create index")
			continue
		}
		logrus.WithFields(logrus.Fields{"collection": spec.Collection, "index": name}).Info("Index ready")
	}
	if failed > 0 {
		return fmt.Errorf("%d indexes could not be created", failed)
	}
	return nil
}
