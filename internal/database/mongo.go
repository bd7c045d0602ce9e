package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client and verifies the deployment is reachable.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetServerSelectionTimeout(20 * time.Second)

	logrus.Info("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	logrus.WithField("database", dbName).Info("Connected to MongoDB")

	return client, client.Database(dbName), nil
}

// Dropper drops whole collections of one database.
type Dropper struct {
	DB *mongo.Database
}

func (d Dropper) Drop(ctx context.Context, collections ...string) error {
	for _, name := range collections {
		if err := d.DB.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
		logrus.WithField("collection", name).Info("Collection dropped")
	}
	return nil
}
