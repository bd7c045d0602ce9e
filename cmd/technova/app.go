package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/technova/storefront-api/internal/config"
	"github.com/technova/storefront-api/internal/database"
	"github.com/technova/storefront-api/internal/logger"
)

// app holds what every command needs: configuration and a live database.
type app struct {
	cfg    *config.Config
	client *mongo.Client
	db     *mongo.Database
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	return &app{cfg: cfg, client: client, db: db}, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
}
