package repository

import (
	"context"
	"strings"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpdatePreferredCurrency(ctx context.Context, id primitive.ObjectID, code string) error
}

type MongoUserRepository struct {
	DB *mongo.Database
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{DB: db}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.DB.Collection("users").InsertOne(ctx, user); err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.DB.Collection("users").FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	return user, translate(err)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := r.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, translate(err)
}

func (r *MongoUserRepository) UpdatePreferredCurrency(ctx context.Context, id primitive.ObjectID, code string) error {
	res, err := r.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"preferredCurrency": code, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
