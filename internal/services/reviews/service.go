package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

type Service interface {
	Create(ctx context.Context, userID primitive.ObjectID, in models.CreateReviewInput) (models.Review, error)
	ListForProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
}

type service struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	catalog  Catalog
	now      func() time.Time
}

func NewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	cat Catalog,
) Service {
	return &service{
		reviews:  reviews,
		products: products,
		orders:   orders,
		users:    users,
		catalog:  cat,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID primitive.ObjectID, in models.CreateReviewInput) (models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, ErrInvalidRating
	}
	productID, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return models.Review{}, ErrProductNotFound
	}
	if _, err := s.catalog.Product(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return models.Review{}, ErrProductNotFound
		}
		return models.Review{}, err
	}

	reviewed, err := s.reviews.HasReviewed(ctx, userID, productID)
	if err != nil {
		return models.Review{}, fmt.Errorf("check existing review: %w", err)
	}
	if reviewed {
		return models.Review{}, ErrAlreadyReviewed
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Review{}, fmt.Errorf("load reviewer: %w", err)
	}
	purchased, err := s.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return models.Review{}, fmt.Errorf("check purchase: %w", err)
	}

	now := s.now()
	review := models.Review{
		ID:               primitive.NewObjectID(),
		ProductID:        productID,
		UserID:           userID,
		UserName:         user.Name,
		Rating:           in.Rating,
		Title:            strings.TrimSpace(in.Title),
		Comment:          strings.TrimSpace(in.Comment),
		VerifiedPurchase: purchased,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		// The unique (userId, productId) index catches a concurrent duplicate.
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Review{}, ErrAlreadyReviewed
		}
		return models.Review{}, fmt.Errorf("save review: %w", err)
	}

	if err := s.refreshRating(ctx, productID); err != nil {
		logrus.WithError(err).WithField("product_id", productID.Hex()).Warn("failed to refresh product rating")
	}
	return review, nil
}

// refreshRating recomputes the product's rating from all of its reviews.
func (s *service) refreshRating(ctx context.Context, productID primitive.ObjectID) error {
	avg, count, err := s.reviews.GetAverageRating(ctx, productID)
	if err != nil {
		return err
	}
	rating := decimal.NewFromFloat(avg).Round(1).InexactFloat64()
	return s.products.UpdateRating(ctx, productID, rating, count)
}

func (s *service) ListForProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	reviews, err := s.reviews.GetProductReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}
