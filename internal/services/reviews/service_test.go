package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/adapters/repository/repotest"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
)

type mockCatalog struct {
	ProductFunc func(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

func (m *mockCatalog) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return m.ProductFunc(ctx, id)
}

var (
	user    = primitive.NewObjectID()
	product = primitive.NewObjectID()
)

func knownProduct() *mockCatalog {
	return &mockCatalog{ProductFunc: func(_ context.Context, id primitive.ObjectID) (models.Product, error) {
		if id == product {
			return models.Product{ID: id, Status: models.ProductStatusActive}, nil
		}
		return models.Product{}, catalog.ErrProductNotFound
	}}
}

func TestCreateRecomputesRating(t *testing.T) {
	var saved models.Review
	var rating float64
	var count int
	reviews := &repotest.Reviews{
		CreateReviewFunc: func(_ context.Context, r models.Review) error {
			saved = r
			return nil
		},
		GetAverageRatingFunc: func(context.Context, primitive.ObjectID) (float64, int, error) {
			return 4.333333, 3, nil
		},
	}
	products := &repotest.Products{
		UpdateRatingFunc: func(_ context.Context, id primitive.ObjectID, r float64, c int) error {
			assert.Equal(t, product, id)
			rating, count = r, c
			return nil
		},
	}
	orders := &repotest.Orders{
		HasPurchasedFunc: func(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) { return true, nil },
	}
	users := &repotest.Users{
		GetByIDFunc: func(_ context.Context, id primitive.ObjectID) (models.User, error) {
			return models.User{ID: id, Name: "Ada"}, nil
		},
	}
	svc := NewService(reviews, products, orders, users, knownProduct())

	review, err := svc.Create(context.Background(), user, models.CreateReviewInput{
		ProductID: product.Hex(),
		Rating:    5,
		Title:     "  Great  ",
		Comment:   "Loud and clear",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", review.UserName)
	assert.Equal(t, "Great", review.Title)
	assert.True(t, review.VerifiedPurchase)
	assert.Equal(t, review.ID, saved.ID)
	assert.Equal(t, 4.3, rating)
	assert.Equal(t, 3, count)
}

func TestCreateOneReviewPerUser(t *testing.T) {
	reviews := &repotest.Reviews{
		HasReviewedFunc: func(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) { return true, nil },
		CreateReviewFunc: func(context.Context, models.Review) error {
			t.Fatal("duplicate review must not be saved")
			return nil
		},
	}
	svc := NewService(reviews, &repotest.Products{}, &repotest.Orders{}, &repotest.Users{}, knownProduct())

	_, err := svc.Create(context.Background(), user, models.CreateReviewInput{ProductID: product.Hex(), Rating: 4, Comment: "again"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreateMapsDuplicateKey(t *testing.T) {
	reviews := &repotest.Reviews{
		CreateReviewFunc: func(context.Context, models.Review) error { return repository.ErrDuplicate },
	}
	svc := NewService(reviews, &repotest.Products{}, &repotest.Orders{}, &repotest.Users{}, knownProduct())

	_, err := svc.Create(context.Background(), user, models.CreateReviewInput{ProductID: product.Hex(), Rating: 4, Comment: "race"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&repotest.Reviews{}, &repotest.Products{}, &repotest.Orders{}, &repotest.Users{}, knownProduct())
	ctx := context.Background()

	_, err := svc.Create(ctx, user, models.CreateReviewInput{ProductID: product.Hex(), Rating: 6, Comment: "x"})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create(ctx, user, models.CreateReviewInput{ProductID: "nope", Rating: 3, Comment: "x"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Create(ctx, user, models.CreateReviewInput{ProductID: primitive.NewObjectID().Hex(), Rating: 3, Comment: "x"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateKeepsReviewWhenRatingRefreshFails(t *testing.T) {
	reviews := &repotest.Reviews{
		GetAverageRatingFunc: func(context.Context, primitive.ObjectID) (float64, int, error) {
			return 0, 0, errors.New("aggregate failed")
		},
	}
	svc := NewService(reviews, &repotest.Products{}, &repotest.Orders{}, &repotest.Users{}, knownProduct())

	_, err := svc.Create(context.Background(), user, models.CreateReviewInput{ProductID: product.Hex(), Rating: 3, Comment: "ok"})
	assert.NoError(t, err)
}

func TestListForProductNeverNil(t *testing.T) {
	svc := NewService(&repotest.Reviews{}, &repotest.Products{}, &repotest.Orders{}, &repotest.Users{}, knownProduct())
	reviews, err := svc.ListForProduct(context.Background(), product)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}
