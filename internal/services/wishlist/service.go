package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/cart"
)

var ErrProductNotFound = errors.New("product not found")

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

type CartAdder interface {
	AddItem(ctx context.Context, userID primitive.ObjectID, in cart.AddItemInput) (cart.Result, error)
}

type Service interface {
	Add(ctx context.Context, userID primitive.ObjectID, productID string) error
	Remove(ctx context.Context, userID primitive.ObjectID, productID string) error
	List(ctx context.Context, userID primitive.ObjectID) ([]models.ProductView, error)
	Contains(ctx context.Context, userID primitive.ObjectID, productID string) (bool, error)
	MoveToCart(ctx context.Context, userID primitive.ObjectID, productID, variantID string, qty int) (cart.Result, error)
}

type service struct {
	repo      repository.WishlistRepository
	catalog   Catalog
	cart      CartAdder
	mediaBase string
}

func NewService(repo repository.WishlistRepository, cat Catalog, carts CartAdder, mediaBaseURL string) Service {
	return &service{repo: repo, catalog: cat, cart: carts, mediaBase: mediaBaseURL}
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrProductNotFound
	}
	return id, nil
}

// Add is idempotent.
func (s *service) Add(ctx context.Context, userID primitive.ObjectID, productID string) error {
	id, err := parseID(productID)
	if err != nil {
		return err
	}
	if _, err := s.catalog.Product(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.repo.AddToWishlist(ctx, userID, id); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID primitive.ObjectID, productID string) error {
	id, err := parseID(productID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveFromWishlist(ctx, userID, id); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID primitive.ObjectID) ([]models.ProductView, error) {
	w, err := s.repo.GetWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	views := make([]models.ProductView, 0, len(w.Products))
	for _, p := range w.Products {
		views = append(views, catalog.Normalize(p, s.mediaBase))
	}
	return views, nil
}

func (s *service) Contains(ctx context.Context, userID primitive.ObjectID, productID string) (bool, error) {
	id, err := parseID(productID)
	if err != nil {
		return false, err
	}
	return s.repo.Contains(ctx, userID, id)
}

// MoveToCart adds the product to the cart and only then drops it from the
// wishlist, so a failed add leaves the wishlist untouched.
func (s *service) MoveToCart(ctx context.Context, userID primitive.ObjectID, productID, variantID string, qty int) (cart.Result, error) {
	id, err := parseID(productID)
	if err != nil {
		return cart.Result{}, err
	}
	if qty < 1 {
		qty = 1
	}
	res, err := s.cart.AddItem(ctx, userID, cart.AddItemInput{ProductID: productID, VariantID: variantID, Quantity: qty})
	if err != nil {
		return cart.Result{}, err
	}
	if err := s.repo.RemoveFromWishlist(ctx, userID, id); err != nil {
		logrus.WithError(err).WithField("product_id", productID).Warn("moved to cart but failed to remove from wishlist")
	}
	return res, nil
}
