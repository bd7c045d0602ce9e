// Package cart is the per-user shopping cart. Every mutation re-reads live
// stock so the quantities drawing on one product variant never exceed what is
// on hand, no matter how many standalone or bundle lines share it.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/events"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

var (
	ErrOutOfStock         = errors.New("out of stock")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrVariantRequired    = errors.New("a variant must be selected for this product")
	ErrVariantNotFound    = errors.New("variant not found")
	ErrLineNotFound       = errors.New("item is not in the cart")
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrBusy               = errors.New("cart was updated concurrently, please retry")
)

const maxSaveAttempts = 3

// Catalog is the live product lookup the cart prices and checks stock against.
type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	ResolveBundle(ctx context.Context, id primitive.ObjectID) (catalog.BundleResolution, error)
}

type AddItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type AddBundleInput struct {
	BundleID string `json:"bundleId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	// Variants picks a variant per member product id. Members with variants
	// that are not listed get their first variant in stock.
	Variants map[string]string `json:"variants"`
}

// Result is a cart after a mutation. Adjusted is set when the requested
// quantity was reduced to fit the available stock.
type Result struct {
	Cart     models.CartView `json:"cart"`
	Adjusted bool            `json:"adjusted"`
	Message  string          `json:"message,omitempty"`
}

type Service interface {
	Get(ctx context.Context, userID primitive.ObjectID) (models.CartView, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, in AddItemInput) (Result, error)
	AddBundle(ctx context.Context, userID primitive.ObjectID, in AddBundleInput) (Result, error)
	UpdateQuantity(ctx context.Context, userID primitive.ObjectID, lineKey string, qty int) (Result, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, lineKey string) (models.CartView, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
	// Reprice refreshes line prices from the catalog, re-applying bundle discounts.
	Reprice(ctx context.Context, items []models.CartItem) ([]models.CartItem, error)
	Totals(items []models.CartItem) models.CartTotals
}

type service struct {
	carts     repository.CartRepository
	catalog   Catalog
	rules     pricing.Rules
	publisher events.Publisher
	mediaBase string
	now       func() time.Time
}

func NewService(carts repository.CartRepository, cat Catalog, rules pricing.Rules, publisher events.Publisher, mediaBaseURL string) Service {
	return &service{
		carts:     carts,
		catalog:   cat,
		rules:     rules,
		publisher: publisher,
		mediaBase: mediaBaseURL,
		now:       time.Now,
	}
}

func (s *service) Get(ctx context.Context, userID primitive.ObjectID) (models.CartView, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return models.CartView{}, fmt.Errorf("get cart: %w", err)
	}
	return s.view(cart.Items), nil
}

func (s *service) Totals(items []models.CartItem) models.CartTotals {
	return pricing.CartTotals(items, s.rules)
}

func (s *service) view(items []models.CartItem) models.CartView {
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartView{Items: items, Totals: s.Totals(items)}
}

// mutate applies fn to the stored cart and saves it, retrying when another
// request saved the cart in between. fn returns a note when it adjusted the
// request.
func (s *service) mutate(ctx context.Context, userID primitive.ObjectID, fn func(cart *models.Cart) (string, error)) (Result, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		cart, err := s.carts.GetCart(ctx, userID)
		if err != nil {
			return Result{}, fmt.Errorf("get cart: %w", err)
		}
		cart.UserID = userID

		note, err := fn(&cart)
		if err != nil {
			return Result{}, err
		}

		err = s.carts.SaveCart(ctx, cart)
		if errors.Is(err, repository.ErrConflict) {
			logrus.WithField("user_id", userID.Hex()).Debug("cart save conflict, retrying")
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("save cart: %w", err)
		}
		return Result{Cart: s.view(cart.Items), Adjusted: note != "", Message: note}, nil
	}
	return Result{}, ErrBusy
}

func (s *service) AddItem(ctx context.Context, userID primitive.ObjectID, in AddItemInput) (Result, error) {
	if in.Quantity < 1 {
		return Result{}, ErrInvalidQuantity
	}
	productID, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return Result{}, ErrProductUnavailable
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Result{}, err
	}
	stock, err := s.pick(p, in.VariantID)
	if err != nil {
		return Result{}, err
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) (string, error) {
		room := stock.ceiling - reserved(cart.Items, stock.key(), "")
		if stock.ceiling <= 0 {
			return "", fmt.Errorf("%w: %s", ErrOutOfStock, stock.name)
		}
		if room <= 0 {
			return "", fmt.Errorf("%w: all %d available units of %s are already in your cart", ErrOutOfStock, stock.ceiling, stock.name)
		}

		qty, note := in.Quantity, ""
		if qty > room {
			qty = room
			note = fmt.Sprintf("Only %d available, quantity adjusted", stock.ceiling)
		}

		line := stock.line(s.now())
		line.Quantity = qty
		cart.Items = merge(cart.Items, line)
		return note, nil
	})
}

func (s *service) AddBundle(ctx context.Context, userID primitive.ObjectID, in AddBundleInput) (Result, error) {
	if in.Quantity < 1 {
		return Result{}, ErrInvalidQuantity
	}
	bundleID, err := primitive.ObjectIDFromHex(in.BundleID)
	if err != nil {
		return Result{}, catalog.ErrBundleNotFound
	}
	res, err := s.catalog.ResolveBundle(ctx, bundleID)
	if err != nil {
		return Result{}, err
	}

	members := make([]stockLine, 0, len(res.Products))
	for _, p := range res.Products {
		sl, err := s.pick(p, catalog.DefaultVariant(p, in.Variants[p.ID.Hex()]))
		if err != nil {
			return Result{}, err
		}
		sl.bundle = &res.Bundle
		members = append(members, sl)
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) (string, error) {
		pending := map[string]int{}
		for _, m := range members {
			pending[m.key()] += in.Quantity
			if reserved(cart.Items, m.key(), "")+pending[m.key()] > m.ceiling {
				return "", fmt.Errorf("%w: not enough %s in stock for this bundle", ErrOutOfStock, m.name)
			}
		}

		now := s.now()
		for _, m := range members {
			line := m.line(now)
			line.Quantity = in.Quantity
			cart.Items = merge(cart.Items, line)
		}
		return "", nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, lineKey string, qty int) (Result, error) {
	if qty < 0 {
		return Result{}, ErrInvalidQuantity
	}
	if qty == 0 {
		return s.mutate(ctx, userID, func(cart *models.Cart) (string, error) {
			return "", remove(cart, lineKey)
		})
	}

	// Product documents are fetched before the retry loop; stock moves slower
	// than cart saves.
	products := map[primitive.ObjectID]models.Product{}
	return s.mutate(ctx, userID, func(cart *models.Cart) (string, error) {
		target, ok := findLine(cart.Items, lineKey)
		if !ok {
			return "", ErrLineNotFound
		}
		group := linesOf(cart.Items, target)

		allowed := qty
		limit := 0
		for _, idx := range group {
			item := cart.Items[idx]
			p, ok := products[item.ProductID]
			if !ok {
				var err error
				if p, err = s.product(ctx, item.ProductID); err != nil {
					return "", err
				}
				products[item.ProductID] = p
			}
			sl, err := s.pick(p, item.VariantID)
			if err != nil {
				return "", err
			}
			room := sl.ceiling - reserved(cart.Items, item.StockKey(), item.Key())
			if room <= 0 {
				return "", fmt.Errorf("%w: %s", ErrOutOfStock, sl.name)
			}
			if room < allowed {
				allowed = room
				limit = sl.ceiling
			}
			cart.Items[idx].MaxStock = sl.ceiling
		}

		for _, idx := range group {
			cart.Items[idx].Quantity = allowed
		}
		if allowed < qty {
			return fmt.Sprintf("Only %d available, quantity adjusted", limit), nil
		}
		return "", nil
	})
}

func (s *service) RemoveItem(ctx context.Context, userID primitive.ObjectID, lineKey string) (models.CartView, error) {
	res, err := s.mutate(ctx, userID, func(cart *models.Cart) (string, error) {
		return "", remove(cart, lineKey)
	})
	return res.Cart, err
}

func (s *service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := s.publisher.Publish(ctx, events.CartCleared, map[string]string{"userId": userID.Hex()}); err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Warn("failed to publish cart.cleared")
	}
	return nil
}

func (s *service) Reprice(ctx context.Context, items []models.CartItem) ([]models.CartItem, error) {
	bundles := map[primitive.ObjectID]catalog.BundleResolution{}
	out := make([]models.CartItem, 0, len(items))

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		p, err := s.product(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		sl, err := s.pick(p, item.VariantID)
		if err != nil {
			return nil, err
		}

		if item.BundleID != nil {
			res, ok := bundles[*item.BundleID]
			if !ok {
				if res, err = s.catalog.ResolveBundle(ctx, *item.BundleID); err != nil {
					return nil, err
				}
				bundles[*item.BundleID] = res
			}
			if !containsProduct(res.Bundle, p.ID) {
				return nil, fmt.Errorf("%w: %s is not part of %s", catalog.ErrBundleUnavailable, p.Name, res.Bundle.Name)
			}
			sl.bundle = &res.Bundle
		}

		line := sl.line(item.AddedAt)
		line.Quantity = item.Quantity
		out = append(out, line)
	}
	return out, nil
}

func (s *service) product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	p, err := s.catalog.Product(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return models.Product{}, ErrProductUnavailable
	}
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func containsProduct(b models.Bundle, id primitive.ObjectID) bool {
	for _, pid := range b.ProductIDs {
		if pid == id {
			return true
		}
	}
	return false
}
