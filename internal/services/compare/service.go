package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
)

var (
	ErrCompareFull        = fmt.Errorf("you can compare up to %d products", models.MaxCompareItems)
	ErrProductNotFound    = errors.New("product not found")
	ErrSummaryUnavailable = errors.New("comparison summaries are not available")
	ErrNotEnoughProducts  = errors.New("add at least two products to compare")
)

// Missing fills a table cell for a product without that attribute.
const Missing = "—"

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Views(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductView, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, products []models.ProductView) (string, error)
}

type Service interface {
	Add(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.ProductView, error)
	Remove(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.ProductView, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
	List(ctx context.Context, userID primitive.ObjectID) ([]models.ProductView, error)
	Table(ctx context.Context, userID primitive.ObjectID) (models.CompareTable, error)
	Summary(ctx context.Context, userID primitive.ObjectID) (string, error)
}

type service struct {
	repo       repository.CompareRepository
	catalog    Catalog
	summarizer Summarizer
}

// NewService builds the compare store. summarizer may be nil.
func NewService(repo repository.CompareRepository, cat Catalog, summarizer Summarizer) Service {
	return &service{repo: repo, catalog: cat, summarizer: summarizer}
}

func (s *service) ids(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	list, err := s.repo.GetCompareList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get compare list: %w", err)
	}
	return list.ProductIDs, nil
}

func (s *service) Add(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.ProductView, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if _, err := s.catalog.Product(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	ids, err := s.ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lo.Contains(ids, id) {
		return s.catalog.Views(ctx, ids)
	}
	if len(ids) >= models.MaxCompareItems {
		return nil, ErrCompareFull
	}

	ids = append(ids, id)
	if err := s.repo.SaveCompareList(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("save compare list: %w", err)
	}
	return s.catalog.Views(ctx, ids)
}

func (s *service) Remove(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.ProductView, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	ids, err := s.ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids = lo.Without(ids, id)
	if err := s.repo.SaveCompareList(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("save compare list: %w", err)
	}
	return s.catalog.Views(ctx, ids)
}

func (s *service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.repo.SaveCompareList(ctx, userID, []primitive.ObjectID{}); err != nil {
		return fmt.Errorf("clear compare list: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID primitive.ObjectID) ([]models.ProductView, error) {
	ids, err := s.ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.catalog.Views(ctx, ids)
}

func (s *service) Table(ctx context.Context, userID primitive.ObjectID) (models.CompareTable, error) {
	products, err := s.List(ctx, userID)
	if err != nil {
		return models.CompareTable{}, err
	}
	return BuildTable(products), nil
}

func (s *service) Summary(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if s.summarizer == nil {
		return "", ErrSummaryUnavailable
	}
	products, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(products) < 2 {
		return "", ErrNotEnoughProducts
	}
	summary, err := s.summarizer.Summarize(ctx, products)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryUnavailable, err)
	}
	return summary, nil
}

// BuildTable lines products up by spec key. Keys keep the order in which they
// are first seen across the products.
func BuildTable(products []models.ProductView) models.CompareTable {
	keys := lo.Uniq(lo.FlatMap(products, func(p models.ProductView, _ int) []string {
		return lo.Map(p.Specs, func(s models.Spec, _ int) string { return s.Key })
	}))

	rows := make([]models.CompareRow, 0, len(keys))
	for _, key := range keys {
		values := lo.Map(products, func(p models.ProductView, _ int) string {
			spec, ok := lo.Find(p.Specs, func(s models.Spec) bool { return s.Key == key })
			if !ok || spec.Value == "" {
				return Missing
			}
			return spec.Value
		})
		rows = append(rows, models.CompareRow{Key: key, Values: values})
	}
	if products == nil {
		products = []models.ProductView{}
	}
	return models.CompareTable{Products: products, Rows: rows}
}
