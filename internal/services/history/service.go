package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Views(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductView, error)
}

type Service interface {
	Record(ctx context.Context, userID primitive.ObjectID, productID string) error
	List(ctx context.Context, userID primitive.ObjectID) ([]models.HistoryItem, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type service struct {
	repo    repository.HistoryRepository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo repository.HistoryRepository, cat Catalog) Service {
	return &service{repo: repo, catalog: cat, now: time.Now}
}

// Record moves the product to the front of the user's recently viewed list.
func (s *service) Record(ctx context.Context, userID primitive.ObjectID, productID string) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}
	if _, err := s.catalog.Product(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	h, err := s.repo.GetHistory(ctx, userID)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}
	if err := s.repo.SaveHistory(ctx, userID, Push(h.Entries, id, s.now())); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Push puts id first, dropping its older entry and anything past the cap.
func Push(entries []models.HistoryEntry, id primitive.ObjectID, at time.Time) []models.HistoryEntry {
	rest := lo.Reject(entries, func(e models.HistoryEntry, _ int) bool { return e.ProductID == id })
	out := append([]models.HistoryEntry{{ProductID: id, ViewedAt: at}}, rest...)
	if len(out) > models.MaxHistoryItems {
		out = out[:models.MaxHistoryItems]
	}
	return out
}

func (s *service) List(ctx context.Context, userID primitive.ObjectID) ([]models.HistoryItem, error) {
	h, err := s.repo.GetHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	ids := lo.Map(h.Entries, func(e models.HistoryEntry, _ int) primitive.ObjectID { return e.ProductID })
	views, err := s.catalog.Views(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(views, func(v models.ProductView) string { return v.ID })

	items := make([]models.HistoryItem, 0, len(views))
	for _, e := range h.Entries {
		if v, ok := byID[e.ProductID.Hex()]; ok {
			items = append(items, models.HistoryItem{Product: v, ViewedAt: e.ViewedAt})
		}
	}
	return items, nil
}

func (s *service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.repo.SaveHistory(ctx, userID, []models.HistoryEntry{}); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
