// Package catalog serves the storefront's product, category and bundle reads.
// Documents are normalized into the storefront shape and cached with
// stale-while-revalidate; stock-sensitive callers use the uncached lookups.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/cache"
	"github.com/technova/storefront-api/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrBundleNotFound    = errors.New("bundle not found")
	ErrBundleUnavailable = errors.New("bundle is unavailable")
)

const (
	keyPrefix        = "catalog:"
	navFeaturedLimit = 4
)

type ProductPage struct {
	Products   []models.ProductView `json:"products"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

type Service interface {
	List(ctx context.Context, q ProductQuery) (ProductPage, error)
	Get(ctx context.Context, idOrSlug string) (models.ProductView, error)
	Related(ctx context.Context, idOrSlug string, limit int) ([]models.ProductView, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Navigation(ctx context.Context) ([]models.NavItem, error)
	Brands(ctx context.Context, category string) ([]string, error)
	Bundles(ctx context.Context) ([]models.ResolvedBundle, error)
	Bundle(ctx context.Context, idOrSlug string) (models.ResolvedBundle, error)

	// Product and ResolveBundle bypass the cache; stock checks need live documents.
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	ResolveBundle(ctx context.Context, id primitive.ObjectID) (BundleResolution, error)
	// Views returns active products in the order of ids, skipping unknown ones.
	Views(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductView, error)

	Invalidate(ctx context.Context) error
}

type Options struct {
	MediaBaseURL string
	FreshTTL     time.Duration
	StaleTTL     time.Duration
}

type service struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	bundles    repository.BundleRepository
	store      cache.Store
	mediaBase  string

	pages      *cache.SWR[ProductPage]
	views      *cache.SWR[models.ProductView]
	viewLists  *cache.SWR[[]models.ProductView]
	catList    *cache.SWR[[]models.Category]
	nav        *cache.SWR[[]models.NavItem]
	brandList  *cache.SWR[[]string]
	bundleList *cache.SWR[[]models.ResolvedBundle]
	bundleOne  *cache.SWR[models.ResolvedBundle]
}

func NewService(products repository.ProductRepository, categories repository.CategoryRepository, bundles repository.BundleRepository, store cache.Store, opts Options) Service {
	fresh, stale := opts.FreshTTL, opts.StaleTTL
	return &service{
		products:   products,
		categories: categories,
		bundles:    bundles,
		store:      store,
		mediaBase:  opts.MediaBaseURL,
		pages:      cache.NewSWR[ProductPage](store, fresh, stale),
		views:      cache.NewSWR[models.ProductView](store, fresh, stale),
		viewLists:  cache.NewSWR[[]models.ProductView](store, fresh, stale),
		catList:    cache.NewSWR[[]models.Category](store, fresh, stale),
		nav:        cache.NewSWR[[]models.NavItem](store, fresh, stale),
		brandList:  cache.NewSWR[[]string](store, fresh, stale),
		bundleList: cache.NewSWR[[]models.ResolvedBundle](store, fresh, stale),
		bundleOne:  cache.NewSWR[models.ResolvedBundle](store, fresh, stale),
	}
}

func (s *service) List(ctx context.Context, q ProductQuery) (ProductPage, error) {
	q = q.Clamp()
	return s.pages.Get(ctx, keyPrefix+"list:"+q.CacheKey(), func(ctx context.Context) (ProductPage, error) {
		var categories []string
		if q.Category != "" {
			all, err := s.Categories(ctx)
			if err != nil {
				return ProductPage{}, err
			}
			categories = subtree(all, q.Category)
		}

		products, total, err := s.products.FindProducts(ctx, q.Filter(categories), q.SortSpec(), int64(q.Limit), q.Skip())
		if err != nil {
			return ProductPage{}, fmt.Errorf("list products: %w", err)
		}
		pages := int(total) / q.Limit
		if int(total)%q.Limit != 0 {
			pages++
		}
		return ProductPage{
			Products:   s.normalizeAll(products),
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: pages,
		}, nil
	})
}

func (s *service) Get(ctx context.Context, idOrSlug string) (models.ProductView, error) {
	return s.views.Get(ctx, keyPrefix+"product:"+idOrSlug, func(ctx context.Context) (models.ProductView, error) {
		p, err := s.lookup(ctx, idOrSlug)
		if err != nil {
			return models.ProductView{}, err
		}
		return Normalize(p, s.mediaBase), nil
	})
}

func (s *service) lookup(ctx context.Context, idOrSlug string) (models.Product, error) {
	filter := activeFilter()
	if id, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
		filter["_id"] = id
	} else {
		filter["slug"] = idOrSlug
	}
	p, err := s.products.GetProduct(ctx, filter)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *service) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.lookup(ctx, id.Hex())
}

func (s *service) Views(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductView, error) {
	if len(ids) == 0 {
		return []models.ProductView{}, nil
	}
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	byID := lo.KeyBy(products, func(p models.Product) primitive.ObjectID { return p.ID })

	views := make([]models.ProductView, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || p.Status != models.ProductStatusActive {
			continue
		}
		views = append(views, Normalize(p, s.mediaBase))
	}
	return views, nil
}

func (s *service) Related(ctx context.Context, idOrSlug string, limit int) ([]models.ProductView, error) {
	if limit < 1 || limit > 24 {
		limit = 4
	}
	key := keyPrefix + "related:" + idOrSlug + ":" + strconv.Itoa(limit)
	return s.viewLists.Get(ctx, key, func(ctx context.Context) ([]models.ProductView, error) {
		p, err := s.lookup(ctx, idOrSlug)
		if err != nil {
			return nil, err
		}
		filter := activeFilter()
		filter["category"] = p.Category
		filter["_id"] = bson.M{"$ne": p.ID}
		sortSpec := bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}

		related, _, err := s.products.FindProducts(ctx, filter, sortSpec, int64(limit), 0)
		if err != nil {
			return nil, fmt.Errorf("related products: %w", err)
		}
		return s.normalizeAll(related), nil
	})
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.catList.Get(ctx, keyPrefix+"categories", func(ctx context.Context) ([]models.Category, error) {
		cats, err := s.categories.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		sortCategories(cats)
		return cats, nil
	})
}

// Navigation builds the mega-menu: one item per top-level category with its
// children, the brands sold under it and a few featured products.
func (s *service) Navigation(ctx context.Context) ([]models.NavItem, error) {
	return s.nav.Get(ctx, keyPrefix+"nav", func(ctx context.Context) ([]models.NavItem, error) {
		all, err := s.Categories(ctx)
		if err != nil {
			return nil, err
		}

		var items []models.NavItem
		for _, top := range all {
			if top.Parent != "" {
				continue
			}
			slugs := subtree(all, top.Slug)
			scope := activeFilter()
			scope["category"] = bson.M{"$in": slugs}

			brands, err := s.products.DistinctBrands(ctx, scope)
			if err != nil {
				return nil, fmt.Errorf("nav brands for %s: %w", top.Slug, err)
			}
			featured, err := s.featured(ctx, scope)
			if err != nil {
				return nil, fmt.Errorf("nav featured for %s: %w", top.Slug, err)
			}

			items = append(items, models.NavItem{
				Category: top,
				Children: lo.Filter(all, func(c models.Category, _ int) bool { return c.Parent == top.Slug }),
				Brands:   brands,
				Featured: featured,
			})
		}
		if items == nil {
			items = []models.NavItem{}
		}
		return items, nil
	})
}

// featured prefers products flagged featured and falls back to the best rated.
func (s *service) featured(ctx context.Context, scope bson.M) ([]models.ProductView, error) {
	sortSpec := bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}

	flagged := bson.M{"featured": true}
	for k, v := range scope {
		flagged[k] = v
	}
	products, _, err := s.products.FindProducts(ctx, flagged, sortSpec, navFeaturedLimit, 0)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		products, _, err = s.products.FindProducts(ctx, scope, sortSpec, navFeaturedLimit, 0)
		if err != nil {
			return nil, err
		}
	}
	return s.normalizeAll(products), nil
}

func (s *service) Brands(ctx context.Context, category string) ([]string, error) {
	return s.brandList.Get(ctx, keyPrefix+"brands:"+category, func(ctx context.Context) ([]string, error) {
		filter := activeFilter()
		if category != "" {
			all, err := s.Categories(ctx)
			if err != nil {
				return nil, err
			}
			filter["category"] = bson.M{"$in": subtree(all, category)}
		}
		brands, err := s.products.DistinctBrands(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list brands: %w", err)
		}
		sort.Strings(brands)
		return brands, nil
	})
}

func (s *service) Invalidate(ctx context.Context) error {
	return s.store.DeletePrefix(ctx, keyPrefix)
}

func (s *service) normalizeAll(products []models.Product) []models.ProductView {
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, Normalize(p, s.mediaBase))
	}
	return views
}

func sortCategories(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Order != cats[j].Order {
			return cats[i].Order < cats[j].Order
		}
		return cats[i].Name < cats[j].Name
	})
}

// subtree returns slug and the slugs of all its descendants.
func subtree(all []models.Category, slug string) []string {
	out := []string{slug}
	seen := map[string]bool{slug: true}
	for i := 0; i < len(out); i++ {
		for _, c := range all {
			if c.Parent == out[i] && !seen[c.Slug] {
				seen[c.Slug] = true
				out = append(out, c.Slug)
			}
		}
	}
	return out
}
