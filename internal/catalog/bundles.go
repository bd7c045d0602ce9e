package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

// BundleResolution carries the live member documents next to the priced view.
type BundleResolution struct {
	Bundle   models.Bundle
	Products []models.Product
	View     models.ResolvedBundle
}

func (s *service) Bundles(ctx context.Context) ([]models.ResolvedBundle, error) {
	return s.bundleList.Get(ctx, keyPrefix+"bundles", func(ctx context.Context) ([]models.ResolvedBundle, error) {
		bundles, err := s.bundles.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bundles: %w", err)
		}
		out := make([]models.ResolvedBundle, 0, len(bundles))
		for _, b := range bundles {
			res, err := s.resolve(ctx, b)
			if errors.Is(err, ErrBundleUnavailable) {
				logrus.WithField("bundle", b.Slug).WithError(err).Debug("skipping unavailable bundle")
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, res.View)
		}
		return out, nil
	})
}

func (s *service) Bundle(ctx context.Context, idOrSlug string) (models.ResolvedBundle, error) {
	return s.bundleOne.Get(ctx, keyPrefix+"bundle:"+idOrSlug, func(ctx context.Context) (models.ResolvedBundle, error) {
		filter := bson.M{"slug": idOrSlug}
		if id, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
			filter = bson.M{"_id": id}
		}
		res, err := s.resolveFilter(ctx, filter)
		if err != nil {
			return models.ResolvedBundle{}, err
		}
		return res.View, nil
	})
}

func (s *service) ResolveBundle(ctx context.Context, id primitive.ObjectID) (BundleResolution, error) {
	return s.resolveFilter(ctx, bson.M{"_id": id})
}

func (s *service) resolveFilter(ctx context.Context, filter bson.M) (BundleResolution, error) {
	b, err := s.bundles.GetBundle(ctx, filter)
	if errors.Is(err, repository.ErrNotFound) {
		return BundleResolution{}, ErrBundleNotFound
	}
	if err != nil {
		return BundleResolution{}, fmt.Errorf("get bundle: %w", err)
	}
	return s.resolve(ctx, b)
}

// resolve fetches every member concurrently and prices the bundle.
func (s *service) resolve(ctx context.Context, b models.Bundle) (BundleResolution, error) {
	if !b.Active || len(b.ProductIDs) < 2 {
		return BundleResolution{}, fmt.Errorf("%w: %s", ErrBundleUnavailable, b.Slug)
	}

	products := make([]models.Product, len(b.ProductIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range b.ProductIDs {
		g.Go(func() error {
			p, err := s.products.GetProduct(gctx, bson.M{"_id": id})
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: member %s is missing", ErrBundleUnavailable, id.Hex())
			}
			if err != nil {
				return fmt.Errorf("get bundle member %s: %w", id.Hex(), err)
			}
			if p.Status != models.ProductStatusActive {
				return fmt.Errorf("%w: member %s is not active", ErrBundleUnavailable, p.Slug)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BundleResolution{}, err
	}

	original := decimal.Zero
	discounted := decimal.Zero
	members := make([]models.BundleMember, 0, len(products))
	for _, p := range products {
		view := Normalize(p, s.mediaBase)
		unit := MemberPrice(p)
		bundlePrice := pricing.ApplyDiscount(unit, b.DiscountPercent)
		original = original.Add(pricing.Money(unit))
		discounted = discounted.Add(pricing.Money(bundlePrice))
		members = append(members, models.BundleMember{Product: view, BundlePrice: bundlePrice})
	}

	return BundleResolution{
		Bundle:   b,
		Products: products,
		View: models.ResolvedBundle{
			ID:              b.ID.Hex(),
			Name:            b.Name,
			Slug:            b.Slug,
			Description:     b.Description,
			DiscountPercent: b.DiscountPercent,
			Members:         members,
			OriginalTotal:   original.InexactFloat64(),
			BundleTotal:     discounted.InexactFloat64(),
			Savings:         original.Sub(discounted).InexactFloat64(),
			Currency:        "USD",
		},
	}, nil
}

// LocalizeBundle re-prices a resolved bundle in the requested currency.
func LocalizeBundle(b models.ResolvedBundle, conv pricing.Converter, code string) (models.ResolvedBundle, error) {
	if conv == nil || code == "" || code == b.Currency {
		return b, nil
	}
	members := make([]models.BundleMember, len(b.Members))
	for i, m := range b.Members {
		view, err := Localize(m.Product, conv, code)
		if err != nil {
			return b, err
		}
		price, err := conv.FromBase(m.BundlePrice, code)
		if err != nil {
			return b, err
		}
		members[i] = models.BundleMember{Product: view, BundlePrice: price}
	}
	var err error
	for _, f := range []*float64{&b.OriginalTotal, &b.BundleTotal, &b.Savings} {
		if *f, err = conv.FromBase(*f, code); err != nil {
			return b, err
		}
	}
	b.Members = members
	b.Currency = code
	return b, nil
}
