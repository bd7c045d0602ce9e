// Package seed loads the demo storefront catalog into MongoDB.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Collections dropped by a reset. Shopper state is left alone.
var Collections = []string{"categories", "products", "bundles", "currencyRates"}

type BundleSeed struct {
	models.Bundle `yaml:",inline"`
	// Products lists member product slugs.
	Products []string `yaml:"products"`
}

type Catalog struct {
	Categories []models.Category `yaml:"categories"`
	Products   []models.Product  `yaml:"products"`
	Bundles    []BundleSeed      `yaml:"bundles"`
}

// Load parses the embedded catalog.
func Load() (Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

var seedValidator = validator.New()

// Validate checks that every reference in the catalog resolves.
func (c Catalog) Validate() error {
	categories := lo.Associate(c.Categories, func(cat models.Category) (string, bool) { return cat.Slug, true })
	products := map[string]bool{}

	var errs []error
	for _, cat := range c.Categories {
		if err := seedValidator.Struct(cat); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", cat.Slug, err))
		}
		if cat.Parent != "" && !categories[cat.Parent] {
			errs = append(errs, fmt.Errorf("category %q: unknown parent %q", cat.Slug, cat.Parent))
		}
	}
	for _, p := range c.Products {
		if err := seedValidator.Struct(p); err != nil {
			errs = append(errs, fmt.Errorf("product %q: %w", p.Slug, err))
		}
		if products[p.Slug] {
			errs = append(errs, fmt.Errorf("product %q: duplicate slug", p.Slug))
		}
		products[p.Slug] = true
		if !categories[p.Category] {
			errs = append(errs, fmt.Errorf("product %q: unknown category %q", p.Slug, p.Category))
		}
		if p.Price <= 0 {
			errs = append(errs, fmt.Errorf("product %q: price must be positive", p.Slug))
		}
	}
	for _, b := range c.Bundles {
		if len(b.Products) < 2 {
			errs = append(errs, fmt.Errorf("bundle %q: needs at least two products", b.Slug))
		}
		if b.DiscountPercent < 0 || b.DiscountPercent > 90 {
			errs = append(errs, fmt.Errorf("bundle %q: discount must be between 0 and 90", b.Slug))
		}
		for _, slug := range lo.Reject(b.Products, func(s string, _ int) bool { return products[s] }) {
			errs = append(errs, fmt.Errorf("bundle %q: unknown product %q", b.Slug, slug))
		}
	}
	return errors.Join(errs...)
}

type Dropper interface {
	Drop(ctx context.Context, collections ...string) error
}

type AdminCreator interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error)
}

type Options struct {
	Reset         bool
	AdminEmail    string
	AdminPassword string
}

type Report struct {
	Categories   int
	Products     int
	Bundles      int
	Rates        int
	AdminCreated bool
}

type Seeder struct {
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Bundles    repository.BundleRepository
	Rates      repository.CurrencyRepository
	Admins     AdminCreator
	Dropper    Dropper
}

// Run upserts the catalog keyed by slug, so running it twice is harmless.
func (s *Seeder) Run(ctx context.Context, catalog Catalog, opts Options) (Report, error) {
	var report Report

	if opts.Reset {
		if s.Dropper == nil {
			return report, errors.New("reset requested but no dropper configured")
		}
		logrus.WithField("collections", Collections).Warn("Dropping catalog collections")
		if err := s.Dropper.Drop(ctx, Collections...); err != nil {
			return report, fmt.Errorf("failed to reset catalog: %w", err)
		}
	}

	for _, cat := range catalog.Categories {
		if err := s.Categories.UpsertBySlug(ctx, cat); err != nil {
			return report, fmt.Errorf("seed category %q: %w", cat.Slug, err)
		}
		report.Categories++
	}

	ids := make(map[string]primitive.ObjectID, len(catalog.Products))
	for _, p := range catalog.Products {
		if p.Status == "" {
			p.Status = models.ProductStatusActive
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		id, err := s.Products.UpsertBySlug(ctx, p)
		if err != nil {
			return report, fmt.Errorf("seed product %q: %w", p.Slug, err)
		}
		ids[p.Slug] = id
		report.Products++
	}

	for _, b := range catalog.Bundles {
		bundle := b.Bundle
		bundle.ProductIDs = lo.Map(b.Products, func(slug string, _ int) primitive.ObjectID { return ids[slug] })
		if err := s.Bundles.UpsertBySlug(ctx, bundle); err != nil {
			return report, fmt.Errorf("seed bundle %q: %w", b.Slug, err)
		}
		report.Bundles++
	}

	rates, err := currency.DefaultRates()
	if err != nil {
		return report, err
	}
	for _, r := range rates {
		if err := s.Rates.UpsertRate(ctx, r); err != nil {
			return report, fmt.Errorf("seed rate %s: %w", r.Code, err)
		}
		report.Rates++
	}

	if opts.AdminEmail != "" {
		if len(opts.AdminPassword) < 8 {
			return report, errors.New("admin password must be at least 8 characters")
		}
		_, created, err := s.Admins.EnsureAdmin(ctx, "TechNova Admin", opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return report, fmt.Errorf("seed admin: %w", err)
		}
		report.AdminCreated = created
	}

	logrus.WithFields(logrus.Fields{
		"categories": report.Categories,
		"products":   report.Products,
		"bundles":    report.Bundles,
		"rates":      report.Rates,
		"admin":      report.AdminCreated,
	}).Info("Seed complete")
	return report, nil
}
