package currency

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/technova/storefront-api/internal/models"
)

type RateSource interface {
	ListRates(ctx context.Context) ([]models.CurrencyRate, error)
}

// Merge overlays stored rates on the built-in table, keyed by code.
func Merge(base, overrides []models.CurrencyRate) []models.CurrencyRate {
	byCode := lo.KeyBy(base, func(r models.CurrencyRate) string { return r.Code })
	order := lo.Map(base, func(r models.CurrencyRate, _ int) string { return r.Code })
	for _, r := range overrides {
		if _, ok := byCode[r.Code]; !ok {
			order = append(order, r.Code)
		}
		byCode[r.Code] = r
	}
	return lo.Map(order, func(code string, _ int) models.CurrencyRate { return byCode[code] })
}

// Reload rebuilds the converter from the built-in table plus the stored rates.
// The converter is left unchanged when the stored rates are invalid.
func (c *Converter) Reload(ctx context.Context, src RateSource) error {
	defaults, err := DefaultRates()
	if err != nil {
		return err
	}
	stored, err := src.ListRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load currency rates: %w", err)
	}
	if err := c.Replace(Merge(defaults, stored)); err != nil {
		return err
	}
	logrus.WithField("overrides", len(stored)).Info("Currency rates loaded")
	return nil
}
