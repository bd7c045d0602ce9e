// Package currency converts storefront prices between the supported display
// currencies. Catalog prices are stored in USD.
package currency

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/technova/storefront-api/internal/models"
)

const Base = "USD"

var ErrUnsupportedCurrency = errors.New("unsupported currency")

//go:embed rates.yaml
var defaultRatesYAML []byte

// DefaultRates returns the built-in rate table.
func DefaultRates() ([]models.CurrencyRate, error) {
	var rates []models.CurrencyRate
	if err := yaml.Unmarshal(defaultRatesYAML, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse built-in rates: %w", err)
	}
	return rates, nil
}

type Converter struct {
	mu    sync.RWMutex
	rates map[string]models.CurrencyRate
}

func NewConverter(rates []models.CurrencyRate) (*Converter, error) {
	c := &Converter{}
	if err := c.Replace(rates); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDefaultConverter builds a converter from the built-in table.
func NewDefaultConverter() (*Converter, error) {
	rates, err := DefaultRates()
	if err != nil {
		return nil, err
	}
	return NewConverter(rates)
}

// Replace swaps the rate table. The base currency must be present with rate 1.
func (c *Converter) Replace(rates []models.CurrencyRate) error {
	next := make(map[string]models.CurrencyRate, len(rates))
	for _, r := range rates {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if _, err := currency.ParseISO(code); err != nil {
			return fmt.Errorf("invalid currency code %q: %w", r.Code, err)
		}
		if r.Rate <= 0 {
			return fmt.Errorf("rate for %s must be positive", code)
		}
		r.Code = code
		next[code] = r
	}
	base, ok := next[Base]
	if !ok || base.Rate != 1 {
		return fmt.Errorf("rate table must contain %s with rate 1", Base)
	}

	c.mu.Lock()
	c.rates = next
	c.mu.Unlock()
	return nil
}

// Normalize upper-cases code and defaults empty input to the base currency.
func (c *Converter) Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Base, nil
	}
	c.mu.RLock()
	_, ok := c.rates[code]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return code, nil
}

func (c *Converter) rate(code string) (decimal.Decimal, error) {
	c.mu.RLock()
	r, ok := c.rates[strings.ToUpper(code)]
	c.mu.RUnlock()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return decimal.NewFromFloat(r.Rate), nil
}

// Convert moves amount from one currency to another and rounds to the target
// currency's minor unit.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, err := c.rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := c.rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	converted := amount.Div(fromRate).Mul(toRate)
	return converted.Round(Scale(to)), nil
}

// FromBase converts a USD catalog price for display.
func (c *Converter) FromBase(amount float64, to string) (float64, error) {
	v, err := c.Convert(decimal.NewFromFloat(amount), Base, to)
	if err != nil {
		return 0, err
	}
	return v.InexactFloat64(), nil
}

func (c *Converter) List() []models.CurrencyRate {
	c.mu.RLock()
	out := make([]models.CurrencyRate, 0, len(c.rates))
	for _, r := range c.rates {
		out = append(out, r)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == Base {
			return true
		}
		if out[j].Code == Base {
			return false
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Scale is the number of decimal places used by the currency (2 for USD, 0 for JPY).
func Scale(code string) int32 {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// MinorUnits converts a major-unit amount into the integer amount payment
// providers expect (cents for USD, yen for JPY).
func MinorUnits(amount decimal.Decimal, code string) int64 {
	scale := Scale(code)
	return amount.Round(scale).Shift(scale).IntPart()
}
