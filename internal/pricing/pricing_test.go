package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technova/storefront-api/internal/models"
)

var rules = Rules{ShippingFee: 9.99, FreeShippingThreshold: 99, TaxRate: 0.08}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, 899.1, ApplyDiscount(999, 10))
	assert.Equal(t, 26.66, ApplyDiscount(33.33, 20))
	assert.Equal(t, 19.99, ApplyDiscount(19.99, 0))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 20, DiscountPercent(1249.99, 999.99))
	assert.Equal(t, 0, DiscountPercent(0, 10))
	assert.Equal(t, 0, DiscountPercent(10, 12))
}

func TestCartTotalsWithShipping(t *testing.T) {
	items := []models.CartItem{
		{Price: 19.99, OriginalPrice: 24.99, Quantity: 2},
		{Price: 5.5, Quantity: 1},
	}
	totals := CartTotals(items, rules)

	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 45.48, totals.Subtotal)
	assert.Equal(t, 55.48, totals.OriginalSubtotal)
	assert.Equal(t, 10.0, totals.Savings)
	assert.Equal(t, 9.99, totals.Shipping)
	assert.Equal(t, 3.64, totals.Tax)
	assert.Equal(t, 59.11, totals.Total)
	assert.Equal(t, "USD", totals.Currency)
}

func TestCartTotalsFreeShippingAndEmpty(t *testing.T) {
	totals := CartTotals([]models.CartItem{{Price: 100, Quantity: 1}}, rules)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.Equal(t, 108.0, totals.Total)

	empty := CartTotals(nil, rules)
	assert.Equal(t, 0, empty.ItemCount)
	assert.Equal(t, 0.0, empty.Shipping)
	assert.Equal(t, 0.0, empty.Total)
}

func TestCartTotalsAvoidsFloatDrift(t *testing.T) {
	items := []models.CartItem{{Price: 0.1, Quantity: 3}}
	totals := CartTotals(items, Rules{})
	assert.Equal(t, 0.3, totals.Subtotal)
}

type doubler struct{ fail bool }

func (d doubler) FromBase(amount float64, _ string) (float64, error) {
	if d.fail {
		return 0, errors.New("no rate")
	}
	return amount * 2, nil
}

func TestConvertTotals(t *testing.T) {
	totals := models.CartTotals{Subtotal: 10, Total: 12, Tax: 2, Currency: "USD"}

	out, err := ConvertTotals(totals, doubler{}, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 20.0, out.Subtotal)
	assert.Equal(t, 24.0, out.Total)
	assert.Equal(t, "EUR", out.Currency)

	same, err := ConvertTotals(totals, doubler{}, "USD")
	require.NoError(t, err)
	assert.Equal(t, totals, same)

	_, err = ConvertTotals(totals, doubler{fail: true}, "EUR")
	assert.Error(t, err)
}
