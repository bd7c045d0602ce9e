package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technova/storefront-api/internal/models"
)

func TestDefaultConverter(t *testing.T) {
	c, err := NewDefaultConverter()
	require.NoError(t, err)

	list := c.List()
	require.NotEmpty(t, list)
	assert.Equal(t, "USD", list[0].Code)

	eur, err := c.FromBase(100, "eur")
	require.NoError(t, err)
	assert.Equal(t, 92.0, eur)

	yen, err := c.FromBase(9.99, "JPY")
	require.NoError(t, err)
	assert.Equal(t, 1510.0, yen)
}

func TestConvertBetweenNonBase(t *testing.T) {
	c, err := NewConverter([]models.CurrencyRate{
		{Code: "USD", Rate: 1},
		{Code: "EUR", Rate: 0.5},
		{Code: "GBP", Rate: 0.25},
	})
	require.NoError(t, err)

	v, err := c.Convert(decimal.NewFromInt(10), "EUR", "GBP")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(5)), v.String())
}

func TestUnsupportedCurrency(t *testing.T) {
	c, err := NewDefaultConverter()
	require.NoError(t, err)

	_, err = c.FromBase(1, "XYZ")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = c.Normalize("chf")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	code, err := c.Normalize("")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)
}

func TestReplaceValidation(t *testing.T) {
	_, err := NewConverter([]models.CurrencyRate{{Code: "EUR", Rate: 0.9}})
	assert.Error(t, err, "base currency is required")

	_, err = NewConverter([]models.CurrencyRate{{Code: "USD", Rate: 1}, {Code: "NOPE", Rate: 2}})
	assert.Error(t, err)

	_, err = NewConverter([]models.CurrencyRate{{Code: "USD", Rate: 1}, {Code: "EUR", Rate: 0}})
	assert.Error(t, err)
}

func TestScaleAndMinorUnits(t *testing.T) {
	assert.Equal(t, int32(2), Scale("USD"))
	assert.Equal(t, int32(0), Scale("JPY"))

	assert.Equal(t, int64(12999), MinorUnits(decimal.RequireFromString("129.99"), "USD"))
	assert.Equal(t, int64(1000), MinorUnits(decimal.RequireFromString("9.995"), "USD"))
	assert.Equal(t, int64(1511), MinorUnits(decimal.RequireFromString("1510.6"), "JPY"))
}

type rateList []models.CurrencyRate

func (r rateList) ListRates(context.Context) ([]models.CurrencyRate, error) { return r, nil }

func TestReloadOverlaysStoredRates(t *testing.T) {
	c, err := NewDefaultConverter()
	require.NoError(t, err)

	require.NoError(t, c.Reload(context.Background(), rateList{
		{Code: "EUR", Name: "Euro", Symbol: "€", Rate: 0.5},
		{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", Rate: 0.9},
	}))

	eur, err := c.FromBase(10, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 5.0, eur)

	code, err := c.Normalize("chf")
	require.NoError(t, err)
	assert.Equal(t, "CHF", code)

	// invalid overrides keep the previous table
	assert.Error(t, c.Reload(context.Background(), rateList{{Code: "USD", Rate: 2}}))
	eur, err = c.FromBase(10, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 5.0, eur)
}
