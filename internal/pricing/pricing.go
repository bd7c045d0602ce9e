// Package pricing holds the money arithmetic shared by the cart, bundles,
// orders and payments. Amounts are USD floats at the edges and decimals inside.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/technova/storefront-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Rules are the storefront-wide shipping and tax settings.
type Rules struct {
	ShippingFee           float64
	FreeShippingThreshold float64
	TaxRate               float64
}

// Money rounds to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ApplyDiscount takes percent off price, rounding to cents.
func ApplyDiscount(price, percent float64) float64 {
	if percent <= 0 {
		return Money(price).InexactFloat64()
	}
	factor := hundred.Sub(decimal.NewFromFloat(percent)).Div(hundred)
	return decimal.NewFromFloat(price).Mul(factor).Round(2).InexactFloat64()
}

// DiscountPercent is the whole-number percentage between a compare-at price
// and the selling price.
func DiscountPercent(compareAt, price float64) int {
	if compareAt <= 0 || price >= compareAt {
		return 0
	}
	ca := decimal.NewFromFloat(compareAt)
	pct := ca.Sub(decimal.NewFromFloat(price)).Div(ca).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// LineTotal is unit price times quantity.
func LineTotal(price float64, qty int) decimal.Decimal {
	return Money(price).Mul(decimal.NewFromInt(int64(qty)))
}

// CartTotals prices a set of cart lines in USD.
func CartTotals(items []models.CartItem, rules Rules) models.CartTotals {
	count := 0
	subtotal := decimal.Zero
	original := decimal.Zero

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		count += item.Quantity
		line := LineTotal(item.Price, item.Quantity)
		subtotal = subtotal.Add(line)

		orig := item.OriginalPrice
		if orig < item.Price {
			orig = item.Price
		}
		original = original.Add(LineTotal(orig, item.Quantity))
	}

	shipping := decimal.Zero
	if count > 0 && subtotal.LessThan(decimal.NewFromFloat(rules.FreeShippingThreshold)) {
		shipping = Money(rules.ShippingFee)
	}
	tax := subtotal.Mul(decimal.NewFromFloat(rules.TaxRate)).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	return models.CartTotals{
		ItemCount:        count,
		Subtotal:         subtotal.InexactFloat64(),
		OriginalSubtotal: original.InexactFloat64(),
		Savings:          original.Sub(subtotal).InexactFloat64(),
		Shipping:         shipping.InexactFloat64(),
		Tax:              tax.InexactFloat64(),
		Total:            total.InexactFloat64(),
		Currency:         "USD",
	}
}

// Converter is the part of currency.Converter the pricing helpers need.
type Converter interface {
	FromBase(amount float64, to string) (float64, error)
}

// ConvertTotals re-expresses USD totals in another currency.
func ConvertTotals(t models.CartTotals, conv Converter, code string) (models.CartTotals, error) {
	if conv == nil || code == "" || code == t.Currency {
		return t, nil
	}
	fields := []*float64{&t.Subtotal, &t.OriginalSubtotal, &t.Savings, &t.Shipping, &t.Tax, &t.Total}
	for _, f := range fields {
		v, err := conv.FromBase(*f, code)
		if err != nil {
			return t, err
		}
		*f = v
	}
	t.Currency = code
	return t, nil
}
