package cart

import (
	"time"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/media"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

// stockLine is a product (or one of its variants) priced and checked against
// its stock ceiling, ready to become a cart line.
type stockLine struct {
	product   models.Product
	variantID string
	ceiling   int
	name      string
	sku       string
	image     string
	price     float64
	original  float64
	bundle    *models.Bundle
}

func (s *service) pick(p models.Product, variantID string) (stockLine, error) {
	sl := stockLine{
		product:  p,
		ceiling:  p.Stock,
		name:     p.Name,
		sku:      p.SKU,
		price:    catalog.SellingPrice(p),
		original: catalog.CompareAtPrice(p),
	}
	candidates := p.Images

	switch {
	case p.HasVariants() && variantID == "":
		return stockLine{}, ErrVariantRequired
	case p.HasVariants():
		v, ok := p.FindVariant(variantID)
		if !ok {
			return stockLine{}, ErrVariantNotFound
		}
		sl.variantID = v.ID
		sl.ceiling = v.Stock
		sl.name = p.Name + " - " + v.Name
		sl.sku = v.SKU
		sl.price = catalog.VariantPrice(p, v)
		candidates = append([]string{v.Image}, p.Images...)
	case variantID != "":
		return stockLine{}, ErrVariantNotFound
	}

	sl.image = media.Cascade(candidates, s.mediaBase, p.Category, p.ID.Hex())
	return sl, nil
}

func (sl stockLine) key() string {
	return sl.product.ID.Hex() + ":" + sl.variantID
}

func (sl stockLine) line(addedAt time.Time) models.CartItem {
	price := sl.price
	original := sl.original
	if original < price {
		original = price
	}

	item := models.CartItem{
		ProductID:     sl.product.ID,
		VariantID:     sl.variantID,
		Name:          sl.name,
		Image:         sl.image,
		SKU:           sl.sku,
		Price:         price,
		OriginalPrice: original,
		MaxStock:      sl.ceiling,
		AddedAt:       addedAt,
	}
	if sl.bundle != nil {
		id := sl.bundle.ID
		item.BundleID = &id
		item.BundleName = sl.bundle.Name
		item.Price = pricing.ApplyDiscount(price, sl.bundle.DiscountPercent)
	}
	return item
}

// reserved sums the quantity already drawing on stockKey, ignoring the line
// with key skip.
func reserved(items []models.CartItem, stockKey, skip string) int {
	total := 0
	for _, item := range items {
		if item.StockKey() == stockKey && item.Key() != skip {
			total += item.Quantity
		}
	}
	return total
}

// merge adds line to items, incrementing the existing line with the same key
// and refreshing its snapshot.
func merge(items []models.CartItem, line models.CartItem) []models.CartItem {
	for i, item := range items {
		if item.Key() != line.Key() {
			continue
		}
		line.Quantity += item.Quantity
		line.AddedAt = item.AddedAt
		items[i] = line
		return items
	}
	return append(items, line)
}

func findLine(items []models.CartItem, key string) (models.CartItem, bool) {
	for _, item := range items {
		if item.Key() == key {
			return item, true
		}
	}
	return models.CartItem{}, false
}

// linesOf returns the indexes of the lines that move together with target:
// every line of its bundle, or just target itself.
func linesOf(items []models.CartItem, target models.CartItem) []int {
	var idx []int
	for i, item := range items {
		switch {
		case target.BundleID == nil && item.Key() == target.Key():
			idx = append(idx, i)
		case target.BundleID != nil && item.BundleID != nil && *item.BundleID == *target.BundleID:
			idx = append(idx, i)
		}
	}
	return idx
}

// remove drops the line with key, or its whole bundle.
func remove(cart *models.Cart, key string) error {
	target, ok := findLine(cart.Items, key)
	if !ok {
		return ErrLineNotFound
	}
	drop := map[int]bool{}
	for _, i := range linesOf(cart.Items, target) {
		drop[i] = true
	}
	kept := make([]models.CartItem, 0, len(cart.Items))
	for i, item := range cart.Items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

// Localize re-prices a USD cart view in another currency.
func Localize(view models.CartView, conv pricing.Converter, code string) (models.CartView, error) {
	if conv == nil || code == "" || code == view.Totals.Currency {
		return view, nil
	}
	items := make([]models.CartItem, len(view.Items))
	for i, item := range view.Items {
		var err error
		if item.Price, err = conv.FromBase(item.Price, code); err != nil {
			return view, err
		}
		if item.OriginalPrice, err = conv.FromBase(item.OriginalPrice, code); err != nil {
			return view, err
		}
		items[i] = item
	}
	totals, err := pricing.ConvertTotals(view.Totals, conv, code)
	if err != nil {
		return view, err
	}
	return models.CartView{Items: items, Totals: totals}, nil
}
