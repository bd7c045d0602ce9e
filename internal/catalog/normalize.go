package catalog

import (
	"github.com/samber/lo"

	"github.com/technova/storefront-api/internal/media"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/pricing"
)

// SellingPrice is the lowest positive of the sale, discount and list price.
func SellingPrice(p models.Product) float64 {
	return lowestPositive(p.SalePrice, p.DiscountPrice, p.Price)
}

// CompareAtPrice is the highest positive of the list and legacy "was" prices,
// or zero when it is not above the selling price.
func CompareAtPrice(p models.Product) float64 {
	ca := lo.Max([]float64{p.Price, p.OriginalPrice, p.CompareAtPrice})
	if ca <= SellingPrice(p) {
		return 0
	}
	return ca
}

// OnSale reports whether the product sells below its compare-at price.
func OnSale(p models.Product) bool {
	return SellingPrice(p) > 0 && CompareAtPrice(p) > 0
}

// VariantPrice is what a given variant sells for. Variants without their own
// price inherit the product's selling price.
func VariantPrice(p models.Product, v models.Variant) float64 {
	if v.Price > 0 {
		return v.Price
	}
	return SellingPrice(p)
}

// DefaultVariant keeps an explicit choice, otherwise takes the first variant
// with stock, otherwise the first variant. Products without variants yield "".
func DefaultVariant(p models.Product, chosen string) string {
	if chosen != "" || !p.HasVariants() {
		return chosen
	}
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return v.ID
		}
	}
	return p.Variants[0].ID
}

// MemberPrice is the unit price a bundle charges for p before its discount:
// the price of the variant the cart would pick by default.
func MemberPrice(p models.Product) float64 {
	if v, ok := p.FindVariant(DefaultVariant(p, "")); ok {
		return VariantPrice(p, v)
	}
	return SellingPrice(p)
}

func lowestPositive(values ...float64) float64 {
	positive := lo.Filter(values, func(v float64, _ int) bool { return v > 0 })
	if len(positive) == 0 {
		return 0
	}
	return lo.Min(positive)
}

// InStock reports whether any unit of the product can be sold.
func InStock(p models.Product) bool {
	if p.HasVariants() {
		return lo.SomeBy(p.Variants, func(v models.Variant) bool { return v.Stock > 0 })
	}
	return p.Stock > 0
}

// Normalize converts a stored product into the storefront shape, in USD.
func Normalize(p models.Product, mediaBaseURL string) models.ProductView {
	id := p.ID.Hex()

	images := lo.FilterMap(p.Images, func(raw string, _ int) (string, bool) {
		u := media.Resolve(raw, mediaBaseURL)
		return u, u != ""
	})
	if len(images) == 0 {
		images = []string{media.FallbackImage(p.Category, id)}
	}

	price := SellingPrice(p)
	compareAt := CompareAtPrice(p)

	variants := make([]models.VariantView, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, models.VariantView{
			ID:      v.ID,
			SKU:     v.SKU,
			Name:    v.Name,
			Price:   VariantPrice(p, v),
			Stock:   v.Stock,
			InStock: v.Stock > 0,
			Options: v.Options,
			Image:   media.Cascade([]string{v.Image, images[0]}, mediaBaseURL, p.Category, id),
		})
	}

	stock := p.Stock
	if p.HasVariants() {
		stock = lo.SumBy(p.Variants, func(v models.Variant) int { return v.Stock })
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	specs := p.Specs
	if specs == nil {
		specs = []models.Spec{}
	}

	return models.ProductView{
		ID:              id,
		Name:            p.Name,
		Slug:            p.Slug,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		Tags:            tags,
		Image:           images[0],
		Images:          images,
		Price:           price,
		CompareAtPrice:  compareAt,
		DiscountPercent: pricing.DiscountPercent(compareAt, price),
		Currency:        "USD",
		SKU:             p.SKU,
		Stock:           stock,
		InStock:         InStock(p),
		Variants:        variants,
		Specs:           specs,
		Featured:        p.Featured,
		Rating:          p.Rating,
		ReviewCount:     p.ReviewCount,
		CreatedAt:       p.CreatedAt,
	}
}

// Localize re-prices a USD view in the requested currency.
func Localize(v models.ProductView, conv pricing.Converter, code string) (models.ProductView, error) {
	if conv == nil || code == "" || code == v.Currency {
		return v, nil
	}
	var err error
	if v.Price, err = conv.FromBase(v.Price, code); err != nil {
		return v, err
	}
	if v.CompareAtPrice, err = conv.FromBase(v.CompareAtPrice, code); err != nil {
		return v, err
	}
	variants := make([]models.VariantView, len(v.Variants))
	for i, variant := range v.Variants {
		if variant.Price, err = conv.FromBase(variant.Price, code); err != nil {
			return v, err
		}
		variants[i] = variant
	}
	v.Variants = variants
	v.Currency = code
	return v, nil
}

// LocalizeAll applies Localize to every view.
func LocalizeAll(views []models.ProductView, conv pricing.Converter, code string) ([]models.ProductView, error) {
	out := make([]models.ProductView, len(views))
	for i, v := range views {
		lv, err := Localize(v, conv, code)
		if err != nil {
			return nil, err
		}
		out[i] = lv
	}
	return out, nil
}
