package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/models"
)

func TestSellingAndCompareAtPrice(t *testing.T) {
	tests := []struct {
		name      string
		product   models.Product
		selling   float64
		compareAt float64
	}{
		{"plain price", models.Product{Price: 199}, 199, 0},
		{"sale price", models.Product{Price: 249, SalePrice: 199}, 199, 249},
		{"legacy discount alias", models.Product{Price: 100, DiscountPrice: 80}, 80, 100},
		{"legacy original alias", models.Product{Price: 90, OriginalPrice: 120}, 90, 120},
		{"compareAt alias wins when highest", models.Product{SalePrice: 50, Price: 60, CompareAtPrice: 75}, 50, 75},
		{"compareAt below price ignored", models.Product{Price: 60, CompareAtPrice: 40}, 60, 0},
		{"only sale price", models.Product{SalePrice: 30}, 30, 0},
		{"nothing priced", models.Product{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.selling, SellingPrice(tt.product))
			assert.Equal(t, tt.compareAt, CompareAtPrice(tt.product))
		})
	}
}

func TestNormalizeImagesAndDiscount(t *testing.T) {
	p := models.Product{
		ID:        primitive.NewObjectID(),
		Name:      "Aero 14",
		Category:  "laptops",
		Images:    []string{"/media/aero.jpg", "", "//cdn.example.com/aero-2.jpg"},
		Price:     1249.99,
		SalePrice: 999.99,
		Stock:     3,
	}

	v := Normalize(p, "https://cms.example.com")

	assert.Equal(t, p.ID.Hex(), v.ID)
	assert.Equal(t, []string{"https://cms.example.com/media/aero.jpg", "https://cdn.example.com/aero-2.jpg"}, v.Images)
	assert.Equal(t, v.Images[0], v.Image)
	assert.Equal(t, 999.99, v.Price)
	assert.Equal(t, 1249.99, v.CompareAtPrice)
	assert.Equal(t, 20, v.DiscountPercent)
	assert.Equal(t, "USD", v.Currency)
	assert.True(t, v.InStock)
	assert.NotNil(t, v.Tags)
	assert.NotNil(t, v.Specs)
}

func TestNormalizeFallsBackToCategoryImage(t *testing.T) {
	p := models.Product{ID: primitive.NewObjectID(), Category: "audio", Price: 10}

	v := Normalize(p, "")
	again := Normalize(p, "")

	require.Len(t, v.Images, 1)
	assert.True(t, strings.HasPrefix(v.Image, "https://"))
	assert.Equal(t, v.Image, again.Image)
}

func TestNormalizeVariants(t *testing.T) {
	p := models.Product{
		ID:       primitive.NewObjectID(),
		Category: "phones",
		Images:   []string{"https://img.example.com/nova.jpg"},
		Price:    799,
		Variants: []models.Variant{
			{ID: "128", Price: 0, Stock: 0},
			{ID: "256", Price: 899, Stock: 2, Image: "/v/256.jpg"},
		},
	}

	v := Normalize(p, "https://cms.example.com")

	require.Len(t, v.Variants, 2)
	assert.Equal(t, 799.0, v.Variants[0].Price)
	assert.False(t, v.Variants[0].InStock)
	assert.Equal(t, "https://img.example.com/nova.jpg", v.Variants[0].Image)
	assert.Equal(t, 899.0, v.Variants[1].Price)
	assert.Equal(t, "https://cms.example.com/v/256.jpg", v.Variants[1].Image)
	assert.Equal(t, 2, v.Stock)
	assert.True(t, v.InStock)
}

func TestInStock(t *testing.T) {
	assert.False(t, InStock(models.Product{Stock: 0}))
	assert.True(t, InStock(models.Product{Stock: 1}))
	assert.False(t, InStock(models.Product{Stock: 10, Variants: []models.Variant{{ID: "a"}}}))
}

type rateConv struct{ rate float64 }

func (r rateConv) FromBase(amount float64, code string) (float64, error) {
	if code == "XXX" {
		return 0, errors.New("unsupported")
	}
	return amount * r.rate, nil
}

func TestLocalize(t *testing.T) {
	v := models.ProductView{
		Price:          100,
		CompareAtPrice: 120,
		Currency:       "USD",
		Variants:       []models.VariantView{{ID: "a", Price: 110}},
	}

	out, err := Localize(v, rateConv{rate: 0.5}, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 50.0, out.Price)
	assert.Equal(t, 60.0, out.CompareAtPrice)
	assert.Equal(t, 55.0, out.Variants[0].Price)
	assert.Equal(t, "EUR", out.Currency)
	assert.Equal(t, 110.0, v.Variants[0].Price, "input view must not be mutated")

	_, err = Localize(v, rateConv{rate: 1}, "XXX")
	assert.Error(t, err)
}

func TestDefaultVariantAndMemberPrice(t *testing.T) {
	p := models.Product{Price: 500, SalePrice: 450, Variants: []models.Variant{
		{ID: "a", Price: 0, Stock: 0},
		{ID: "b", Price: 520, Stock: 2},
	}}
	assert.Equal(t, "a", DefaultVariant(p, "a"))
	assert.Equal(t, "b", DefaultVariant(p, ""))
	assert.Equal(t, 520.0, MemberPrice(p))

	p.Variants[1].Stock = 0
	assert.Equal(t, "a", DefaultVariant(p, ""))
	assert.Equal(t, 450.0, MemberPrice(p), "variant without a price inherits the selling price")

	plain := models.Product{Price: 80}
	assert.Equal(t, "", DefaultVariant(plain, ""))
	assert.Equal(t, 80.0, MemberPrice(plain))
}
