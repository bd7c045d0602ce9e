package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/models"
)

func TestClampDefaults(t *testing.T) {
	q := ProductQuery{Limit: 500, Page: -2, Category: " Laptops "}.Clamp()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, "laptops", q.Category)

	q = ProductQuery{}.Clamp()
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, int64(0), q.Skip())

	q = ProductQuery{Page: 3, Limit: 10}.Clamp()
	assert.Equal(t, int64(20), q.Skip())
}

func TestFilter(t *testing.T) {
	featured := true
	q := ProductQuery{
		Brand:    "Acme",
		Q:        "pro (2024)",
		MinPrice: 100,
		MaxPrice: 500,
		Featured: &featured,
		OnSale:   true,
	}.Clamp()

	f := q.Filter([]string{"laptops", "gaming-laptops"})

	assert.Equal(t, models.ProductStatusActive, f["status"])
	assert.Equal(t, bson.M{"$in": []string{"laptops", "gaming-laptops"}}, f["category"])
	assert.Equal(t, bson.M{"$regex": `^Acme$`, "$options": "i"}, f["brand"])
	assert.Equal(t, bson.M{"$gte": 100.0, "$lte": 500.0}, f[repository.FieldSellingPrice])
	assert.NotContains(t, f, "price")
	assert.Equal(t, true, f["featured"])
	assert.Equal(t, true, f[repository.FieldOnSale])

	and := f["$and"].([]bson.M)
	assert.Len(t, and, 1)
	search := and[0]["$or"].(bson.A)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `pro \(2024\)`, "$options": "i"}}, search[0])
}

func TestFilterMinimal(t *testing.T) {
	f := ProductQuery{}.Clamp().Filter([]string{"audio"})
	assert.Equal(t, bson.M{"status": models.ProductStatusActive, "category": "audio"}, f)
}

func TestPriceFilterUsesSellingPrice(t *testing.T) {
	// Listed at 1000, selling at 700: a maxPrice of 800 must match it.
	p := models.Product{Price: 1000, SalePrice: 700}
	assert.Equal(t, 700.0, Normalize(p, "").Price)

	f := ProductQuery{MaxPrice: 800}.Clamp().Filter(nil)
	assert.Equal(t, bson.M{"$lte": 800.0}, f[repository.FieldSellingPrice])
}

func TestOnSale(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		want    bool
	}{
		{"sale price", models.Product{Price: 1000, SalePrice: 700}, true},
		{"legacy compare-at", models.Product{Price: 1000, CompareAtPrice: 1200}, true},
		{"legacy original price", models.Product{Price: 80, OriginalPrice: 100}, true},
		{"sale price above list", models.Product{Price: 100, SalePrice: 120}, false},
		{"sale price equal to list", models.Product{Price: 100, SalePrice: 100}, false},
		{"plain", models.Product{Price: 100}, false},
		{"unpriced", models.Product{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OnSale(tt.product))
			assert.Equal(t, tt.want, Normalize(tt.product, "").DiscountPercent > 0)
		})
	}
}

func TestSortSpec(t *testing.T) {
	assert.Equal(t, repository.FieldSellingPrice, ProductQuery{Sort: SortPriceAsc}.SortSpec()[0].Key)
	assert.Equal(t, repository.FieldSellingPrice, ProductQuery{Sort: SortPriceDesc}.SortSpec()[0].Key)
	assert.Equal(t, -1, ProductQuery{Sort: SortPriceDesc}.SortSpec()[0].Value)
	assert.Equal(t, "rating", ProductQuery{Sort: SortRating}.SortSpec()[0].Key)
	assert.Equal(t, "name", ProductQuery{Sort: SortName}.SortSpec()[0].Key)
	assert.Equal(t, "createdAt", ProductQuery{}.SortSpec()[0].Key)
}

func TestCacheKeyStable(t *testing.T) {
	a := ProductQuery{Category: "audio", Page: 2}.Clamp()
	b := ProductQuery{Category: "audio", Page: 2}.Clamp()
	c := ProductQuery{Category: "audio", Page: 3}.Clamp()
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}
