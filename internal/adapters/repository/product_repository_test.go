package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/technova/storefront-api/internal/models"
)

func TestListPipelineDerivesPricesBeforeMatching(t *testing.T) {
	filter := bson.M{"status": models.ProductStatusActive, FieldSellingPrice: bson.M{"$lte": 800.0}}
	sort := bson.D{{Key: FieldSellingPrice, Value: 1}, {Key: "_id", Value: 1}}

	p := listPipeline(filter, sort, 12, 24)
	require.Len(t, p, 4)

	first := p[0][0]
	assert.Equal(t, "$addFields", first.Key)
	assert.Contains(t, first.Value.(bson.M), FieldSellingPrice)

	second := p[1][0]
	assert.Equal(t, "$addFields", second.Key)
	assert.Contains(t, second.Value.(bson.M), FieldOnSale)

	assert.Equal(t, bson.D{{Key: "$match", Value: filter}}, p[2])

	facet := p[3][0]
	assert.Equal(t, "$facet", facet.Key)
	stages := facet.Value.(bson.M)
	assert.Equal(t, bson.A{
		bson.M{"$sort": sort},
		bson.M{"$skip": int64(24)},
		bson.M{"$limit": int64(12)},
	}, stages["items"])
	assert.Equal(t, bson.A{bson.M{"$count": "n"}}, stages["total"])
}

func TestSellingPriceStageUsesLowestPositivePrice(t *testing.T) {
	stage := pricingStages()[0][0].Value.(bson.M)[FieldSellingPrice].(bson.M)
	positive := stage["$ifNull"].(bson.A)[0].(bson.M)["$min"].(bson.M)["$filter"].(bson.M)

	inputs := positive["input"].(bson.A)
	require.Len(t, inputs, 3)
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$salePrice", 0}}, inputs[0])
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$discountPrice", 0}}, inputs[1])
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$price", 0}}, inputs[2])
	assert.Equal(t, bson.M{"$gt": bson.A{"$$this", 0}}, positive["cond"])
}

func TestListPipelineWithoutPaging(t *testing.T) {
	p := listPipeline(bson.M{}, nil, 0, 0)
	stages := p[3][0].Value.(bson.M)
	assert.Equal(t, bson.A{}, stages["items"])
}

func TestMergeVariantStockKeepsLiveStock(t *testing.T) {
	seeded := []models.Variant{
		{ID: "128", SKU: "PH-128-V2", Name: "128 GB", Price: 899, Stock: 50},
		{ID: "512", SKU: "PH-512", Name: "512 GB", Price: 1199, Stock: 10},
	}
	stored := []models.Variant{
		{ID: "128", SKU: "PH-128", Name: "128GB", Price: 999, Stock: 3},
		{ID: "256", SKU: "PH-256", Name: "256GB", Price: 1099, Stock: 7},
	}

	merged := mergeVariantStock(seeded, stored)
	require.Len(t, merged, 2)
	assert.Equal(t, models.Variant{ID: "128", SKU: "PH-128-V2", Name: "128 GB", Price: 899, Stock: 3}, merged[0])
	assert.Equal(t, 10, merged[1].Stock, "a new variant starts with its seeded stock")

	assert.Empty(t, mergeVariantStock(nil, stored))
	assert.NotNil(t, mergeVariantStock(nil, stored))
}
