package repository

import (
	"context"
	"errors"
	"time"

	"github.com/technova/storefront-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository interface {
	FindProducts(ctx context.Context, filter bson.M, sort bson.D, limit, skip int64) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, filter bson.M) (models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	DistinctBrands(ctx context.Context, filter bson.M) ([]string, error)
	DecrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) error
	UpdateRating(ctx context.Context, productID primitive.ObjectID, rating float64, count int) error
	UpsertBySlug(ctx context.Context, product models.Product) (primitive.ObjectID, error)
}

type MongoProductRepository struct {
	DB *mongo.Database
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{DB: db}
}

// Fields derived from the stored prices at query time. Listing filters and
// sorts use them so they agree with the price the storefront shows.
const (
	FieldSellingPrice = "sellingPrice"
	FieldOnSale       = "onSale"
)

// pricingStages mirrors catalog.SellingPrice and catalog.OnSale: the selling
// price is the lowest positive of salePrice, discountPrice and price, and a
// product is on sale when the highest of price, originalPrice and
// compareAtPrice is above it.
func pricingStages() mongo.Pipeline {
	orZero := func(field string) bson.M {
		return bson.M{"$ifNull": bson.A{"$" + field, 0}}
	}
	positive := bson.M{"$filter": bson.M{
		"input": bson.A{orZero("salePrice"), orZero("discountPrice"), orZero("price")},
		"cond":  bson.M{"$gt": bson.A{"$$this", 0}},
	}}
	compareAt := bson.M{"$max": bson.A{orZero("price"), orZero("originalPrice"), orZero("compareAtPrice")}}

	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			FieldSellingPrice: bson.M{"$ifNull": bson.A{bson.M{"$min": positive}, 0}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			FieldOnSale: bson.M{"$and": bson.A{
				bson.M{"$gt": bson.A{"$" + FieldSellingPrice, 0}},
				bson.M{"$gt": bson.A{compareAt, "$" + FieldSellingPrice}},
			}},
		}}},
	}
}

// listPipeline filters on stored and derived fields, then returns one page and
// the total match count in a single round trip.
func listPipeline(filter bson.M, sort bson.D, limit, skip int64) mongo.Pipeline {
	page := bson.A{}
	if len(sort) > 0 {
		page = append(page, bson.M{"$sort": sort})
	}
	if skip > 0 {
		page = append(page, bson.M{"$skip": skip})
	}
	if limit > 0 {
		page = append(page, bson.M{"$limit": limit})
	}

	pipeline := pricingStages()
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$facet", Value: bson.M{
			"items": page,
			"total": bson.A{bson.M{"$count": "n"}},
		}}},
	)
	return pipeline
}

func (r *MongoProductRepository) FindProducts(ctx context.Context, filter bson.M, sort bson.D, limit, skip int64) ([]models.Product, int64, error) {
	collection := r.DB.Collection("products")

	cursor, err := collection.Aggregate(ctx, listPipeline(filter, sort, limit, skip))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Items []models.Product `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	var total int64
	if len(result) > 0 {
		if result[0].Items != nil {
			products = result[0].Items
		}
		if len(result[0].Total) > 0 {
			total = result[0].Total[0].N
		}
	}
	return products, total, nil
}

func (r *MongoProductRepository) GetProduct(ctx context.Context, filter bson.M) (models.Product, error) {
	collection := r.DB.Collection("products")
	var product models.Product
	if err := collection.FindOne(ctx, filter).Decode(&product); err != nil {
		return models.Product{}, translate(err)
	}
	return product, nil
}

func (r *MongoProductRepository) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	collection := r.DB.Collection("products")
	cursor, err := collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) DistinctBrands(ctx context.Context, filter bson.M) ([]string, error) {
	values, err := r.DB.Collection("products").Distinct(ctx, "brand", filter)
	if err != nil {
		return nil, err
	}
	brands := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			brands = append(brands, s)
		}
	}
	return brands, nil
}

// DecrementStock takes qty units out of inventory only if enough remain.
// It reports false when the guard did not match.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) (bool, error) {
	filter, update := stockUpdate(productID, variantID, -qty)
	if variantID == "" {
		filter["stock"] = bson.M{"$gte": qty}
	} else {
		filter["variants"] = bson.M{"$elemMatch": bson.M{"id": variantID, "stock": bson.M{"$gte": qty}}}
	}

	res, err := r.DB.Collection("products").UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoProductRepository) IncrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) error {
	filter, update := stockUpdate(productID, variantID, qty)
	if variantID != "" {
		filter["variants.id"] = variantID
	}
	_, err := r.DB.Collection("products").UpdateOne(ctx, filter, update)
	return err
}

func stockUpdate(productID primitive.ObjectID, variantID string, delta int) (bson.M, bson.M) {
	field := "stock"
	if variantID != "" {
		field = "variants.$.stock"
	}
	return bson.M{"_id": productID}, bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
}

func (r *MongoProductRepository) UpdateRating(ctx context.Context, productID primitive.ObjectID, rating float64, count int) error {
	_, err := r.DB.Collection("products").UpdateOne(ctx, bson.M{"_id": productID}, bson.M{
		"$set": bson.M{
			"rating":      rating,
			"reviewCount": count,
		},
	})
	return err
}

// UpsertBySlug writes catalog content keyed by slug, keeping the original
// creation time and the live stock figures of an existing document.
func (r *MongoProductRepository) UpsertBySlug(ctx context.Context, product models.Product) (primitive.ObjectID, error) {
	collection := r.DB.Collection("products")
	now := time.Now()

	var existing models.Product
	err := collection.FindOne(ctx, bson.M{"slug": product.Slug},
		options.FindOne().SetProjection(bson.M{"variants": 1})).Decode(&existing)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, err
	}

	set := bson.M{
		"name":           product.Name,
		"brand":          product.Brand,
		"category":       product.Category,
		"description":    product.Description,
		"tags":           product.Tags,
		"images":         product.Images,
		"price":          product.Price,
		"salePrice":      product.SalePrice,
		"originalPrice":  product.OriginalPrice,
		"discountPrice":  product.DiscountPrice,
		"compareAtPrice": product.CompareAtPrice,
		"sku":            product.SKU,
		"specs":          product.Specs,
		"variants":       mergeVariantStock(product.Variants, existing.Variants),
		"featured":       product.Featured,
		"status":         product.Status,
		"updatedAt":      now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"slug":        product.Slug,
			"stock":       product.Stock,
			"rating":      product.Rating,
			"reviewCount": product.ReviewCount,
			"createdAt":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Product
	if err := collection.FindOneAndUpdate(ctx, bson.M{"slug": product.Slug}, update, opts).Decode(&saved); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return saved.ID, nil
}

// mergeVariantStock takes variant content from seeded and stock from the
// stored variant with the same id. New variants keep their seeded stock.
func mergeVariantStock(seeded, stored []models.Variant) []models.Variant {
	stock := make(map[string]int, len(stored))
	for _, v := range stored {
		stock[v.ID] = v.Stock
	}
	merged := make([]models.Variant, len(seeded))
	for i, v := range seeded {
		if n, ok := stock[v.ID]; ok {
			v.Stock = n
		}
		merged[i] = v
	}
	return merged
}
