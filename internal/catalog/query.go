package catalog

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/models"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

// ProductQuery is the product listing filter as it arrives on the query string.
type ProductQuery struct {
	Category string  `form:"category" json:"category,omitempty"`
	Brand    string  `form:"brand" json:"brand,omitempty"`
	Q        string  `form:"q" json:"q,omitempty"`
	MinPrice float64 `form:"minPrice" json:"minPrice,omitempty" binding:"gte=0"`
	MaxPrice float64 `form:"maxPrice" json:"maxPrice,omitempty" binding:"gte=0"`
	Featured *bool   `form:"featured" json:"featured,omitempty"`
	OnSale   bool    `form:"onSale" json:"onSale,omitempty"`
	Sort     string  `form:"sort" json:"sort,omitempty" binding:"omitempty,oneof=newest price_asc price_desc rating name"`
	Page     int     `form:"page" json:"page"`
	Limit    int     `form:"limit" json:"limit"`
}

// Clamp fills defaults and bounds paging.
func (q ProductQuery) Clamp() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	q.Q = strings.TrimSpace(q.Q)
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	return q
}

func (q ProductQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// CacheKey is stable for equal queries.
func (q ProductQuery) CacheKey() string {
	data, _ := json.Marshal(q)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func activeFilter() bson.M {
	return bson.M{"status": models.ProductStatusActive}
}

// Filter builds the Mongo filter. categories is the requested category slug
// expanded with its subcategories.
func (q ProductQuery) Filter(categories []string) bson.M {
	filter := activeFilter()
	var and []bson.M

	if len(categories) == 1 {
		filter["category"] = categories[0]
	} else if len(categories) > 1 {
		filter["category"] = bson.M{"$in": categories}
	}
	if q.Brand != "" {
		filter["brand"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q.Brand) + "$", "$options": "i"}
	}
	if q.Q != "" {
		pattern := regexp.QuoteMeta(q.Q)
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"brand": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}})
	}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		rng := bson.M{}
		if q.MinPrice > 0 {
			rng["$gte"] = q.MinPrice
		}
		if q.MaxPrice > 0 {
			rng["$lte"] = q.MaxPrice
		}
		filter[repository.FieldSellingPrice] = rng
	}
	if q.Featured != nil {
		filter["featured"] = *q.Featured
	}
	if q.OnSale {
		filter[repository.FieldOnSale] = true
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

// SortSpec maps the sort name to a Mongo sort. Price sorts use the selling
// price. _id breaks ties so paging is stable.
func (q ProductQuery) SortSpec() bson.D {
	switch q.Sort {
	case SortPriceAsc:
		return bson.D{{Key: repository.FieldSellingPrice, Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: repository.FieldSellingPrice, Value: -1}, {Key: "_id", Value: 1}}
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}, {Key: "_id", Value: 1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}
