// Package repotest provides repository fakes whose behavior is injected
// through function fields. A nil field makes the method a no-op returning
// zero values.
package repotest

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/models"
)

type Products struct {
	FindProductsFunc     func(ctx context.Context, filter bson.M, sort bson.D, limit, skip int64) ([]models.Product, int64, error)
	GetProductFunc       func(ctx context.Context, filter bson.M) (models.Product, error)
	GetProductsByIDsFunc func(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	DistinctBrandsFunc   func(ctx context.Context, filter bson.M) ([]string, error)
	DecrementStockFunc   func(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) (bool, error)
	IncrementStockFunc   func(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) error
	UpdateRatingFunc     func(ctx context.Context, productID primitive.ObjectID, rating float64, count int) error
	UpsertBySlugFunc     func(ctx context.Context, product models.Product) (primitive.ObjectID, error)
}

func (f *Products) FindProducts(ctx context.Context, filter bson.M, sort bson.D, limit, skip int64) ([]models.Product, int64, error) {
	if f.FindProductsFunc == nil {
		return nil, 0, nil
	}
	return f.FindProductsFunc(ctx, filter, sort, limit, skip)
}

func (f *Products) GetProduct(ctx context.Context, filter bson.M) (models.Product, error) {
	if f.GetProductFunc == nil {
		return models.Product{}, nil
	}
	return f.GetProductFunc(ctx, filter)
}

func (f *Products) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if f.GetProductsByIDsFunc == nil {
		return nil, nil
	}
	return f.GetProductsByIDsFunc(ctx, ids)
}

func (f *Products) DistinctBrands(ctx context.Context, filter bson.M) ([]string, error) {
	if f.DistinctBrandsFunc == nil {
		return nil, nil
	}
	return f.DistinctBrandsFunc(ctx, filter)
}

func (f *Products) DecrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) (bool, error) {
	if f.DecrementStockFunc == nil {
		return true, nil
	}
	return f.DecrementStockFunc(ctx, productID, variantID, qty)
}

func (f *Products) IncrementStock(ctx context.Context, productID primitive.ObjectID, variantID string, qty int) error {
	if f.IncrementStockFunc == nil {
		return nil
	}
	return f.IncrementStockFunc(ctx, productID, variantID, qty)
}

func (f *Products) UpdateRating(ctx context.Context, productID primitive.ObjectID, rating float64, count int) error {
	if f.UpdateRatingFunc == nil {
		return nil
	}
	return f.UpdateRatingFunc(ctx, productID, rating, count)
}

func (f *Products) UpsertBySlug(ctx context.Context, product models.Product) (primitive.ObjectID, error) {
	if f.UpsertBySlugFunc == nil {
		return primitive.NewObjectID(), nil
	}
	return f.UpsertBySlugFunc(ctx, product)
}

type Categories struct {
	ListCategoriesFunc func(ctx context.Context) ([]models.Category, error)
	UpsertBySlugFunc   func(ctx context.Context, category models.Category) error
}

func (f *Categories) ListCategories(ctx context.Context) ([]models.Category, error) {
	if f.ListCategoriesFunc == nil {
		return nil, nil
	}
	return f.ListCategoriesFunc(ctx)
}

func (f *Categories) UpsertBySlug(ctx context.Context, category models.Category) error {
	if f.UpsertBySlugFunc == nil {
		return nil
	}
	return f.UpsertBySlugFunc(ctx, category)
}

type Bundles struct {
	ListActiveFunc   func(ctx context.Context) ([]models.Bundle, error)
	GetBundleFunc    func(ctx context.Context, filter bson.M) (models.Bundle, error)
	UpsertBySlugFunc func(ctx context.Context, bundle models.Bundle) error
}

func (f *Bundles) ListActive(ctx context.Context) ([]models.Bundle, error) {
	if f.ListActiveFunc == nil {
		return nil, nil
	}
	return f.ListActiveFunc(ctx)
}

func (f *Bundles) GetBundle(ctx context.Context, filter bson.M) (models.Bundle, error) {
	if f.GetBundleFunc == nil {
		return models.Bundle{}, nil
	}
	return f.GetBundleFunc(ctx, filter)
}

func (f *Bundles) UpsertBySlug(ctx context.Context, bundle models.Bundle) error {
	if f.UpsertBySlugFunc == nil {
		return nil
	}
	return f.UpsertBySlugFunc(ctx, bundle)
}

type Carts struct {
	GetCartFunc   func(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	SaveCartFunc  func(ctx context.Context, cart models.Cart) error
	ClearCartFunc func(ctx context.Context, userID primitive.ObjectID) error
}

func (f *Carts) GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	if f.GetCartFunc == nil {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return f.GetCartFunc(ctx, userID)
}

func (f *Carts) SaveCart(ctx context.Context, cart models.Cart) error {
	if f.SaveCartFunc == nil {
		return nil
	}
	return f.SaveCartFunc(ctx, cart)
}

func (f *Carts) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if f.ClearCartFunc == nil {
		return nil
	}
	return f.ClearCartFunc(ctx, userID)
}

type Wishlists struct {
	AddToWishlistFunc      func(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFromWishlistFunc func(ctx context.Context, userID, productID primitive.ObjectID) error
	GetWishlistFunc        func(ctx context.Context, userID primitive.ObjectID) (models.PopulatedWishlist, error)
	ContainsFunc           func(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

func (f *Wishlists) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	if f.AddToWishlistFunc == nil {
		return nil
	}
	return f.AddToWishlistFunc(ctx, userID, productID)
}

func (f *Wishlists) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	if f.RemoveFromWishlistFunc == nil {
		return nil
	}
	return f.RemoveFromWishlistFunc(ctx, userID, productID)
}

func (f *Wishlists) GetWishlist(ctx context.Context, userID primitive.ObjectID) (models.PopulatedWishlist, error) {
	if f.GetWishlistFunc == nil {
		return models.PopulatedWishlist{UserID: userID, Products: []models.Product{}}, nil
	}
	return f.GetWishlistFunc(ctx, userID)
}

func (f *Wishlists) Contains(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if f.ContainsFunc == nil {
		return false, nil
	}
	return f.ContainsFunc(ctx, userID, productID)
}

type CompareLists struct {
	GetCompareListFunc  func(ctx context.Context, userID primitive.ObjectID) (models.CompareList, error)
	SaveCompareListFunc func(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error
}

func (f *CompareLists) GetCompareList(ctx context.Context, userID primitive.ObjectID) (models.CompareList, error) {
	if f.GetCompareListFunc == nil {
		return models.CompareList{UserID: userID}, nil
	}
	return f.GetCompareListFunc(ctx, userID)
}

func (f *CompareLists) SaveCompareList(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	if f.SaveCompareListFunc == nil {
		return nil
	}
	return f.SaveCompareListFunc(ctx, userID, productIDs)
}

type Histories struct {
	GetHistoryFunc  func(ctx context.Context, userID primitive.ObjectID) (models.History, error)
	SaveHistoryFunc func(ctx context.Context, userID primitive.ObjectID, entries []models.HistoryEntry) error
}

func (f *Histories) GetHistory(ctx context.Context, userID primitive.ObjectID) (models.History, error) {
	if f.GetHistoryFunc == nil {
		return models.History{UserID: userID}, nil
	}
	return f.GetHistoryFunc(ctx, userID)
}

func (f *Histories) SaveHistory(ctx context.Context, userID primitive.ObjectID, entries []models.HistoryEntry) error {
	if f.SaveHistoryFunc == nil {
		return nil
	}
	return f.SaveHistoryFunc(ctx, userID, entries)
}

type Users struct {
	CreateUserFunc              func(ctx context.Context, user models.User) (models.User, error)
	GetByEmailFunc              func(ctx context.Context, email string) (models.User, error)
	GetByIDFunc                 func(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpdatePreferredCurrencyFunc func(ctx context.Context, id primitive.ObjectID, code string) error
}

func (f *Users) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if f.CreateUserFunc == nil {
		user.ID = primitive.NewObjectID()
		return user, nil
	}
	return f.CreateUserFunc(ctx, user)
}

func (f *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if f.GetByEmailFunc == nil {
		return models.User{}, nil
	}
	return f.GetByEmailFunc(ctx, email)
}

func (f *Users) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	if f.GetByIDFunc == nil {
		return models.User{}, nil
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *Users) UpdatePreferredCurrency(ctx context.Context, id primitive.ObjectID, code string) error {
	if f.UpdatePreferredCurrencyFunc == nil {
		return nil
	}
	return f.UpdatePreferredCurrencyFunc(ctx, id, code)
}

type Rates struct {
	ListRatesFunc  func(ctx context.Context) ([]models.CurrencyRate, error)
	UpsertRateFunc func(ctx context.Context, rate models.CurrencyRate) error
}

func (f *Rates) ListRates(ctx context.Context) ([]models.CurrencyRate, error) {
	if f.ListRatesFunc == nil {
		return nil, nil
	}
	return f.ListRatesFunc(ctx)
}

func (f *Rates) UpsertRate(ctx context.Context, rate models.CurrencyRate) error {
	if f.UpsertRateFunc == nil {
		return nil
	}
	return f.UpsertRateFunc(ctx, rate)
}

type Orders struct {
	InsertOrderFunc       func(ctx context.Context, order models.Order) error
	GetOrdersByUserIDFunc func(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	GetOrderByIdFunc      func(ctx context.Context, orderID primitive.ObjectID) (models.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus, trackingNumber string) error
	MarkPaidFunc          func(ctx context.Context, orderID primitive.ObjectID, paymentID string) (bool, error)
	MarkPaymentFailedFunc func(ctx context.Context, orderID primitive.ObjectID, paymentID string) error
	HasPurchasedFunc      func(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

func (f *Orders) InsertOrder(ctx context.Context, order models.Order) error {
	if f.InsertOrderFunc == nil {
		return nil
	}
	return f.InsertOrderFunc(ctx, order)
}

func (f *Orders) GetOrdersByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	if f.GetOrdersByUserIDFunc == nil {
		return nil, nil
	}
	return f.GetOrdersByUserIDFunc(ctx, userID)
}

func (f *Orders) GetOrderById(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	if f.GetOrderByIdFunc == nil {
		return models.Order{}, nil
	}
	return f.GetOrderByIdFunc(ctx, orderID)
}

func (f *Orders) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus, trackingNumber string) error {
	if f.UpdateOrderStatusFunc == nil {
		return nil
	}
	return f.UpdateOrderStatusFunc(ctx, orderID, from, to, trackingNumber)
}

func (f *Orders) MarkPaid(ctx context.Context, orderID primitive.ObjectID, paymentID string) (bool, error) {
	if f.MarkPaidFunc == nil {
		return true, nil
	}
	return f.MarkPaidFunc(ctx, orderID, paymentID)
}

func (f *Orders) MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID, paymentID string) error {
	if f.MarkPaymentFailedFunc == nil {
		return nil
	}
	return f.MarkPaymentFailedFunc(ctx, orderID, paymentID)
}

func (f *Orders) HasPurchased(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if f.HasPurchasedFunc == nil {
		return false, nil
	}
	return f.HasPurchasedFunc(ctx, userID, productID)
}

type Reviews struct {
	CreateReviewFunc      func(ctx context.Context, review models.Review) error
	HasReviewedFunc       func(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	GetProductReviewsFunc func(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	GetAverageRatingFunc  func(ctx context.Context, productID primitive.ObjectID) (float64, int, error)
}

func (f *Reviews) CreateReview(ctx context.Context, review models.Review) error {
	if f.CreateReviewFunc == nil {
		return nil
	}
	return f.CreateReviewFunc(ctx, review)
}

func (f *Reviews) HasReviewed(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if f.HasReviewedFunc == nil {
		return false, nil
	}
	return f.HasReviewedFunc(ctx, userID, productID)
}

func (f *Reviews) GetProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	if f.GetProductReviewsFunc == nil {
		return nil, nil
	}
	return f.GetProductReviewsFunc(ctx, productID)
}

func (f *Reviews) GetAverageRating(ctx context.Context, productID primitive.ObjectID) (float64, int, error) {
	if f.GetAverageRatingFunc == nil {
		return 0, 0, nil
	}
	return f.GetAverageRatingFunc(ctx, productID)
}
