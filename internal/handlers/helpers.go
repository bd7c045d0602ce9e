package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/media"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/auth"
	"github.com/technova/storefront-api/internal/services/cart"
	"github.com/technova/storefront-api/internal/services/compare"
	"github.com/technova/storefront-api/internal/services/history"
	"github.com/technova/storefront-api/internal/services/orders"
	"github.com/technova/storefront-api/internal/services/payments"
	"github.com/technova/storefront-api/internal/services/reviews"
	"github.com/technova/storefront-api/internal/services/wishlist"
	"github.com/technova/storefront-api/utils"
)

// Currencies is what the handlers need to price responses for the shopper.
type Currencies interface {
	Normalize(code string) (string, error)
	FromBase(amount float64, to string) (float64, error)
	List() []models.CurrencyRate
}

var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		repository.ErrNotFound, catalog.ErrProductNotFound, catalog.ErrBundleNotFound,
		cart.ErrLineNotFound, cart.ErrVariantNotFound, wishlist.ErrProductNotFound,
		compare.ErrProductNotFound, orders.ErrOrderNotFound, reviews.ErrProductNotFound,
		history.ErrProductNotFound, auth.ErrUserNotFound,
	}},
	{http.StatusConflict, []error{
		cart.ErrOutOfStock, cart.ErrBusy, cart.ErrProductUnavailable, catalog.ErrBundleUnavailable,
		auth.ErrEmailTaken, reviews.ErrAlreadyReviewed, compare.ErrCompareFull,
		orders.ErrInsufficientStock, orders.ErrInvalidTransition, payments.ErrOrderNotPayable,
	}},
	{http.StatusBadRequest, []error{
		cart.ErrInvalidQuantity, cart.ErrVariantRequired, orders.ErrEmptyCart,
		compare.ErrNotEnoughProducts, payments.ErrNothingToPay, payments.ErrAmountTooSmall,
		payments.ErrInvalidReference, payments.ErrInvalidSignature,
		currency.ErrUnsupportedCurrency, reviews.ErrInvalidRating,
	}},
	{http.StatusUnauthorized, []error{auth.ErrInvalidCredentials, utils.ErrInvalidToken, utils.ErrUnexpectedTokenT}},
	{http.StatusForbidden, []error{orders.ErrForbidden}},
	{http.StatusServiceUnavailable, []error{compare.ErrSummaryUnavailable, payments.ErrPaymentsDisabled, media.ErrUploadDisabled}},
}

func statusFor(err error) int {
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError answers with the error's message when it is one the shopper
// can act on, and with fallback otherwise.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		_ = c.Error(err)
		c.JSON(status, utils.ErrorResponse(fallback))
		return
	}
	c.JSON(status, utils.ErrorResponse(err.Error()))
}

// currentUser reads the id AuthMiddleware stored on the context.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid user session"))
		return primitive.NilObjectID, false
	}
	return userID, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == models.RoleAdmin
}

// requestCurrency resolves ?currency=, defaulting to USD.
func requestCurrency(c *gin.Context, currencies Currencies) (string, bool) {
	code, err := currencies.Normalize(c.Query("currency"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return "", false
	}
	return code, true
}

func objectIDParam(c *gin.Context, name, message string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(message))
		return primitive.NilObjectID, false
	}
	return id, true
}
