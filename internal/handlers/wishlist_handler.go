package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/services/cart"
	"github.com/technova/storefront-api/internal/services/wishlist"
	"github.com/technova/storefront-api/utils"
)

type WishlistHandler struct {
	Wishlist   wishlist.Service
	Currencies Currencies
}

func NewWishlistHandler(svc wishlist.Service, currencies Currencies) *WishlistHandler {
	return &WishlistHandler{Wishlist: svc, Currencies: currencies}
}

func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Wishlist.Add(ctx, userID, req.ProductID); err != nil {
		respondError(c, err, "Failed to add to wishlist")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Added to wishlist", nil))
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Wishlist.Remove(ctx, userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to remove from wishlist")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Removed from wishlist", nil))
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.Wishlist.List(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch wishlist")
		return
	}
	if products, err = catalog.LocalizeAll(products, h.Currencies, code); err != nil {
		respondError(c, err, "Failed to price wishlist")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Wishlist fetched successfully", gin.H{"products": products}))
}

func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		VariantID string `json:"variantId"`
		Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
	}
	// an empty body moves one unit
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request body"))
			return
		}
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Wishlist.MoveToCart(ctx, userID, c.Param("id"), req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to move item to cart")
		return
	}
	view, err := cart.Localize(res.Cart, h.Currencies, code)
	if err != nil {
		respondError(c, err, "Failed to price cart")
		return
	}
	message := "Moved to cart"
	if res.Adjusted && res.Message != "" {
		message = res.Message
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(message, gin.H{"cart": view, "adjusted": res.Adjusted}))
}
