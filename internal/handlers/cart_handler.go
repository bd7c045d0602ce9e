package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/cart"
	"github.com/technova/storefront-api/utils"
)

type CartHandler struct {
	Cart       cart.Service
	Currencies Currencies
}

func NewCartHandler(svc cart.Service, currencies Currencies) *CartHandler {
	return &CartHandler{Cart: svc, Currencies: currencies}
}

// respond localizes the cart and reports a stock adjustment in the message.
func (h *CartHandler) respond(c *gin.Context, status int, message, code string, res cart.Result) {
	view, err := cart.Localize(res.Cart, h.Currencies, code)
	if err != nil {
		respondError(c, err, "Failed to price cart")
		return
	}
	if res.Adjusted && res.Message != "" {
		message = res.Message
	}
	c.JSON(status, utils.SuccessResponse(message, gin.H{"cart": view, "adjusted": res.Adjusted}))
}

func (h *CartHandler) GetCart(c *gin.Context) {
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

	view, err := h.Cart.Get(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch cart")
		return
	}
	h.respond(c, http.StatusOK, "Cart fetched successfully", code, cart.Result{Cart: view})
}

// AddToCart takes product and quantity only; the price always comes from the catalog.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req cart.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request body"))
		return
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Cart.AddItem(ctx, userID, req)
	if err != nil {
		respondError(c, err, "Failed to add to cart")
		return
	}
	h.respond(c, http.StatusOK, "Item added to cart", code, res)
}

func (h *CartHandler) AddBundle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req cart.AddBundleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request body"))
		return
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Cart.AddBundle(ctx, userID, req)
	if err != nil {
		respondError(c, err, "Failed to add bundle to cart")
		return
	}
	h.respond(c, http.StatusOK, "Bundle added to cart", code, res)
}

// UpdateQuantity addresses the line by its key (see models.CartItem.Key).
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Quantity must be at least 1"))
		return
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Cart.UpdateQuantity(ctx, userID, c.Param("key"), req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update quantity")
		return
	}
	h.respond(c, http.StatusOK, "Cart updated", code, res)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
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

	view, err := h.Cart.RemoveItem(ctx, userID, c.Param("key"))
	if err != nil {
		respondError(c, err, "Failed to remove from cart")
		return
	}
	h.respond(c, http.StatusOK, "Item removed from cart", code, cart.Result{Cart: view})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Cart.Clear(ctx, userID); err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Cart cleared", gin.H{"cart": models.CartView{
		Items:  []models.CartItem{},
		Totals: models.CartTotals{Currency: "USD"},
	}}))
}
