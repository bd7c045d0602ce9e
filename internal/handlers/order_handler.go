package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/services/orders"
	"github.com/technova/storefront-api/utils"
)

type OrderHandler struct {
	Orders orders.Service
}

func NewOrderHandler(svc orders.Service) *OrderHandler {
	return &OrderHandler{Orders: svc}
}

// PlaceOrder handles the checkout process
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input orders.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Shipping address and payment method are required"))
		return
	}
	if input.Currency == "" {
		input.Currency = c.Query("currency")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := h.Orders.PlaceOrder(ctx, userID, input)
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Order placed successfully", gin.H{"order": order}))
}

// GetUserOrders returns the order history for a buyer
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	list, err := h.Orders.List(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Orders fetched successfully", gin.H{"orders": list}))
}

func (h *OrderHandler) GetOrderById(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.Get(ctx, userID, isAdmin(c), orderID)
	if err != nil {
		respondError(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order fetched successfully", gin.H{"order": order}))
}

// UpdateOrderStatus is the admin fulfilment endpoint.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}

	var input orders.StatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid status provided"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.UpdateStatus(ctx, orderID, input)
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order status updated", gin.H{"order": order}))
}

func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.ConfirmReceipt(ctx, userID, orderID)
	if err != nil {
		respondError(c, err, "Failed to confirm receipt")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Receipt confirmed. Enjoy your new gear!", gin.H{"order": order}))
}
