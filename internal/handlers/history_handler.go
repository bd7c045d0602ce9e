package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/services/history"
	"github.com/technova/storefront-api/utils"
)

type HistoryHandler struct {
	History    history.Service
	Currencies Currencies
}

func NewHistoryHandler(svc history.Service, currencies Currencies) *HistoryHandler {
	return &HistoryHandler{History: svc, Currencies: currencies}
}

func (h *HistoryHandler) RecordView(c *gin.Context) {
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

	if err := h.History.Record(ctx, userID, req.ProductID); err != nil {
		respondError(c, err, "Failed to record view")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("View recorded", nil))
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
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

	items, err := h.History.List(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch history")
		return
	}
	for i := range items {
		if items[i].Product, err = catalog.Localize(items[i].Product, h.Currencies, code); err != nil {
			respondError(c, err, "Failed to price history")
			return
		}
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("History fetched successfully", gin.H{"items": items}))
}

func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.History.Clear(ctx, userID); err != nil {
		respondError(c, err, "Failed to clear history")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("History cleared", nil))
}
