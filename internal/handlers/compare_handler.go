package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/compare"
	"github.com/technova/storefront-api/utils"
)

type CompareHandler struct {
	Compare    compare.Service
	Currencies Currencies
}

func NewCompareHandler(svc compare.Service, currencies Currencies) *CompareHandler {
	return &CompareHandler{Compare: svc, Currencies: currencies}
}

func (h *CompareHandler) localized(c *gin.Context, products []models.ProductView) ([]models.ProductView, bool) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return nil, false
	}
	out, err := catalog.LocalizeAll(products, h.Currencies, code)
	if err != nil {
		respondError(c, err, "Failed to price products")
		return nil, false
	}
	return out, true
}

// GetCompare returns the products and their specs lined up by key.
func (h *CompareHandler) GetCompare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	table, err := h.Compare.Table(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch comparison")
		return
	}
	if table.Products, ok = h.localized(c, table.Products); !ok {
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Comparison fetched successfully", gin.H{"compare": table}))
}

func (h *CompareHandler) AddToCompare(c *gin.Context) {
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

	products, err := h.Compare.Add(ctx, userID, req.ProductID)
	if err != nil {
		respondError(c, err, "Failed to add to comparison")
		return
	}
	if products, ok = h.localized(c, products); !ok {
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Added to comparison", gin.H{"products": products}))
}

func (h *CompareHandler) RemoveFromCompare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.Compare.Remove(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to remove from comparison")
		return
	}
	if products, ok = h.localized(c, products); !ok {
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Removed from comparison", gin.H{"products": products}))
}

func (h *CompareHandler) ClearCompare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Compare.Clear(ctx, userID); err != nil {
		respondError(c, err, "Failed to clear comparison")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Comparison cleared", nil))
}

func (h *CompareHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	// generation is slower than a database read
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	summary, err := h.Compare.Summary(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to summarize comparison")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Comparison summary generated", gin.H{"summary": summary}))
}
