package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/utils"
)

type CategoryHandler struct {
	Catalog    catalog.Service
	Currencies Currencies
}

func NewCategoryHandler(cat catalog.Service, currencies Currencies) *CategoryHandler {
	return &CategoryHandler{Catalog: cat, Currencies: currencies}
}

func (h *CategoryHandler) GetAllProductCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		respondError(c, err, "failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("categories fetched successfully", gin.H{"categories": categories}))
}

// GetNavigation serves the mega-menu: top-level categories with their
// children, brands and a few featured products.
func (h *CategoryHandler) GetNavigation(c *gin.Context) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	nav, err := h.Catalog.Navigation(ctx)
	if err != nil {
		respondError(c, err, "failed to fetch navigation")
		return
	}
	localized := make([]models.NavItem, len(nav))
	for i, item := range nav {
		if item.Featured, err = catalog.LocalizeAll(item.Featured, h.Currencies, code); err != nil {
			respondError(c, err, "failed to price navigation")
			return
		}
		localized[i] = item
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("navigation fetched successfully", gin.H{"navigation": localized}))
}

func (h *CategoryHandler) GetBrands(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	brands, err := h.Catalog.Brands(ctx, c.Query("category"))
	if err != nil {
		respondError(c, err, "failed to fetch brands")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("brands fetched successfully", gin.H{"brands": brands}))
}
