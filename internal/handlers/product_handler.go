package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/utils"
)

type ProductHandler struct {
	Catalog    catalog.Service
	Currencies Currencies
}

func NewProductHandler(cat catalog.Service, currencies Currencies) *ProductHandler {
	return &ProductHandler{Catalog: cat, Currencies: currencies}
}

// ListProducts serves GET /api/v1/products with filters, sorting and paging.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var q catalog.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	page, err := h.Catalog.List(ctx, q)
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}
	if page.Products, err = catalog.LocalizeAll(page.Products, h.Currencies, code); err != nil {
		respondError(c, err, "Failed to price products")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Products fetched successfully", page))
}

// GetProduct accepts an id or a slug.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	if product, err = catalog.Localize(product, h.Currencies, code); err != nil {
		respondError(c, err, "Failed to price product")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Product fetched successfully", gin.H{"product": product}))
}

func (h *ProductHandler) GetRelated(c *gin.Context) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	related, err := h.Catalog.Related(ctx, c.Param("id"), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch related products")
		return
	}
	if related, err = catalog.LocalizeAll(related, h.Currencies, code); err != nil {
		respondError(c, err, "Failed to price products")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Related products fetched successfully", gin.H{"products": related}))
}

func (h *ProductHandler) ListBundles(c *gin.Context) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	bundles, err := h.Catalog.Bundles(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch bundles")
		return
	}
	for i := range bundles {
		if bundles[i], err = catalog.LocalizeBundle(bundles[i], h.Currencies, code); err != nil {
			respondError(c, err, "Failed to price bundles")
			return
		}
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Bundles fetched successfully", gin.H{"bundles": bundles}))
}

func (h *ProductHandler) GetBundle(c *gin.Context) {
	code, ok := requestCurrency(c, h.Currencies)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	bundle, err := h.Catalog.Bundle(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch bundle")
		return
	}
	if bundle, err = catalog.LocalizeBundle(bundle, h.Currencies, code); err != nil {
		respondError(c, err, "Failed to price bundle")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Bundle fetched successfully", gin.H{"bundle": bundle}))
}

// InvalidateCache drops every cached catalog read.
func (h *ProductHandler) InvalidateCache(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Catalog.Invalidate(ctx); err != nil {
		respondError(c, err, "Failed to invalidate catalog cache")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Catalog cache invalidated", nil))
}
