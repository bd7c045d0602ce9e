package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/utils"
)

type currencyInfo struct {
	models.CurrencyRate
	// Scale is the number of decimals prices are shown with.
	Scale int32 `json:"scale"`
}

type CurrencyHandler struct {
	Currencies Currencies
}

func NewCurrencyHandler(currencies Currencies) *CurrencyHandler {
	return &CurrencyHandler{Currencies: currencies}
}

func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	list := lo.Map(h.Currencies.List(), func(r models.CurrencyRate, _ int) currencyInfo {
		return currencyInfo{CurrencyRate: r, Scale: currency.Scale(r.Code)}
	})
	c.JSON(http.StatusOK, utils.SuccessResponse("Currencies fetched successfully", gin.H{
		"base":       currency.Base,
		"currencies": list,
	}))
}
