package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/technova/storefront-api/internal/middleware"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/utils"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth       *AuthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Currencies *CurrencyHandler
	Uploads    *UploadHandler
	Cart       *CartHandler
	Wishlist   *WishlistHandler
	Compare    *CompareHandler
	History    *HistoryHandler
	Orders     *OrderHandler
	Payments   *PaymentHandler
	Reviews    *ReviewHandler

	Tokens *utils.TokenManager
	// Health reports whether the backing services are reachable.
	Health func(ctx context.Context) error
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	logrus.Info("Setting up routes...")

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if h.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := h.Health(ctx); err != nil {
				logrus.WithError(err).Warn("Health check failed")
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": "technova-storefront-api",
		})
	})

	api := router.Group("/api/v1")

	// Public Routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.CreateUser)
		authGroup.POST("/login", h.Auth.LoginUser)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.ListProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.GET("/:id/related", h.Products.GetRelated)
		products.GET("/:id/reviews", h.Reviews.GetProductReviews)
	}
	api.GET("/categories", h.Categories.GetAllProductCategories)
	api.GET("/navigation", h.Categories.GetNavigation)
	api.GET("/brands", h.Categories.GetBrands)
	api.GET("/bundles", h.Products.ListBundles)
	api.GET("/bundles/:id", h.Products.GetBundle)
	api.GET("/currencies", h.Currencies.ListCurrencies)
	api.GET("/media/fallback", h.Uploads.Fallback)

	// Stripe calls this one; the signature is the authentication.
	api.POST("/payments/webhook", h.Payments.HandleWebhook)

	// Protected Routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(h.Tokens))
	{
		me := protected.Group("/me")
		{
			me.GET("", h.Auth.Me)
			me.PUT("/currency", h.Auth.UpdateCurrency)
		}

		carts := protected.Group("/cart")
		{
			carts.GET("", h.Cart.GetCart)
			carts.DELETE("", h.Cart.ClearCart)
			carts.POST("/items", h.Cart.AddToCart)
			carts.PUT("/items/:key", h.Cart.UpdateQuantity)
			carts.DELETE("/items/:key", h.Cart.RemoveFromCart)
			carts.POST("/bundles", h.Cart.AddBundle)
		}

		wishlists := protected.Group("/wishlist")
		{
			wishlists.GET("", h.Wishlist.GetWishlist)
			wishlists.POST("", h.Wishlist.AddToWishlist)
			wishlists.DELETE("/:id", h.Wishlist.RemoveFromWishlist)
			wishlists.POST("/:id/move-to-cart", h.Wishlist.MoveToCart)
		}

		compares := protected.Group("/compare")
		{
			compares.GET("", h.Compare.GetCompare)
			compares.POST("", h.Compare.AddToCompare)
			compares.DELETE("", h.Compare.ClearCompare)
			compares.DELETE("/:id", h.Compare.RemoveFromCompare)
			compares.GET("/summary", h.Compare.Summary)
		}

		histories := protected.Group("/history")
		{
			histories.GET("", h.History.GetHistory)
			histories.POST("", h.History.RecordView)
			histories.DELETE("", h.History.ClearHistory)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", h.Orders.PlaceOrder)
			orders.GET("", h.Orders.GetUserOrders)
			orders.GET("/:id", h.Orders.GetOrderById)
			orders.POST("/:id/confirm", h.Orders.ConfirmReceipt)
		}

		protected.POST("/payments/create-intent", h.Payments.CreatePaymentIntent)
		protected.POST("/reviews", h.Reviews.CreateReview)

		admin := protected.Group("/admin")
		admin.Use(middleware.RoleMiddleware(models.RoleAdmin))
		{
			admin.POST("/upload", h.Uploads.UploadImage)
			admin.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)
			admin.POST("/cache/invalidate", h.Products.InvalidateCache)
		}
	}
}
