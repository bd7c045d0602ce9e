package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/technova/storefront-api/internal/adapters/ai"
	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/cache"
	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/database"
	"github.com/technova/storefront-api/internal/events"
	"github.com/technova/storefront-api/internal/handlers"
	"github.com/technova/storefront-api/internal/media"
	"github.com/technova/storefront-api/internal/middleware"
	"github.com/technova/storefront-api/internal/pricing"
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

func serveCmd() *cobra.Command {
	var ensureIndexes bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if ensureIndexes {
				if err := database.EnsureIndexes(ctx, a.db); err != nil {
					logrus.WithError(err).Warn("Failed to ensure indexes")
				}
			}
			return serve(ctx, a)
		},
	}

	cmd.Flags().BoolVar(&ensureIndexes, "ensure-indexes", true, "create missing indexes on startup")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	gin.SetMode(cfg.GinMode)

	products := repository.NewProductRepository(a.db)
	categories := repository.NewCategoryRepository(a.db)
	bundles := repository.NewBundleRepository(a.db)
	users := repository.NewUserRepository(a.db)
	orderRepo := repository.NewOrderRepository(a.db)
	reviewRepo := repository.NewReviewRepository(a.db)

	conv, err := currency.NewDefaultConverter()
	if err != nil {
		return err
	}
	if err := conv.Reload(ctx, repository.NewCurrencyRepository(a.db)); err != nil {
		logrus.WithError(err).Warn("Using built-in currency rates")
	}

	store, closeStore := cacheStore(ctx, cfg.RedisURL)
	defer closeStore()

	publisher := eventPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	defer publisher.Close()

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	rules := pricing.Rules{
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		TaxRate:               cfg.TaxRate,
	}

	catalogSvc := catalog.NewService(products, categories, bundles, store, catalog.Options{
		MediaBaseURL: cfg.MediaBaseURL,
		FreshTTL:     cfg.CacheFreshTTL,
		StaleTTL:     cfg.CacheStaleTTL,
	})
	authSvc := auth.NewService(users, tokens, conv)
	cartSvc := cart.NewService(repository.NewCartRepository(a.db), catalogSvc, rules, publisher, cfg.MediaBaseURL)
	wishlistSvc := wishlist.NewService(repository.NewWishlistRepository(a.db), catalogSvc, cartSvc, cfg.MediaBaseURL)
	historySvc := history.NewService(repository.NewHistoryRepository(a.db), catalogSvc)
	orderSvc := orders.NewService(orderRepo, products, cartSvc, conv, publisher)
	paymentSvc := payments.NewService(payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhook), orderSvc, cartSvc, conv)
	reviewSvc := reviews.NewService(reviewRepo, products, orderRepo, users, catalogSvc)

	var summarizer compare.Summarizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logrus.WithError(err).Warn("Compare summaries disabled")
		} else {
			defer gemini.Close()
			summarizer = gemini
		}
	}
	compareSvc := compare.NewService(repository.NewCompareRepository(a.db), catalogSvc, summarizer)

	var uploader media.Uploader
	if cfg.CloudinaryCloudName != "" {
		cld, err := media.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logrus.WithError(err).Warn("Image uploads disabled")
		} else {
			uploader = cld
		}
	}

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.CORSOrigins))

	handlers.SetupRoutes(router, handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authSvc),
		Products:   handlers.NewProductHandler(catalogSvc, conv),
		Categories: handlers.NewCategoryHandler(catalogSvc, conv),
		Currencies: handlers.NewCurrencyHandler(conv),
		Uploads:    handlers.NewUploadHandler(uploader),
		Cart:       handlers.NewCartHandler(cartSvc, conv),
		Wishlist:   handlers.NewWishlistHandler(wishlistSvc, conv),
		Compare:    handlers.NewCompareHandler(compareSvc, conv),
		History:    handlers.NewHistoryHandler(historySvc, conv),
		Orders:     handlers.NewOrderHandler(orderSvc),
		Payments:   handlers.NewPaymentHandler(paymentSvc),
		Reviews:    handlers.NewReviewHandler(reviewSvc),
		Tokens:     tokens,
		Health: func(ctx context.Context) error {
			return a.client.Ping(ctx, nil)
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cacheStore prefers Redis so several API instances share one catalog cache.
func cacheStore(ctx context.Context, redisURL string) (cache.Store, func()) {
	if redisURL == "" {
		return cache.NewMemoryStore(), func() {}
	}
	client, err := cache.NewRedisClient(ctx, redisURL)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, using in-memory cache")
		return cache.NewMemoryStore(), func() {}
	}
	logrus.Info("Catalog cache backed by Redis")
	return cache.NewRedisStore(client, "technova:"), func() { _ = client.Close() }
}

func eventPublisher(url, queue string) events.Publisher {
	if url == "" {
		return events.LogPublisher{}
	}
	p, err := events.NewRabbitPublisher(url, queue)
	if err != nil {
		logrus.WithError(err).Warn("RabbitMQ unavailable, events will only be logged")
		return events.LogPublisher{}
	}
	return p
}
