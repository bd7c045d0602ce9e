package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/database"
	"github.com/technova/storefront-api/internal/seed"
	"github.com/technova/storefront-api/internal/services/auth"
	"github.com/technova/storefront-api/utils"
)

func seedCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog, bundles and currency rates",
		Long: `Upsert the embedded demo catalog into MongoDB.

With --reset the catalog collections are dropped first. When SEED_ADMIN_EMAIL
and SEED_ADMIN_PASSWORD are set an admin account is created as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			catalog, err := seed.Load()
			if err != nil {
				return err
			}

			conv, err := currency.NewDefaultConverter()
			if err != nil {
				return err
			}
			tokens := utils.NewTokenManager(a.cfg.JWTSecret, a.cfg.JWTAccessTTL, a.cfg.JWTRefreshTTL)

			seeder := &seed.Seeder{
				Categories: repository.NewCategoryRepository(a.db),
				Products:   repository.NewProductRepository(a.db),
				Bundles:    repository.NewBundleRepository(a.db),
				Rates:      repository.NewCurrencyRepository(a.db),
				Admins:     auth.NewService(repository.NewUserRepository(a.db), tokens, conv),
				Dropper:    database.Dropper{DB: a.db},
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if _, err := seeder.Run(ctx, catalog, seed.Options{
				Reset:         reset,
				AdminEmail:    a.cfg.SeedAdminEmail,
				AdminPassword: a.cfg.SeedAdminPassword,
			}); err != nil {
				return err
			}
			if reset {
				// Dropped collections lose their indexes too.
				return database.EnsureIndexes(ctx, a.db)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop catalog collections before seeding")
	return cmd
}
