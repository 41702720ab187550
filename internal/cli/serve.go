package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"giftora/internal/cache"
	"giftora/internal/catalog"
	"giftora/internal/config"
	"giftora/internal/database"
	"giftora/internal/engine"
	"giftora/internal/handlers"
	"giftora/internal/metrics"
	"giftora/internal/middleware"
	"giftora/internal/router"
	"giftora/internal/store"
	"giftora/internal/studio"
)

func newServeCmd(version string) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the template API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cfg.IsDev(), cfg.LogLevel))
			slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "version", version)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()
			return serve(ctx, cfg, seed || cfg.IsDev())
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Seed default categories (always on in development)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, seed bool) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if seed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	m := metrics.New()

	// The listing cache is optional: without Valkey every listing is
	// computed from the stores.
	var listings *cache.ListingCache
	valkey, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Warn("valkey unavailable, listing cache disabled", "error", err)
	} else {
		defer valkey.Close()
		listings = cache.NewListingCache(valkey, cfg.ListingTTL, m)
		// Listings cached by a previous deploy may predate a schema change.
		slog.Info("listing cache reset", "keys", listings.InvalidateAll(ctx))
	}

	reactStore := store.NewReactTemplateStore(db)
	htmlStore := store.NewHTMLTemplateStore(db)
	categoryStore := store.NewCategoryStore(db)
	cacheLog := store.NewCacheLogStore(db)

	cat := catalog.NewService(catalog.Stores{
		React:      reactStore,
		HTML:       htmlStore,
		Categories: categoryStore,
		Reviews:    store.NewReviewStore(db),
		Orders:     store.NewOrderStore(db),
	})
	eng := engine.New(htmlStore, m, cfg.DefaultLanguage)
	svc := studio.New(studio.Deps{
		HTML:     htmlStore,
		React:    reactStore,
		Listings: listings,
		Log:      cacheLog,
		Previews: eng,
		Observer: m,
	})

	limiter := middleware.NewRateLimiter(cfg.StudioRateLimit, cfg.StudioRateWindow)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Templates: handlers.NewTemplates(cat, categoryStore, listings, m),
		Preview:   handlers.NewPreview(eng, m),
		Studio:    handlers.NewStudio(svc, m),
		History:   handlers.NewHistory(cacheLog),
	}, router.Options{
		Metrics:       m,
		CORSOrigins:   cfg.CORSOrigins,
		StudioLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		// Give active requests up to 30 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("server stopped gracefully")
		return nil
	})
	return g.Wait()
}
