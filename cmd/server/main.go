package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	h "storefront/internal/http"
	"storefront/internal/orders"
	"storefront/internal/outbox"
	"storefront/internal/shop"
	"storefront/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	kv, err := storage.NewSQLiteKV(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	if err := kv.RunMigrations(); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("storage ready", "path", cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var productCache cache.ProductCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		productCache = cache.NewRedisCache(redisClient)
		slog.Info("redis cache enabled", "addr", cfg.RedisAddr)
	}

	seed, err := cfg.LoadSeed()
	if err != nil {
		slog.Error("failed to load seed catalog", "error", err)
		os.Exit(1)
	}

	catalogStore := catalog.NewStore(kv, productCache, seed)
	cartStore := cart.NewStore(kv, catalogStore)
	ledger := orders.NewLedger(kv)
	outboxStore := outbox.NewStore(kv)
	store := shop.New(catalogStore, cartStore, ledger, outboxStore)

	if len(cfg.KafkaBrokers) > 0 {
		poller := outbox.NewPoller(outboxStore, cfg.KafkaBrokers...)
		go poller.Run(ctx)
		slog.Info("outbox poller started", "brokers", cfg.KafkaBrokers)
	}

	catalogHandler := h.NewCatalogHandler(store, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(store, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(store, cfg.RequestTimeout)
	adminHandler := h.NewAdminHandler(store, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.Get)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", ordersHandler.Checkout)
		r.Get("/orders", ordersHandler.List)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware(cfg.AdminSecret))
			r.Post("/products", adminHandler.AddProduct)
			r.Put("/products/{product_id}", adminHandler.EditProduct)
			r.Delete("/products/{product_id}", adminHandler.DeleteProduct)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}
