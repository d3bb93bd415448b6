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

	"github.com/daSkciN/estoque-app-front/internal/cache"
	"github.com/daSkciN/estoque-app-front/internal/client"
	h "github.com/daSkciN/estoque-app-front/internal/http"
	"github.com/daSkciN/estoque-app-front/internal/journal"
	"github.com/daSkciN/estoque-app-front/internal/publisher"
	"github.com/daSkciN/estoque-app-front/internal/sales"
	"github.com/daSkciN/estoque-app-front/internal/service"
	"github.com/daSkciN/estoque-app-front/internal/session"
	"github.com/daSkciN/estoque-app-front/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	cfg := loadConfig()
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	repo, err := journal.NewRepository(cfg.JournalDBPath)
	if err != nil {
		log.Error("failed to open sales journal", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("migrations completed successfully")

	var cartCache cache.CartCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// carts still work, they just do not survive a restart
			log.Warn("redis unavailable, cart cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			cartCache = cache.NewRedisCache(rdb, 0)
		}
		cancel()
	}

	api := client.NewAPIClient(client.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.RequestTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
	}, log)

	registry := session.NewRegistry(session.Deps{
		Catalog:  sales.NewSharedCatalog(api),
		Orders:   api,
		Recorder: repo,
		Cache:    cartCache,
		Logger:   log,
	}, cfg.SessionTTL)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go registry.Run(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaBrokers...), log)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("sale event publisher started", "brokers", cfg.KafkaBrokers, "topic", publisher.SaleCompletedTopic)
	}

	router := h.NewRouter(h.RouterConfig{
		Sessions:       registry,
		SessionTTL:     cfg.SessionTTL,
		Sales:          h.NewSalesHandler(repo, cfg.RequestTimeout),
		Products:       h.NewProductHandler(service.NewProductService(api, log), cfg.RequestTimeout),
		Stock:          h.NewStockHandler(service.NewStockService(api, log), cfg.RequestTimeout),
		RequestTimeout: cfg.RequestTimeout,
		UpstreamState:  api.BreakerState,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "estoque-bff"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "api_base_url", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	stop()

	log.Info("server exited")
}
