package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/aura-funnel-backend/api/routes"
	"github.com/angelmondragon/aura-funnel-backend/internal/events"
	"github.com/angelmondragon/aura-funnel-backend/internal/ingest"
	"github.com/angelmondragon/aura-funnel-backend/internal/projection"
	"github.com/angelmondragon/aura-funnel-backend/internal/proxy"
	"github.com/angelmondragon/aura-funnel-backend/internal/status"
	"github.com/angelmondragon/aura-funnel-backend/internal/visitors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/config"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/metrics"
	"github.com/angelmondragon/aura-funnel-backend/pkg/migrate"
	"github.com/angelmondragon/aura-funnel-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional: without it the rate limiter disables itself and
	// the metrics snapshot is recomputed per request.
	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "redis unavailable, continuing without it")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(promRegistry)

	eventsRepo := events.NewRepository(dbClient.DB())

	ingestService, err := ingest.NewService(eventsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	projectionService, err := projection.NewService(eventsRepo, redisClient, cfg.Metrics.CacheTTL, webhookMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create projection service", err)
		os.Exit(1)
	}

	proxyService, err := proxy.NewService(cfg.Proxy)
	if err != nil {
		logg.Error(context.Background(), "failed to create proxy service", err)
		os.Exit(1)
	}

	statusService, err := status.NewService(status.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create status service", err)
		os.Exit(1)
	}

	visitorService, err := visitors.NewService(visitors.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create visitor service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			webhookMetrics,
			ingestService,
			projectionService,
			proxyService,
			statusService,
			visitorService,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
