package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/aura-funnel-backend/api/controllers"
	"github.com/angelmondragon/aura-funnel-backend/api/middleware"
	"github.com/angelmondragon/aura-funnel-backend/internal/ingest"
	"github.com/angelmondragon/aura-funnel-backend/internal/projection"
	"github.com/angelmondragon/aura-funnel-backend/internal/proxy"
	"github.com/angelmondragon/aura-funnel-backend/internal/status"
	"github.com/angelmondragon/aura-funnel-backend/internal/visitors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/config"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/metrics"
	"github.com/angelmondragon/aura-funnel-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	webhookMetrics *metrics.WebhookMetrics,
	ingestService ingest.Service,
	projectionService projection.Service,
	proxyService proxy.Service,
	statusService status.Service,
	visitorService visitors.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.Origins),
	)

	webhookPolicy := middleware.WebhookRateLimitPolicy{
		Window:  cfg.Webhook.RateLimitWindow,
		IPLimit: cfg.Webhook.RateLimitPerIP,
	}
	var limiterStore middleware.RateLimiterStore
	var redisPing redis.Pinger
	if redisClient != nil {
		limiterStore = redisClient
		redisPing = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisPing, logg))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/internal/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/webhooks", func(r chi.Router) {
			r.Use(middleware.WebhookRateLimit(webhookPolicy, limiterStore, logg))
			r.Post("/lead-capture", controllers.LeadCaptureWebhook(ingestService, webhookMetrics, logg))
			r.Post("/purchase", controllers.PurchaseWebhook(ingestService, webhookMetrics, logg))
		})

		r.Get("/leads", controllers.Leads(projectionService, logg))
		r.Get("/purchases", controllers.Purchases(projectionService, logg))
		r.Get("/metrics", controllers.DashboardMetrics(projectionService, logg))
		r.Get("/export-leads-csv", controllers.ExportLeadsCSV(projectionService, logg))
		r.Get("/export-purchases-csv", controllers.ExportPurchasesCSV(projectionService, logg))
		r.Get("/get-client-ip", controllers.ClientIP())

		r.Post("/send-webhook", controllers.SendWebhook(proxyService, logg))
		r.Post("/track-visitor", controllers.TrackVisitor(visitorService, logg))

		r.Post("/status", controllers.StatusCreate(statusService, logg))
		r.Get("/status", controllers.StatusList(statusService, logg))
	})

	return r
}
