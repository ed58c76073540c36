package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records operational counters for the ingestion pipeline.
// These are process metrics, not the dashboard's business snapshot.
type WebhookMetrics struct {
	ingests  *prometheus.CounterVec
	exports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	ingests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_ingest_total",
		Help: "Webhook ingestion attempts by event type and outcome.",
	}, []string{"event_type", "outcome"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csv_export_total",
		Help: "CSV export downloads by collection.",
	}, []string{"collection"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_ingest_duration_seconds",
		Help:    "Duration of webhook ingestion in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(ingests, exports, duration)
	return &WebhookMetrics{
		ingests:  ingests,
		exports:  exports,
		duration: duration,
	}
}

// IncIngest counts one ingestion attempt for the given event type and outcome.
func (m *WebhookMetrics) IncIngest(eventType, outcome string) {
	if m == nil || m.ingests == nil {
		return
	}
	m.ingests.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncExport counts one CSV download for the named collection.
func (m *WebhookMetrics) IncExport(collection string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(collection)).Inc()
}

// ObserveIngestDuration records how long an ingestion took.
func (m *WebhookMetrics) ObserveIngestDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
