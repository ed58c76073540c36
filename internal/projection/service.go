// Package projection reads stored funnel events back out and shapes them for
// the admin dashboard: JSON list views, CSV exports and the aggregate metrics
// snapshot. It never writes to the store.
package projection

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/angelmondragon/aura-funnel-backend/internal/events"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	"github.com/angelmondragon/aura-funnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/metrics"
	"github.com/angelmondragon/aura-funnel-backend/pkg/redis"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

// metricsCacheKey names the cached snapshot entry in redis.
const metricsCacheKey = "dashboard_metrics"

// Quiz answers arrive keyed by question position. Later funnel revisions send
// named keys instead; a named key wins over its positional twin.
var quizFields = []struct {
	named      string
	positional string
}{
	{"business_type", "1"},
	{"main_cost", "3"},
	{"objective", "4"},
	{"ai_usage", "5"},
}

// Lead is the dashboard view of a stored lead event. Every optional tracking
// field is a pointer so absent values serialize as explicit JSON null.
type Lead struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Whatsapp     *string   `json:"whatsapp"`
	BusinessType *string   `json:"businessType"`
	MainCost     *string   `json:"mainCost"`
	Objective    *string   `json:"objective"`
	AIUsage      *string   `json:"aiUsage"`
	Stage        string    `json:"stage"`
	CreatedAt    time.Time `json:"createdAt"`
	IP           *string   `json:"ip"`
	UserAgent    *string   `json:"userAgent"`
	Referrer     *string   `json:"referrer"`
	CurrentURL   *string   `json:"currentUrl"`
	UTMSource    *string   `json:"utmSource"`
	UTMMedium    *string   `json:"utmMedium"`
	UTMCampaign  *string   `json:"utmCampaign"`
	UTMContent   *string   `json:"utmContent"`
	UTMTerm      *string   `json:"utmTerm"`
	Fbclid       *string   `json:"fbclid"`
	FBC          *string   `json:"_fbc"`
	FBP          *string   `json:"_fbp"`
	BucketID     *string   `json:"bucketId"`
}

// Purchase is the dashboard view of a stored purchase event.
type Purchase struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Whatsapp      *string   `json:"whatsapp"`
	BusinessType  *string   `json:"businessType"`
	MainCost      *string   `json:"mainCost"`
	Objective     *string   `json:"objective"`
	AIUsage       *string   `json:"aiUsage"`
	Stage         string    `json:"stage"`
	CreatedAt     time.Time `json:"createdAt"`
	TransactionID string    `json:"transactionId"`
	OrderID       *string   `json:"orderId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"paymentMethod"`
	IP            *string   `json:"ip"`
	UserAgent     *string   `json:"userAgent"`
	Referrer      *string   `json:"referrer"`
	CurrentURL    *string   `json:"currentUrl"`
	UTMSource     *string   `json:"utmSource"`
	UTMMedium     *string   `json:"utmMedium"`
	UTMCampaign   *string   `json:"utmCampaign"`
	UTMContent    *string   `json:"utmContent"`
	UTMTerm       *string   `json:"utmTerm"`
	Fbclid        *string   `json:"fbclid"`
	FBC           *string   `json:"_fbc"`
	FBP           *string   `json:"_fbp"`
}

// LeadList is the /leads response envelope. Error is populated instead of
// failing the request when the store read does not succeed.
type LeadList struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// PurchaseList is the /purchases response envelope.
type PurchaseList struct {
	Purchases []Purchase `json:"purchases"`
	Total     int        `json:"total"`
	Error     string     `json:"error,omitempty"`
}

// MetricsSnapshot is the dashboard aggregate view. leadsGenerated and
// purchases are real row counts; the remaining counters are estimates derived
// from them with fixed multipliers, not measured traffic.
type MetricsSnapshot struct {
	TotalVisitors   int     `json:"totalVisitors"`
	LeadsGenerated  int     `json:"leadsGenerated"`
	Purchases       int     `json:"purchases"`
	ConversionRate  float64 `json:"conversionRate"`
	QuizStarts      int     `json:"quizStarts"`
	QuizCompletions int     `json:"quizCompletions"`
	DiagnosisViewed int     `json:"diagnosisViewed"`
	CheckoutClicks  int     `json:"checkoutClicks"`
	Error           string  `json:"error,omitempty"`
}

// Service shapes stored events for the dashboard.
type Service interface {
	ListLeads(ctx context.Context) LeadList
	ListPurchases(ctx context.Context) PurchaseList
	Metrics(ctx context.Context) MetricsSnapshot
	ExportLeadsCSV(ctx context.Context, w io.Writer) error
	ExportPurchasesCSV(ctx context.Context, w io.Writer) error
}

type service struct {
	repo     events.Repository
	cache    *redis.Client
	cacheTTL time.Duration
	webhooks *metrics.WebhookMetrics
	logg     *logger.Logger
}

// NewService builds the projection service. cache may be nil, in which case
// the metrics snapshot is recomputed on every call.
func NewService(repo events.Repository, cache *redis.Client, cacheTTL time.Duration, webhooks *metrics.WebhookMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projection service requires an event repository")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projection service requires a logger")
	}
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		webhooks: webhooks,
		logg:     logg,
	}, nil
}

func (s *service) ListLeads(ctx context.Context) LeadList {
	rows, err := s.repo.ListLeads(ctx, events.DefaultListLimit)
	if err != nil {
		s.logg.Error(ctx, "listing leads failed", err)
		return LeadList{Leads: []Lead{}, Total: 0, Error: err.Error()}
	}
	leads := make([]Lead, 0, len(rows))
	for i := range rows {
		leads = append(leads, projectLead(&rows[i]))
	}
	return LeadList{Leads: leads, Total: len(leads)}
}

func (s *service) ListPurchases(ctx context.Context) PurchaseList {
	rows, err := s.repo.ListPurchases(ctx, events.DefaultListLimit)
	if err != nil {
		s.logg.Error(ctx, "listing purchases failed", err)
		return PurchaseList{Purchases: []Purchase{}, Total: 0, Error: err.Error()}
	}
	purchases := make([]Purchase, 0, len(rows))
	for i := range rows {
		purchases = append(purchases, projectPurchase(&rows[i]))
	}
	return PurchaseList{Purchases: purchases, Total: len(purchases)}
}

func (s *service) Metrics(ctx context.Context) MetricsSnapshot {
	if cached, ok := s.cachedSnapshot(ctx); ok {
		return cached
	}

	leads, err := s.repo.CountLeads(ctx)
	if err != nil {
		s.logg.Error(ctx, "counting leads failed", err)
		return MetricsSnapshot{Error: err.Error()}
	}
	purchases, err := s.repo.CountPurchases(ctx)
	if err != nil {
		s.logg.Error(ctx, "counting purchases failed", err)
		return MetricsSnapshot{Error: err.Error()}
	}

	snapshot := computeSnapshot(int(leads), int(purchases))
	s.storeSnapshot(ctx, snapshot)
	return snapshot
}

func (s *service) cachedSnapshot(ctx context.Context) (MetricsSnapshot, bool) {
	if s.cache == nil {
		return MetricsSnapshot{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(metricsCacheKey))
	if err != nil {
		if !redis.IsNil(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "metrics cache read failed")
		}
		return MetricsSnapshot{}, false
	}
	var snapshot MetricsSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "metrics cache entry corrupt")
		return MetricsSnapshot{}, false
	}
	return snapshot, true
}

func (s *service) storeSnapshot(ctx context.Context, snapshot MetricsSnapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(metricsCacheKey), raw, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "metrics cache write failed")
	}
}

// computeSnapshot derives the dashboard counters from the two row counts. The
// visitor, quiz and checkout figures are estimates scaled off lead volume.
func computeSnapshot(leads, purchases int) MetricsSnapshot {
	rate := 0.0
	if leads > 0 {
		rate = math.Round(float64(purchases)/float64(leads)*100*10) / 10
	}
	return MetricsSnapshot{
		TotalVisitors:   max(leads*3, 100),
		LeadsGenerated:  leads,
		Purchases:       purchases,
		ConversionRate:  rate,
		QuizStarts:      int(float64(leads) * 1.5),
		QuizCompletions: leads,
		DiagnosisViewed: int(float64(leads) * 0.8),
		CheckoutClicks:  int(float64(leads) * 0.4),
	}
}

func projectLead(row *models.LeadEvent) Lead {
	answers := quizAttributes(row.QuizAnswers)
	return Lead{
		ID:           row.SessionID,
		Name:         row.Name,
		Email:        row.Email,
		Whatsapp:     row.Whatsapp,
		BusinessType: answers[0],
		MainCost:     answers[1],
		Objective:    answers[2],
		AIUsage:      answers[3],
		Stage:        enums.StageLeadCapture.String(),
		CreatedAt:    row.Timestamp,
		IP:           nonEmpty(row.ClientIP),
		UserAgent:    row.UserAgent,
		Referrer:     row.Referrer,
		CurrentURL:   row.CurrentURL,
		UTMSource:    row.UTMSource,
		UTMMedium:    row.UTMMedium,
		UTMCampaign:  row.UTMCampaign,
		UTMContent:   row.UTMContent,
		UTMTerm:      row.UTMTerm,
		Fbclid:       row.Fbclid,
		FBC:          row.FBC,
		FBP:          row.FBP,
		BucketID:     row.BucketID,
	}
}

func projectPurchase(row *models.PurchaseEvent) Purchase {
	answers := quizAttributes(row.QuizAnswers)
	return Purchase{
		ID:            row.SessionID,
		Name:          row.Name,
		Email:         row.Email,
		Whatsapp:      row.Whatsapp,
		BusinessType:  answers[0],
		MainCost:      answers[1],
		Objective:     answers[2],
		AIUsage:       answers[3],
		Stage:         enums.StagePurchased.String(),
		CreatedAt:     row.Timestamp,
		TransactionID: row.TransactionID,
		OrderID:       row.OrderID,
		Amount:        row.Value,
		Currency:      row.Currency,
		PaymentMethod: row.PaymentMethod.String(),
		IP:            nonEmpty(row.ClientIP),
		UserAgent:     row.UserAgent,
		Referrer:      row.Referrer,
		CurrentURL:    row.CurrentURL,
		UTMSource:     row.UTMSource,
		UTMMedium:     row.UTMMedium,
		UTMCampaign:   row.UTMCampaign,
		UTMContent:    row.UTMContent,
		UTMTerm:       row.UTMTerm,
		Fbclid:        row.Fbclid,
		FBC:           row.FBC,
		FBP:           row.FBP,
	}
}

// quizAttributes resolves the four business attributes in quizFields order.
func quizAttributes(answers types.QuizAnswers) [4]*string {
	var out [4]*string
	for i, field := range quizFields {
		if v := answers.Get(field.named); v != "" {
			out[i] = &v
			continue
		}
		if v := answers.Get(field.positional); v != "" {
			out[i] = &v
		}
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
