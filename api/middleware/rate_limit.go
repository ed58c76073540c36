package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/pkg/clientip"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// RateLimiterStore is the counter surface the limiter needs from redis.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// WebhookRateLimitPolicy bounds per-IP webhook submissions in a fixed window.
type WebhookRateLimitPolicy struct {
	Window  time.Duration
	IPLimit int
}

func (p WebhookRateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.IPLimit > 0
}

// WebhookRateLimit throttles webhook ingestion per client IP. The limiter
// fails open: a redis outage must not drop lead traffic.
func WebhookRateLimit(policy WebhookRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientip.FromRequest(r)
			key := store.RateLimitKey(fmt.Sprintf("webhook:%s", ip))

			count, err := store.IncrWithTTL(ctx, key, policy.Window)
			if err != nil {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{"ip": ip, "error": err.Error()})
					logg.Warn(logCtx, "webhook.rate_limit.unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(policy.IPLimit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.IPLimit,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "webhook.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
