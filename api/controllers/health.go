package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/pkg/config"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aura-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports the combined outcome. Redis
// is optional, so a nil pinger is skipped rather than failed.
func HealthReady(cfg *config.Config, dbPing db.Pinger, redisPing redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aura-Env", cfg.App.Env)

		var combined error
		if dbPing != nil {
			if err := dbPing.Ping(r.Context()); err != nil {
				combined = multierr.Append(combined, err)
			}
		}
		if redisPing != nil {
			if err := redisPing.Ping(r.Context()); err != nil {
				combined = multierr.Append(combined, err)
			}
		}

		if combined != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
