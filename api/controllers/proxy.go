package controllers

import (
	"net/http"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/api/validators"
	"github.com/angelmondragon/aura-funnel-backend/internal/proxy"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// SendWebhook relays a payload to a caller-supplied third-party endpoint.
// Upstream failures answer with the success:false flag like the ingestion
// webhooks, carrying the truncated upstream body for diagnostics.
func SendWebhook(svc proxy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteWebhookError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proxy service unavailable"))
			return
		}

		var req proxy.ForwardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		result, err := svc.Forward(ctx, req)
		if err != nil {
			if logg != nil && result != nil {
				logCtx := logg.WithFields(ctx, map[string]any{
					"upstream_status": result.StatusCode,
					"upstream_body":   result.Body,
				})
				logg.Warn(logCtx, "proxy.upstream_failed")
			}
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		responses.WriteWebhookSuccess(w, "Webhook forwarded successfully", result)
	}
}
