package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/api/validators"
	"github.com/angelmondragon/aura-funnel-backend/internal/ingest"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/metrics"
)

// maxWebhookBody caps webhook payload reads. Funnel payloads are a few KB;
// anything beyond a megabyte is garbage.
const maxWebhookBody = 1 << 20

// LeadCaptureWebhook ingests InitiateCheckout events from the quiz funnel.
func LeadCaptureWebhook(svc ingest.Service, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteWebhookError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingest service unavailable"))
			return
		}

		start := time.Now()

		raw, err := validators.ReadBody(r, maxWebhookBody)
		if err != nil {
			wm.IncIngest("InitiateCheckout", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		payload, err := ingest.ParseLeadPayload(raw)
		if err != nil {
			wm.IncIngest("InitiateCheckout", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		data, err := svc.IngestLead(ctx, payload, ingest.RequestMeta{
			RemoteAddr: r.RemoteAddr,
			Header:     r.Header,
		})
		if err != nil {
			wm.IncIngest("InitiateCheckout", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		wm.IncIngest("InitiateCheckout", "ok")
		wm.ObserveIngestDuration("InitiateCheckout", time.Since(start))

		if logg != nil {
			logg.Info(logg.WithField(ctx, "email", data.Email), "webhook.lead_capture.stored")
		}
		responses.WriteWebhookSuccess(w, "Lead capture webhook processed successfully", data)
	}
}

// PurchaseWebhook ingests purchase confirmations from the payment provider.
func PurchaseWebhook(svc ingest.Service, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteWebhookError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingest service unavailable"))
			return
		}

		start := time.Now()

		raw, err := validators.ReadBody(r, maxWebhookBody)
		if err != nil {
			wm.IncIngest("Purchase", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		payload, err := ingest.ParsePurchasePayload(raw)
		if err != nil {
			wm.IncIngest("Purchase", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		data, err := svc.IngestPurchase(ctx, payload, ingest.RequestMeta{
			RemoteAddr: r.RemoteAddr,
			Header:     r.Header,
		})
		if err != nil {
			wm.IncIngest("Purchase", "error")
			responses.WriteWebhookError(ctx, logg, w, err)
			return
		}

		wm.IncIngest("Purchase", "ok")
		wm.ObserveIngestDuration("Purchase", time.Since(start))

		if logg != nil {
			fields := map[string]any{"email": data.Email}
			if data.TransactionID != nil {
				fields["transaction_id"] = *data.TransactionID
			}
			logg.Info(logg.WithFields(ctx, fields), "webhook.purchase.stored")
		}
		responses.WriteWebhookSuccess(w, "Purchase webhook processed successfully", data)
	}
}
