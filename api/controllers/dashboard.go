package controllers

import (
	"net/http"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/internal/projection"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// Leads lists the 100 most recent lead events for the admin panel. Store
// failures degrade to an empty list inside the envelope, never a hard error.
func Leads(svc projection.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projection service unavailable"))
			return
		}
		responses.WriteJSON(w, http.StatusOK, svc.ListLeads(r.Context()))
	}
}

// Purchases lists the 100 most recent purchase events.
func Purchases(svc projection.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projection service unavailable"))
			return
		}
		responses.WriteJSON(w, http.StatusOK, svc.ListPurchases(r.Context()))
	}
}

// DashboardMetrics serves the aggregate snapshot the admin dashboard renders.
func DashboardMetrics(svc projection.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projection service unavailable"))
			return
		}
		responses.WriteJSON(w, http.StatusOK, svc.Metrics(r.Context()))
	}
}
