package controllers

import (
	"net/http"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/api/validators"
	"github.com/angelmondragon/aura-funnel-backend/internal/status"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// StatusCreate appends a client-reported status check.
func StatusCreate(svc status.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status service unavailable"))
			return
		}

		var req status.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		check, err := svc.Create(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, check)
	}
}

// StatusList returns recent status checks, newest first.
func StatusList(svc status.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status service unavailable"))
			return
		}

		checks, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, checks)
	}
}
