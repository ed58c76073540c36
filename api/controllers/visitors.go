package controllers

import (
	"net/http"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/api/validators"
	"github.com/angelmondragon/aura-funnel-backend/internal/visitors"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// TrackVisitor upserts a funnel browsing session keyed by the frontend's
// session cookie.
func TrackVisitor(svc visitors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "visitor service unavailable"))
			return
		}

		var req visitors.TrackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Track(r.Context(), req, visitors.RequestMeta{
			RemoteAddr: r.RemoteAddr,
			Header:     r.Header,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithSessionID(r.Context(), result.SessionID), "visitor.tracked")
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
