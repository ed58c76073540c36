package controllers

import (
	"net/http"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/pkg/clientip"
)

// ClientIP echoes the IP the server would attribute to this request. The
// funnel frontend calls it once per session for tracking parity.
func ClientIP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"ip": clientip.FromRequest(r),
		})
	}
}
