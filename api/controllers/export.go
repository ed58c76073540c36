package controllers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/angelmondragon/aura-funnel-backend/api/responses"
	"github.com/angelmondragon/aura-funnel-backend/internal/projection"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
)

// ExportLeadsCSV streams the full lead table as a CSV attachment.
func ExportLeadsCSV(svc projection.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projection service unavailable"))
			return
		}

		// Buffer the export so a late store error still yields a clean
		// JSON error instead of a truncated download.
		var buf bytes.Buffer
		if err := svc.ExportLeadsCSV(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCSVAttachment(w, "leads.csv", buf.Bytes())
	}
}

// ExportPurchasesCSV streams the full purchase table as a CSV attachment.
func ExportPurchasesCSV(svc projection.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projection service unavailable"))
			return
		}

		var buf bytes.Buffer
		if err := svc.ExportPurchasesCSV(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCSVAttachment(w, "purchases.csv", buf.Bytes())
	}
}

func writeCSVAttachment(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
