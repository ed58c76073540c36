package projection

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
)

// naPlaceholder marks absent values in CSV output. CSV has no native null, so
// the export uses the same literal the dashboard always rendered.
const naPlaceholder = "N/A"

// csvStageLeadCapture is the human-readable stage label the dashboard prints
// for lead rows.
const csvStageLeadCapture = "Captura de Lead"

// leadCSVHeader is versioned: consumers parse by position, so columns are
// only ever appended, never reordered.
var leadCSVHeader = []string{
	"Name", "Email", "WhatsApp", "BusinessType", "MainCost", "Objective",
	"AIUsage", "Stage", "CreatedAt", "IP", "UserAgent", "SessionId",
	"Referrer", "CurrentUrl", "UtmSource", "UtmMedium", "UtmCampaign",
	"UtmContent", "UtmTerm", "fbclid", "_fbc", "_fbp", "TransactionId",
	"Value", "Currency", "FullTimestamp",
}

var purchaseCSVHeader = []string{
	"Name", "Email", "WhatsApp", "TransactionId", "Date", "Value", "Currency",
	"BusinessType", "MainCost", "Objective", "AIUsage", "IP", "UserAgent",
	"SessionId", "UtmSource", "UtmMedium", "UtmCampaign", "UtmContent",
	"UtmTerm", "fbclid", "_fbc", "_fbp", "Referrer", "CurrentUrl",
	"FullTimestamp",
}

// ExportLeadsCSV streams every stored lead, newest first, to w.
func (s *service) ExportLeadsCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.AllLeads(ctx)
	if err != nil {
		s.logg.Error(ctx, "exporting leads failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading leads for export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(leadCSVHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing lead export header")
	}
	for i := range rows {
		if err := cw.Write(leadCSVRow(&rows[i])); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing lead export row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing lead export")
	}

	s.webhooks.IncExport("leads")
	return nil
}

// ExportPurchasesCSV streams every stored purchase, newest first, to w.
func (s *service) ExportPurchasesCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.AllPurchases(ctx)
	if err != nil {
		s.logg.Error(ctx, "exporting purchases failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading purchases for export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(purchaseCSVHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing purchase export header")
	}
	for i := range rows {
		if err := cw.Write(purchaseCSVRow(&rows[i])); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing purchase export row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing purchase export")
	}

	s.webhooks.IncExport("purchases")
	return nil
}

func leadCSVRow(row *models.LeadEvent) []string {
	answers := quizAttributes(row.QuizAnswers)
	return []string{
		row.Name,
		row.Email,
		orNA(row.Whatsapp),
		orNA(answers[0]),
		orNA(answers[1]),
		orNA(answers[2]),
		orNA(answers[3]),
		csvStageLeadCapture,
		row.Timestamp.Format("2006-01-02"),
		stringOrNA(row.ClientIP),
		orNA(row.UserAgent),
		row.SessionID,
		orNA(row.Referrer),
		orNA(row.CurrentURL),
		orNA(row.UTMSource),
		orNA(row.UTMMedium),
		orNA(row.UTMCampaign),
		orNA(row.UTMContent),
		orNA(row.UTMTerm),
		orNA(row.Fbclid),
		orNA(row.FBC),
		orNA(row.FBP),
		naPlaceholder, // TransactionId: leads never carry one
		naPlaceholder, // Value
		naPlaceholder, // Currency
		row.Timestamp.Format(time.RFC3339),
	}
}

func purchaseCSVRow(row *models.PurchaseEvent) []string {
	answers := quizAttributes(row.QuizAnswers)
	return []string{
		row.Name,
		row.Email,
		orNA(row.Whatsapp),
		stringOrNA(row.TransactionID),
		row.Timestamp.Format("2006-01-02"),
		strconv.FormatFloat(row.Value, 'f', 2, 64),
		stringOrNA(row.Currency),
		orNA(answers[0]),
		orNA(answers[1]),
		orNA(answers[2]),
		orNA(answers[3]),
		stringOrNA(row.ClientIP),
		orNA(row.UserAgent),
		row.SessionID,
		orNA(row.UTMSource),
		orNA(row.UTMMedium),
		orNA(row.UTMCampaign),
		orNA(row.UTMContent),
		orNA(row.UTMTerm),
		orNA(row.Fbclid),
		orNA(row.FBC),
		orNA(row.FBP),
		orNA(row.Referrer),
		orNA(row.CurrentURL),
		row.Timestamp.Format(time.RFC3339),
	}
}

func orNA(value *string) string {
	if value == nil || *value == "" {
		return naPlaceholder
	}
	return *value
}

func stringOrNA(value string) string {
	if value == "" {
		return naPlaceholder
	}
	return value
}
