package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

// RequestMeta carries the connection-level context the normalizer enriches
// records with. The payload itself never supplies these.
type RequestMeta struct {
	RemoteAddr string
	Header     http.Header
}

// LeadPayload is the client-submitted lead-capture webhook body. Field names
// follow the current funnel generation; ParseLeadPayload also absorbs the
// snake_case variants older generations sent.
type LeadPayload struct {
	Name        string         `json:"name" validate:"required"`
	Email       string         `json:"email" validate:"required"`
	Whatsapp    *string        `json:"whatsapp"`
	UserAgent   *string        `json:"userAgent"`
	Fbclid      *string        `json:"fbclid"`
	FBC         *string        `json:"_fbc"`
	FBP         *string        `json:"_fbp"`
	UTMSource   *string        `json:"utmSource"`
	UTMMedium   *string        `json:"utmMedium"`
	UTMCampaign *string        `json:"utmCampaign"`
	UTMContent  *string        `json:"utmContent"`
	UTMTerm     *string        `json:"utmTerm"`
	Referrer    *string        `json:"referrer"`
	CurrentURL  *string        `json:"currentUrl"`
	QuizAnswers map[string]any `json:"quizAnswers"`
	BucketID    *string        `json:"bucketId"`
	EventType   string         `json:"eventType"`
	Value       *float64       `json:"value"`
	Currency    string         `json:"currency"`
}

// PurchasePayload is the purchase-confirmation webhook body.
type PurchasePayload struct {
	Name          string         `json:"name" validate:"required"`
	Email         string         `json:"email" validate:"required"`
	Whatsapp      *string        `json:"whatsapp"`
	TransactionID string         `json:"transactionId" validate:"required"`
	OrderID       *string        `json:"orderId"`
	UserAgent     *string        `json:"userAgent"`
	Fbclid        *string        `json:"fbclid"`
	FBC           *string        `json:"_fbc"`
	FBP           *string        `json:"_fbp"`
	UTMSource     *string        `json:"utmSource"`
	UTMMedium     *string        `json:"utmMedium"`
	UTMCampaign   *string        `json:"utmCampaign"`
	UTMContent    *string        `json:"utmContent"`
	UTMTerm       *string        `json:"utmTerm"`
	Referrer      *string        `json:"referrer"`
	CurrentURL    *string        `json:"currentUrl"`
	QuizAnswers   map[string]any `json:"quizAnswers"`
	EventType     string         `json:"eventType"`
	Value         *float64       `json:"value"`
	Currency      string         `json:"currency"`
	PaymentMethod string         `json:"paymentMethod"`
}

// leadAliases holds the snake_case field names of the earlier storage schema
// generations. Alias values only fill fields the canonical body left empty.
type leadAliases struct {
	UserAgent   *string        `json:"user_agent"`
	UTMSource   *string        `json:"utm_source"`
	UTMMedium   *string        `json:"utm_medium"`
	UTMCampaign *string        `json:"utm_campaign"`
	UTMContent  *string        `json:"utm_content"`
	UTMTerm     *string        `json:"utm_term"`
	CurrentURL  *string        `json:"current_url"`
	QuizAnswers map[string]any `json:"quiz_answers"`
	BucketID    *string        `json:"bucket_id"`
	EventType   string         `json:"event_type"`
	OrderID     *string        `json:"order_id"`
	Transaction string         `json:"transaction_id"`
	Payment     string         `json:"payment_method"`
}

// ParseLeadPayload decodes a lead webhook body, merging legacy field names.
func ParseLeadPayload(raw []byte) (LeadPayload, error) {
	var payload LeadPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}

	var aliases leadAliases
	if err := json.Unmarshal(raw, &aliases); err == nil {
		mergeLeadAliases(&payload, aliases)
	}
	return payload, nil
}

// ParsePurchasePayload decodes a purchase webhook body, merging legacy field names.
func ParsePurchasePayload(raw []byte) (PurchasePayload, error) {
	var payload PurchasePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}

	var aliases leadAliases
	if err := json.Unmarshal(raw, &aliases); err == nil {
		mergePurchaseAliases(&payload, aliases)
	}
	return payload, nil
}

func mergeLeadAliases(payload *LeadPayload, aliases leadAliases) {
	if payload.UserAgent == nil {
		payload.UserAgent = aliases.UserAgent
	}
	if payload.UTMSource == nil {
		payload.UTMSource = aliases.UTMSource
	}
	if payload.UTMMedium == nil {
		payload.UTMMedium = aliases.UTMMedium
	}
	if payload.UTMCampaign == nil {
		payload.UTMCampaign = aliases.UTMCampaign
	}
	if payload.UTMContent == nil {
		payload.UTMContent = aliases.UTMContent
	}
	if payload.UTMTerm == nil {
		payload.UTMTerm = aliases.UTMTerm
	}
	if payload.CurrentURL == nil {
		payload.CurrentURL = aliases.CurrentURL
	}
	if payload.QuizAnswers == nil {
		payload.QuizAnswers = aliases.QuizAnswers
	}
	if payload.BucketID == nil {
		payload.BucketID = aliases.BucketID
	}
	if payload.EventType == "" {
		payload.EventType = aliases.EventType
	}
}

func mergePurchaseAliases(payload *PurchasePayload, aliases leadAliases) {
	if payload.UserAgent == nil {
		payload.UserAgent = aliases.UserAgent
	}
	if payload.UTMSource == nil {
		payload.UTMSource = aliases.UTMSource
	}
	if payload.UTMMedium == nil {
		payload.UTMMedium = aliases.UTMMedium
	}
	if payload.UTMCampaign == nil {
		payload.UTMCampaign = aliases.UTMCampaign
	}
	if payload.UTMContent == nil {
		payload.UTMContent = aliases.UTMContent
	}
	if payload.UTMTerm == nil {
		payload.UTMTerm = aliases.UTMTerm
	}
	if payload.CurrentURL == nil {
		payload.CurrentURL = aliases.CurrentURL
	}
	if payload.QuizAnswers == nil {
		payload.QuizAnswers = aliases.QuizAnswers
	}
	if payload.EventType == "" {
		payload.EventType = aliases.EventType
	}
	if payload.TransactionID == "" {
		payload.TransactionID = aliases.Transaction
	}
	if payload.OrderID == nil {
		payload.OrderID = aliases.OrderID
	}
	if payload.PaymentMethod == "" {
		payload.PaymentMethod = aliases.Payment
	}
}

// canonicalAnswers coerces the opaque quiz mapping to strings for storage.
func canonicalAnswers(answers map[string]any) types.QuizAnswers {
	if answers == nil {
		return nil
	}
	out := make(types.QuizAnswers, len(answers))
	for key, value := range answers {
		out[key] = stringifyAnswer(value)
	}
	return out
}

func stringifyAnswer(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
