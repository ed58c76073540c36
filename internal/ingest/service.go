// Package ingest normalizes client-submitted webhook payloads into canonical
// stored records: it validates required fields, assigns the server-owned
// sessionId/timestamp/clientIP, and appends exactly one record per call.
package ingest

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/aura-funnel-backend/internal/events"
	"github.com/angelmondragon/aura-funnel-backend/pkg/clientip"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	"github.com/angelmondragon/aura-funnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

const (
	defaultValue    = 15.0
	defaultCurrency = "USD"
)

// Service is the ingestion normalizer.
type Service interface {
	IngestLead(ctx context.Context, payload LeadPayload, meta RequestMeta) (*types.WebhookAckData, error)
	IngestPurchase(ctx context.Context, payload PurchasePayload, meta RequestMeta) (*types.WebhookAckData, error)
}

type service struct {
	repo     events.Repository
	validate *validator.Validate
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewService wires the normalizer against the record store.
func NewService(repo events.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events repository required")
	}
	return &service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}, nil
}

func (s *service) IngestLead(ctx context.Context, payload LeadPayload, meta RequestMeta) (*types.WebhookAckData, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing required lead fields")
	}

	eventType := enums.EventType(payload.EventType)
	if eventType == "" {
		eventType = enums.EventTypeInitiateCheckout
	}

	// Server owns identity and time; client-supplied values are ignored.
	record := &models.LeadEvent{
		ID:          s.newID(),
		SessionID:   s.newID().String(),
		Name:        payload.Name,
		Email:       payload.Email,
		Whatsapp:    payload.Whatsapp,
		UserAgent:   payload.UserAgent,
		Fbclid:      payload.Fbclid,
		FBC:         payload.FBC,
		FBP:         payload.FBP,
		UTMSource:   payload.UTMSource,
		UTMMedium:   payload.UTMMedium,
		UTMCampaign: payload.UTMCampaign,
		UTMContent:  payload.UTMContent,
		UTMTerm:     payload.UTMTerm,
		Referrer:    payload.Referrer,
		CurrentURL:  payload.CurrentURL,
		QuizAnswers: canonicalAnswers(payload.QuizAnswers),
		BucketID:    payload.BucketID,
		EventType:   eventType,
		Value:       valueOrDefault(payload.Value),
		Currency:    currencyOrDefault(payload.Currency),
		ClientIP:    clientip.Resolve(meta.RemoteAddr, meta.Header),
		Timestamp:   s.now(),
	}

	if err := s.repo.InsertLead(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert lead event")
	}

	return &types.WebhookAckData{
		Email:     record.Email,
		EventType: record.EventType.String(),
		ClientIP:  record.ClientIP,
	}, nil
}

func (s *service) IngestPurchase(ctx context.Context, payload PurchasePayload, meta RequestMeta) (*types.WebhookAckData, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing required purchase fields")
	}

	eventType := enums.EventType(payload.EventType)
	if eventType == "" {
		eventType = enums.EventTypePurchase
	}
	paymentMethod := enums.PaymentMethod(payload.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = enums.PaymentMethodHotmart
	}

	record := &models.PurchaseEvent{
		ID:            s.newID(),
		SessionID:     s.newID().String(),
		Name:          payload.Name,
		Email:         payload.Email,
		Whatsapp:      payload.Whatsapp,
		TransactionID: payload.TransactionID,
		OrderID:       payload.OrderID,
		UserAgent:     payload.UserAgent,
		Fbclid:        payload.Fbclid,
		FBC:           payload.FBC,
		FBP:           payload.FBP,
		UTMSource:     payload.UTMSource,
		UTMMedium:     payload.UTMMedium,
		UTMCampaign:   payload.UTMCampaign,
		UTMContent:    payload.UTMContent,
		UTMTerm:       payload.UTMTerm,
		Referrer:      payload.Referrer,
		CurrentURL:    payload.CurrentURL,
		QuizAnswers:   canonicalAnswers(payload.QuizAnswers),
		EventType:     eventType,
		Value:         valueOrDefault(payload.Value),
		Currency:      currencyOrDefault(payload.Currency),
		PaymentMethod: paymentMethod,
		ClientIP:      clientip.Resolve(meta.RemoteAddr, meta.Header),
		Timestamp:     s.now(),
	}

	if err := s.repo.InsertPurchase(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert purchase event")
	}

	txn := record.TransactionID
	return &types.WebhookAckData{
		Email:         record.Email,
		EventType:     record.EventType.String(),
		ClientIP:      record.ClientIP,
		TransactionID: &txn,
	}, nil
}

func valueOrDefault(value *float64) float64 {
	if value == nil {
		return defaultValue
	}
	return *value
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return defaultCurrency
	}
	return currency
}
