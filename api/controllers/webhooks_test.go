package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aura-funnel-backend/internal/ingest"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
	"github.com/angelmondragon/aura-funnel-backend/pkg/logger"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

type stubIngestService struct {
	leadFn     func(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error)
	purchaseFn func(ctx context.Context, payload ingest.PurchasePayload, meta ingest.RequestMeta) (*types.WebhookAckData, error)
}

func (s *stubIngestService) IngestLead(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
	return s.leadFn(ctx, payload, meta)
}

func (s *stubIngestService) IngestPurchase(ctx context.Context, payload ingest.PurchasePayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
	return s.purchaseFn(ctx, payload, meta)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestLeadCaptureWebhookSuccess(t *testing.T) {
	svc := &stubIngestService{
		leadFn: func(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
			assert.Equal(t, "Maria", payload.Name)
			assert.Equal(t, "10.0.0.1:42000", meta.RemoteAddr)
			return &types.WebhookAckData{
				Email:     payload.Email,
				EventType: "InitiateCheckout",
				ClientIP:  "203.0.113.5",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lead-capture",
		strings.NewReader(`{"name":"Maria","email":"maria@example.com"}`))
	req.RemoteAddr = "10.0.0.1:42000"
	rec := httptest.NewRecorder()

	LeadCaptureWebhook(svc, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body types.WebhookSuccess
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "Lead capture webhook processed successfully", body.Message)
}

func TestLeadCaptureWebhookValidationFailureStillHTTP200(t *testing.T) {
	svc := &stubIngestService{
		leadFn: func(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lead payload")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lead-capture",
		strings.NewReader(`{"name":"No Email"}`))
	rec := httptest.NewRecorder()

	LeadCaptureWebhook(svc, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body types.WebhookFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "invalid lead payload", body.Error)
}

func TestLeadCaptureWebhookStoreFailureStillHTTP200(t *testing.T) {
	svc := &stubIngestService{
		leadFn: func(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "inserting lead")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lead-capture",
		strings.NewReader(`{"name":"Maria","email":"maria@example.com"}`))
	rec := httptest.NewRecorder()

	LeadCaptureWebhook(svc, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body types.WebhookFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotContains(t, body.Error, "connection refused", "internal detail must not leak")
}

func TestLeadCaptureWebhookMalformedJSON(t *testing.T) {
	svc := &stubIngestService{
		leadFn: func(ctx context.Context, payload ingest.LeadPayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
			t.Fatal("service must not be called for malformed bodies")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lead-capture", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	LeadCaptureWebhook(svc, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body types.WebhookFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
}

func TestPurchaseWebhookSuccessIncludesTransactionID(t *testing.T) {
	txID := "HP-123"
	svc := &stubIngestService{
		purchaseFn: func(ctx context.Context, payload ingest.PurchasePayload, meta ingest.RequestMeta) (*types.WebhookAckData, error) {
			return &types.WebhookAckData{
				Email:         payload.Email,
				EventType:     "Purchase",
				ClientIP:      "192.0.2.7",
				TransactionID: &txID,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/purchase",
		strings.NewReader(`{"name":"Buyer","email":"buyer@example.com","transactionId":"HP-123"}`))
	rec := httptest.NewRecorder()

	PurchaseWebhook(svc, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                `json:"success"`
		Data    types.WebhookAckData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Data.TransactionID)
	assert.Equal(t, "HP-123", *body.Data.TransactionID)
}

func TestWebhookHandlersGuardNilService(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lead-capture", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	LeadCaptureWebhook(nil, nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body types.WebhookFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
}
