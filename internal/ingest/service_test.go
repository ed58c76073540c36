package ingest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/internal/events"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	"github.com/angelmondragon/aura-funnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
)

type fakeRepository struct {
	insertLeadFn     func(ctx context.Context, lead *models.LeadEvent) error
	insertPurchaseFn func(ctx context.Context, purchase *models.PurchaseEvent) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) events.Repository { return f }

func (f *fakeRepository) InsertLead(ctx context.Context, lead *models.LeadEvent) error {
	if f.insertLeadFn != nil {
		return f.insertLeadFn(ctx, lead)
	}
	return nil
}

func (f *fakeRepository) InsertPurchase(ctx context.Context, purchase *models.PurchaseEvent) error {
	if f.insertPurchaseFn != nil {
		return f.insertPurchaseFn(ctx, purchase)
	}
	return nil
}

func (f *fakeRepository) ListLeads(ctx context.Context, limit int) ([]models.LeadEvent, error) {
	return nil, nil
}

func (f *fakeRepository) ListPurchases(ctx context.Context, limit int) ([]models.PurchaseEvent, error) {
	return nil, nil
}

func (f *fakeRepository) AllLeads(ctx context.Context) ([]models.LeadEvent, error) {
	return nil, nil
}

func (f *fakeRepository) AllPurchases(ctx context.Context) ([]models.PurchaseEvent, error) {
	return nil, nil
}

func (f *fakeRepository) CountLeads(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeRepository) CountPurchases(ctx context.Context) (int64, error) { return 0, nil }

func newTestService(repo events.Repository) *service {
	return &service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC) },
		newID:    uuid.New,
	}
}

func strp(s string) *string { return &s }

func TestIngestLeadStoresCanonicalRecord(t *testing.T) {
	var stored *models.LeadEvent
	repo := &fakeRepository{
		insertLeadFn: func(ctx context.Context, lead *models.LeadEvent) error {
			stored = lead
			return nil
		},
	}
	svc := newTestService(repo)

	header := http.Header{}
	header.Set("X-Forwarded-For", "203.0.113.5, 70.41.3.18")

	payload := LeadPayload{
		Name:        "Maria",
		Email:       "maria@example.com",
		UTMSource:   strp("instagram"),
		QuizAnswers: map[string]any{"1": "marca-emergente", "3": "produccion"},
	}

	ack, err := svc.IngestLead(context.Background(), payload, RequestMeta{
		RemoteAddr: "10.0.0.1:42000",
		Header:     header,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "maria@example.com", ack.Email)
	assert.Equal(t, "InitiateCheckout", ack.EventType)
	assert.Equal(t, "203.0.113.5", ack.ClientIP)
	assert.Nil(t, ack.TransactionID)

	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.NotEmpty(t, stored.SessionID)
	assert.Equal(t, enums.EventTypeInitiateCheckout, stored.EventType)
	assert.Equal(t, 15.0, stored.Value)
	assert.Equal(t, "USD", stored.Currency)
	assert.Equal(t, "203.0.113.5", stored.ClientIP)
	assert.Equal(t, time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC), stored.Timestamp)
	assert.Equal(t, "marca-emergente", stored.QuizAnswers.Get("1"))
	assert.Nil(t, stored.Whatsapp)
}

func TestIngestLeadRealIPWins(t *testing.T) {
	var stored *models.LeadEvent
	repo := &fakeRepository{
		insertLeadFn: func(ctx context.Context, lead *models.LeadEvent) error {
			stored = lead
			return nil
		},
	}
	svc := newTestService(repo)

	header := http.Header{}
	header.Set("X-Forwarded-For", "203.0.113.5, 70.41.3.18")
	header.Set("X-Real-IP", "198.51.100.9")

	_, err := svc.IngestLead(context.Background(), LeadPayload{Name: "A", Email: "a@b.c"}, RequestMeta{
		RemoteAddr: "10.0.0.1:42000",
		Header:     header,
	})
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.9", stored.ClientIP)
}

func TestIngestLeadValidationFailure(t *testing.T) {
	inserted := false
	repo := &fakeRepository{
		insertLeadFn: func(ctx context.Context, lead *models.LeadEvent) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.IngestLead(context.Background(), LeadPayload{Name: "No Email"}, RequestMeta{RemoteAddr: "10.0.0.1:1"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.False(t, inserted, "validation failures must not write")
}

func TestIngestLeadStoreFailure(t *testing.T) {
	repo := &fakeRepository{
		insertLeadFn: func(ctx context.Context, lead *models.LeadEvent) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(repo)

	_, err := svc.IngestLead(context.Background(), LeadPayload{Name: "A", Email: "a@b.c"}, RequestMeta{RemoteAddr: "10.0.0.1:1"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestIngestPurchaseRequiresTransactionID(t *testing.T) {
	svc := newTestService(&fakeRepository{})

	_, err := svc.IngestPurchase(context.Background(), PurchasePayload{
		Name:  "Buyer",
		Email: "buyer@example.com",
	}, RequestMeta{RemoteAddr: "10.0.0.1:1"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestIngestPurchaseDefaultsAndAck(t *testing.T) {
	var stored *models.PurchaseEvent
	repo := &fakeRepository{
		insertPurchaseFn: func(ctx context.Context, purchase *models.PurchaseEvent) error {
			stored = purchase
			return nil
		},
	}
	svc := newTestService(repo)

	ack, err := svc.IngestPurchase(context.Background(), PurchasePayload{
		Name:          "Buyer",
		Email:         "buyer@example.com",
		TransactionID: "HP-123",
	}, RequestMeta{RemoteAddr: "192.0.2.7:55000"})
	require.NoError(t, err)

	require.NotNil(t, ack.TransactionID)
	assert.Equal(t, "HP-123", *ack.TransactionID)
	assert.Equal(t, "Purchase", ack.EventType)
	assert.Equal(t, "192.0.2.7", ack.ClientIP)

	assert.Equal(t, enums.EventTypePurchase, stored.EventType)
	assert.Equal(t, enums.PaymentMethodHotmart, stored.PaymentMethod)
	assert.Equal(t, 15.0, stored.Value)
	assert.Equal(t, "USD", stored.Currency)
}

func TestParseLeadPayloadMergesLegacyAliases(t *testing.T) {
	raw := []byte(`{
		"name": "Maria",
		"email": "maria@example.com",
		"utm_source": "facebook",
		"utm_campaign": "launch",
		"user_agent": "Mozilla/5.0",
		"current_url": "https://funnel.example.com/quiz",
		"quiz_answers": {"1": "marca-emergente", "5": 3}
	}`)

	payload, err := ParseLeadPayload(raw)
	require.NoError(t, err)

	require.NotNil(t, payload.UTMSource)
	assert.Equal(t, "facebook", *payload.UTMSource)
	require.NotNil(t, payload.UTMCampaign)
	assert.Equal(t, "launch", *payload.UTMCampaign)
	require.NotNil(t, payload.CurrentURL)
	assert.Equal(t, "https://funnel.example.com/quiz", *payload.CurrentURL)

	answers := canonicalAnswers(payload.QuizAnswers)
	assert.Equal(t, "marca-emergente", answers.Get("1"))
	assert.Equal(t, "3", answers.Get("5"))
}

func TestParseLeadPayloadCanonicalWinsOverAlias(t *testing.T) {
	raw := []byte(`{
		"name": "Maria",
		"email": "maria@example.com",
		"utmSource": "instagram",
		"utm_source": "facebook"
	}`)

	payload, err := ParseLeadPayload(raw)
	require.NoError(t, err)
	require.NotNil(t, payload.UTMSource)
	assert.Equal(t, "instagram", *payload.UTMSource)
}

func TestParsePurchasePayloadLegacyTransactionField(t *testing.T) {
	raw := []byte(`{
		"name": "Buyer",
		"email": "buyer@example.com",
		"transaction_id": "HP-999",
		"payment_method": "stripe"
	}`)

	payload, err := ParsePurchasePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "HP-999", payload.TransactionID)
	assert.Equal(t, "stripe", payload.PaymentMethod)
}
