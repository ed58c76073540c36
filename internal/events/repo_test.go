package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	"github.com/angelmondragon/aura-funnel-backend/pkg/enums"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

func setupEventsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	leads := `
CREATE TABLE IF NOT EXISTS lead_webhooks (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  whatsapp TEXT,
  user_agent TEXT,
  fbclid TEXT,
  fbc TEXT,
  fbp TEXT,
  utm_source TEXT,
  utm_medium TEXT,
  utm_campaign TEXT,
  utm_content TEXT,
  utm_term TEXT,
  referrer TEXT,
  current_url TEXT,
  quiz_answers TEXT,
  bucket_id TEXT,
  event_type TEXT NOT NULL,
  value REAL NOT NULL,
  currency TEXT NOT NULL,
  client_ip TEXT NOT NULL,
  timestamp DATETIME NOT NULL
);`
	purchases := `
CREATE TABLE IF NOT EXISTS purchase_webhooks (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  whatsapp TEXT,
  transaction_id TEXT NOT NULL,
  order_id TEXT,
  user_agent TEXT,
  fbclid TEXT,
  fbc TEXT,
  fbp TEXT,
  utm_source TEXT,
  utm_medium TEXT,
  utm_campaign TEXT,
  utm_content TEXT,
  utm_term TEXT,
  referrer TEXT,
  current_url TEXT,
  quiz_answers TEXT,
  event_type TEXT NOT NULL,
  value REAL NOT NULL,
  currency TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  client_ip TEXT NOT NULL,
  timestamp DATETIME NOT NULL
);`
	require.NoError(t, db.Exec(leads).Error)
	require.NoError(t, db.Exec(purchases).Error)
	return db
}

func newLead(email string, ts time.Time) *models.LeadEvent {
	return &models.LeadEvent{
		ID:        uuid.New(),
		SessionID: uuid.NewString(),
		Name:      "Test Lead",
		Email:     email,
		EventType: enums.EventTypeInitiateCheckout,
		Value:     15.0,
		Currency:  "USD",
		ClientIP:  "203.0.113.5",
		Timestamp: ts,
	}
}

func newPurchase(email, txn string, ts time.Time) *models.PurchaseEvent {
	return &models.PurchaseEvent{
		ID:            uuid.New(),
		SessionID:     uuid.NewString(),
		Name:          "Test Buyer",
		Email:         email,
		TransactionID: txn,
		EventType:     enums.EventTypePurchase,
		Value:         15.0,
		Currency:      "USD",
		PaymentMethod: enums.PaymentMethodHotmart,
		ClientIP:      "203.0.113.5",
		Timestamp:     ts,
	}
}

func TestRepositoryInsertAndListLeadsDescending(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	oldest := newLead("first@example.com", base)
	middle := newLead("second@example.com", base.Add(time.Minute))
	newest := newLead("third@example.com", base.Add(2*time.Minute))
	newest.QuizAnswers = types.QuizAnswers{"1": "marca-emergente"}

	for _, lead := range []*models.LeadEvent{oldest, newest, middle} {
		require.NoError(t, repo.InsertLead(ctx, lead))
	}

	leads, err := repo.ListLeads(ctx, 100)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "third@example.com", leads[0].Email)
	assert.Equal(t, "second@example.com", leads[1].Email)
	assert.Equal(t, "first@example.com", leads[2].Email)
	assert.Equal(t, "marca-emergente", leads[0].QuizAnswers.Get("1"))

	count, err := repo.CountLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepositoryListLeadsRespectsCap(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultListLimit+5; i++ {
		lead := newLead(fmt.Sprintf("lead%d@example.com", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.InsertLead(ctx, lead))
	}

	leads, err := repo.ListLeads(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, leads, DefaultListLimit)

	leads, err = repo.ListLeads(ctx, DefaultListLimit+50)
	require.NoError(t, err)
	assert.Len(t, leads, DefaultListLimit)

	all, err := repo.AllLeads(ctx)
	require.NoError(t, err)
	assert.Len(t, all, DefaultListLimit+5)
}

func TestRepositoryPurchases(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	older := newPurchase("buyer1@example.com", "HP-001", base)
	newer := newPurchase("buyer2@example.com", "HP-002", base.Add(time.Hour))
	require.NoError(t, repo.InsertPurchase(ctx, older))
	require.NoError(t, repo.InsertPurchase(ctx, newer))

	purchases, err := repo.ListPurchases(ctx, 10)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, "HP-002", purchases[0].TransactionID)
	assert.Equal(t, "HP-001", purchases[1].TransactionID)

	count, err := repo.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := repo.AllPurchases(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepositoryStoredRecordKeepsNulls(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lead := newLead("bare@example.com", time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.InsertLead(ctx, lead))

	leads, err := repo.ListLeads(ctx, 1)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Nil(t, leads[0].Whatsapp)
	assert.Nil(t, leads[0].UTMSource)
	assert.Nil(t, leads[0].Referrer)
	assert.Nil(t, leads[0].QuizAnswers)
}
