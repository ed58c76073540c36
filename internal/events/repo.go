package events

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
)

// DefaultListLimit caps the dashboard list projections.
const DefaultListLimit = 100

// Repository is the record-store surface shared by ingestion and projection.
// Both collections are append-only; there are no update or delete operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertLead(ctx context.Context, lead *models.LeadEvent) error
	InsertPurchase(ctx context.Context, purchase *models.PurchaseEvent) error
	ListLeads(ctx context.Context, limit int) ([]models.LeadEvent, error)
	ListPurchases(ctx context.Context, limit int) ([]models.PurchaseEvent, error)
	AllLeads(ctx context.Context) ([]models.LeadEvent, error)
	AllPurchases(ctx context.Context) ([]models.PurchaseEvent, error)
	CountLeads(ctx context.Context) (int64, error)
	CountPurchases(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) InsertLead(ctx context.Context, lead *models.LeadEvent) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *repositoryImpl) InsertPurchase(ctx context.Context, purchase *models.PurchaseEvent) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repositoryImpl) ListLeads(ctx context.Context, limit int) ([]models.LeadEvent, error) {
	var leads []models.LeadEvent
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(normalizeLimit(limit)).
		Find(&leads).Error
	return leads, err
}

func (r *repositoryImpl) ListPurchases(ctx context.Context, limit int) ([]models.PurchaseEvent, error) {
	var purchases []models.PurchaseEvent
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(normalizeLimit(limit)).
		Find(&purchases).Error
	return purchases, err
}

func (r *repositoryImpl) AllLeads(ctx context.Context) ([]models.LeadEvent, error) {
	var leads []models.LeadEvent
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Find(&leads).Error
	return leads, err
}

func (r *repositoryImpl) AllPurchases(ctx context.Context) ([]models.PurchaseEvent, error) {
	var purchases []models.PurchaseEvent
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *repositoryImpl) CountLeads(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LeadEvent{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountPurchases(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseEvent{}).Count(&count).Error
	return count, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
