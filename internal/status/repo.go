// Package status stores client-reported liveness pings, kept for parity with
// the dashboard's connectivity check.
package status

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
)

// listCap bounds the status listing the same way the dashboard consumes it.
const listCap = 1000

// Repository persists status checks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, check *models.StatusCheck) error
	List(ctx context.Context) ([]models.StatusCheck, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, check *models.StatusCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.StatusCheck, error) {
	var checks []models.StatusCheck
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(listCap).
		Find(&checks).Error
	return checks, err
}
