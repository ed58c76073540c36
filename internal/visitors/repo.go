// Package visitors records funnel browsing sessions keyed by the frontend's
// session cookie. One row per session; repeat hits refresh the row.
package visitors

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
)

// Repository persists visitor sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySession(ctx context.Context, sessionID string) (*models.Visitor, error)
	Insert(ctx context.Context, visitor *models.Visitor) error
	Update(ctx context.Context, visitor *models.Visitor) error
	Count(ctx context.Context) (int64, error)
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

func (r *repositoryImpl) FindBySession(ctx context.Context, sessionID string) (*models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, visitor *models.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

func (r *repositoryImpl) Update(ctx context.Context, visitor *models.Visitor) error {
	return r.db.WithContext(ctx).
		Model(&models.Visitor{}).
		Where("session_id = ?", visitor.SessionID).
		Updates(map[string]any{
			"ip":           visitor.IP,
			"country_code": visitor.CountryCode,
			"user_agent":   visitor.UserAgent,
			"landing_url":  visitor.LandingURL,
			"timestamp":    visitor.Timestamp,
		}).Error
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Visitor{}).Count(&count).Error
	return count, err
}
