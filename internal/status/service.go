package status

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
)

// CreateRequest is the status-check payload.
type CreateRequest struct {
	ClientName string `json:"clientName" validate:"required"`
}

// Check is the external view of a stored status check.
type Check struct {
	ID         string    `json:"id"`
	ClientName string    `json:"clientName"`
	Timestamp  time.Time `json:"timestamp"`
}

// Service appends and lists status checks.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Check, error)
	List(ctx context.Context) ([]Check, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	newID    func() uuid.UUID
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "status service requires a repository")
	}
	return &service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Check, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status payload")
	}

	check := &models.StatusCheck{
		ID:         s.newID(),
		ClientName: req.ClientName,
		Timestamp:  s.now(),
	}
	if err := s.repo.Insert(ctx, check); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting status check")
	}
	return projectCheck(check), nil
}

func (s *service) List(ctx context.Context) ([]Check, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing status checks")
	}
	checks := make([]Check, 0, len(rows))
	for i := range rows {
		checks = append(checks, *projectCheck(&rows[i]))
	}
	return checks, nil
}

func projectCheck(check *models.StatusCheck) *Check {
	return &Check{
		ID:         check.ID.String(),
		ClientName: check.ClientName,
		Timestamp:  check.Timestamp,
	}
}
