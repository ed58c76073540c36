package visitors

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/aura-funnel-backend/pkg/clientip"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db"
	"github.com/angelmondragon/aura-funnel-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/aura-funnel-backend/pkg/errors"
)

// uniqueSessionConstraint is the Postgres default name for the UNIQUE
// constraint on visitors.session_id.
const uniqueSessionConstraint = "visitors_session_id_key"

// TrackRequest is the track-visitor payload. The session id comes from the
// frontend cookie so repeat hits land on the same row.
type TrackRequest struct {
	SessionID   string  `json:"sessionId" validate:"required"`
	CountryCode *string `json:"countryCode"`
	UserAgent   *string `json:"userAgent"`
	LandingURL  *string `json:"landingUrl"`
}

// RequestMeta carries the server-observed request context used to resolve the
// visitor's IP.
type RequestMeta struct {
	RemoteAddr string
	Header     http.Header
}

// TrackResult reports the stored session.
type TrackResult struct {
	SessionID string `json:"sessionId"`
	IP        string `json:"ip"`
	New       bool   `json:"new"`
}

// Service upserts visitor sessions.
type Service interface {
	Track(ctx context.Context, req TrackRequest, meta RequestMeta) (*TrackResult, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	newID    func() uuid.UUID
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "visitor service requires a repository")
	}
	return &service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}, nil
}

func (s *service) Track(ctx context.Context, req TrackRequest, meta RequestMeta) (*TrackResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visitor payload")
	}

	ip := clientip.Resolve(meta.RemoteAddr, meta.Header)
	now := s.now()

	existing, err := s.repo.FindBySession(ctx, req.SessionID)
	switch {
	case err == nil:
		existing.IP = &ip
		mergeVisitorFields(existing, req)
		existing.Timestamp = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating visitor session")
		}
		return &TrackResult{SessionID: req.SessionID, IP: ip, New: false}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		visitor := &models.Visitor{
			ID:          s.newID(),
			SessionID:   req.SessionID,
			IP:          &ip,
			CountryCode: req.CountryCode,
			UserAgent:   req.UserAgent,
			LandingURL:  req.LandingURL,
			Timestamp:   now,
		}
		if err := s.repo.Insert(ctx, visitor); err != nil {
			// A concurrent hit for the same session can win the insert.
			if db.IsUniqueViolation(err, uniqueSessionConstraint) {
				return &TrackResult{SessionID: req.SessionID, IP: ip, New: false}, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting visitor session")
		}
		return &TrackResult{SessionID: req.SessionID, IP: ip, New: true}, nil

	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up visitor session")
	}
}

func mergeVisitorFields(visitor *models.Visitor, req TrackRequest) {
	if req.CountryCode != nil {
		visitor.CountryCode = req.CountryCode
	}
	if req.UserAgent != nil {
		visitor.UserAgent = req.UserAgent
	}
	if req.LandingURL != nil {
		visitor.LandingURL = req.LandingURL
	}
}
