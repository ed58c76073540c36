package models

import (
	"time"

	"github.com/google/uuid"
)

// Visitor tracks one funnel browsing session, keyed by the frontend's
// session cookie. Counted separately from the heuristic dashboard estimates.
type Visitor struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SessionID   string    `gorm:"column:session_id;type:text;not null;uniqueIndex"`
	IP          *string   `gorm:"column:ip;type:text"`
	CountryCode *string   `gorm:"column:country_code;type:text"`
	UserAgent   *string   `gorm:"column:user_agent;type:text"`
	LandingURL  *string   `gorm:"column:landing_url;type:text"`
	Timestamp   time.Time `gorm:"column:timestamp;type:timestamptz;not null"`
}

func (Visitor) TableName() string {
	return "visitors"
}
