package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/aura-funnel-backend/pkg/enums"
	"github.com/angelmondragon/aura-funnel-backend/pkg/types"
)

// LeadEvent is one InitiateCheckout-stage funnel interaction, stored once at
// webhook receipt and never mutated. Optional tracking fields stay NULL when
// the client did not send them so projections can emit them explicitly.
type LeadEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SessionID   string            `gorm:"column:session_id;type:text;not null;index"`
	Name        string            `gorm:"column:name;type:text;not null"`
	Email       string            `gorm:"column:email;type:text;not null"`
	Whatsapp    *string           `gorm:"column:whatsapp;type:text"`
	UserAgent   *string           `gorm:"column:user_agent;type:text"`
	Fbclid      *string           `gorm:"column:fbclid;type:text"`
	FBC         *string           `gorm:"column:fbc;type:text"`
	FBP         *string           `gorm:"column:fbp;type:text"`
	UTMSource   *string           `gorm:"column:utm_source;type:text"`
	UTMMedium   *string           `gorm:"column:utm_medium;type:text"`
	UTMCampaign *string           `gorm:"column:utm_campaign;type:text"`
	UTMContent  *string           `gorm:"column:utm_content;type:text"`
	UTMTerm     *string           `gorm:"column:utm_term;type:text"`
	Referrer    *string           `gorm:"column:referrer;type:text"`
	CurrentURL  *string           `gorm:"column:current_url;type:text"`
	QuizAnswers types.QuizAnswers `gorm:"column:quiz_answers;type:jsonb"`
	BucketID    *string           `gorm:"column:bucket_id;type:text"`
	EventType   enums.EventType   `gorm:"column:event_type;type:text;not null"`
	Value       float64           `gorm:"column:value;not null"`
	Currency    string            `gorm:"column:currency;type:text;not null"`
	ClientIP    string            `gorm:"column:client_ip;type:text;not null"`
	Timestamp   time.Time         `gorm:"column:timestamp;type:timestamptz;not null;index"`
}

func (LeadEvent) TableName() string {
	return "lead_webhooks"
}
