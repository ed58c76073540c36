package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusCheck records a client-reported liveness ping.
type StatusCheck struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ClientName string    `gorm:"column:client_name;type:text;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;type:timestamptz;not null"`
}

func (StatusCheck) TableName() string {
	return "status_checks"
}
