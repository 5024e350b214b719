package models

import (
	"time"

	"github.com/google/uuid"
)

// One metered call to an AI endpoint. Append-only; rows are never updated or
// deleted, usage limits are enforced by counting rows inside a window.
type APIUsage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index:idx_usage_user_endpoint" json:"user_id"`
	Endpoint   string    `gorm:"index:idx_usage_user_endpoint;not null" json:"endpoint"`
	TierAtTime string    `json:"tier_at_time"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
}

func (APIUsage) TableName() string {
	return "api_usage"
}
