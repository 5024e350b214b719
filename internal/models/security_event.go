package models

import (
	"time"

	"github.com/google/uuid"
)

// Security events (injection attempts, rate limit violations) kept for
// offline analysis. Written asynchronously, best effort.
type SecurityEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	EventType string    `gorm:"index;not null" json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
	RiskScore int       `json:"risk_score"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}
