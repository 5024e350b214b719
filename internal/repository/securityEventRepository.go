package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/storage"
	"github.com/google/uuid"
)

type SecurityEventRepository struct {
	db *storage.Postgres
}

func NewSecurityEventRepository(db *storage.Postgres) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

func (r *SecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.DB.WithContext(ctx).Create(event).Error
}

// Counts a user's events of one type since the given time
func (r *SecurityEventRepository) CountByTypeSince(ctx context.Context, userID uuid.UUID, eventType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.SecurityEvent{}).
		Where("user_id = ? AND event_type = ? AND timestamp >= ?", userID, eventType, since).
		Count(&count).Error

	return count, err
}

// Retrieves recent events for a user, newest first
func (r *SecurityEventRepository) FindRecent(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error

	return events, err
}
