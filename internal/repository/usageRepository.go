package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/storage"
	"github.com/google/uuid"
)

// Append-only usage log. No update or delete paths on purpose.
type UsageRepository struct {
	db *storage.Postgres
}

func NewUsageRepository(db *storage.Postgres) *UsageRepository {
	return &UsageRepository{db: db}
}

// Records one metered call
func (r *UsageRepository) Create(ctx context.Context, userID uuid.UUID, endpoint, tierAtTime string) error {
	event := models.APIUsage{
		UserID:     userID,
		Endpoint:   endpoint,
		TierAtTime: tierAtTime,
		Timestamp:  time.Now().UTC(),
	}

	return r.db.DB.WithContext(ctx).Create(&event).Error
}

// Counts events for (user, endpoint) at or after the window start
func (r *UsageRepository) CountSince(ctx context.Context, userID uuid.UUID, endpoint string, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.APIUsage{}).
		Where("user_id = ? AND endpoint = ? AND timestamp >= ?", userID, endpoint, since).
		Count(&count).Error

	return count, err
}
