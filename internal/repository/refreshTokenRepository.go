package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *storage.Postgres
}

func NewRefreshTokenRepository(db *storage.Postgres) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.DB.WithContext(ctx).Create(token).Error
}

// Retrieves a live token by its hash. Revoked and expired tokens are
// treated as missing.
func (r *RefreshTokenRepository) FindValidByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.DB.WithContext(ctx).
		Where("token_hash = ? AND is_revoked = ? AND expires_at > ?", hash, false, time.Now().UTC()).
		First(&token).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &token, err
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("is_revoked", true).Error
}

// Revokes every outstanding token for a user (logout everywhere)
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
}
