// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// TokenRepository persists the refresh-token blacklist. Revocation is
// terminal: a JTI row is never removed before its token would have expired
// anyway.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a new TokenRepository implementation.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Revoke inserts the JTI into the blacklist and reports whether it was
// newly revoked. ON CONFLICT DO NOTHING makes repeated logout calls with
// the same token detectable without racing on the unique index.
func (r *tokenRepository) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO revoked_tokens (jti, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, userID, expiresAt,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *tokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// DeleteExpired removes blacklist rows whose tokens have expired on their
// own. Safe to run periodically; the Redis mirror expires by TTL.
func (r *tokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
