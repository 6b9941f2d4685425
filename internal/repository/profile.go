package repository

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for user profiles.
// Profiles are created lazily: the first read materializes an empty row.
type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.ProfileKey(profile.UserID))
	return nil
}
