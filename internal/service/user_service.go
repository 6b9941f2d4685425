package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type UpdateProfileInput struct {
	CallerID uint
	TargetID uint
	Username string
	Bio      string
}

func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		isAdmin:     isAdmin,
	}
}

// ListUsers returns every user except the caller, for discovery listings.
func (s *UserService) ListUsers(ctx context.Context, callerID uint, limit, offset int) ([]models.User, error) {
	return s.userRepo.ListOthers(ctx, callerID, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the public profile view for a user, creating the
// profile row on first access.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ProfileView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Bio:      profile.Bio,
	}, nil
}

// UpdateProfile updates a user's username and bio. Only the user themselves
// or an admin may edit a profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.ProfileView, error) {
	if in.CallerID != in.TargetID {
		if s.isAdmin == nil {
			return nil, models.NewUnauthorizedError("You can only edit your own profile")
		}
		admin, err := s.isAdmin(ctx, in.CallerID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewUnauthorizedError("You can only edit your own profile")
		}
	}

	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetOrCreate(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewValidationError("Username is already taken")
		}
		user.Username = in.Username
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if in.Bio != profile.Bio {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		profile.Bio = in.Bio
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return nil, err
		}
	}

	return &models.ProfileView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Bio:      profile.Bio,
	}, nil
}
