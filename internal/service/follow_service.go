package service

import (
	"context"
	"fmt"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates a follow edge from follower to target. Self-follows are
// rejected, and following someone twice is reported as an error rather
// than silently succeeding.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (string, error) {
	if followerID == targetID {
		return "", models.NewValidationError("You cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}

	created, err := s.followRepo.Create(ctx, followerID, targetID)
	if err != nil {
		return "", err
	}
	if !created {
		return "", models.NewValidationError("You are already following this user")
	}

	observability.FollowChanges.WithLabelValues("follow").Inc()
	return fmt.Sprintf("You are now following %s", target.Username), nil
}

// Unfollow removes the follow edge from follower to target.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) (string, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}

	removed, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return "", err
	}
	if !removed {
		return "", models.NewValidationError("You are not following this user")
	}

	observability.FollowChanges.WithLabelValues("unfollow").Inc()
	return fmt.Sprintf("You have unfollowed %s", target.Username), nil
}

// Following returns the users the given user follows.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

// Followers returns the users following the given user.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}
