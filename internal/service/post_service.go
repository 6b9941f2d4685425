package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID  uint
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

const maxPostContentLen = 10000

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post := &models.Post{
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsCreated.Inc()

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// Feed returns posts authored by users the caller follows, newest first.
func (s *PostService) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, userID, limit, offset)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// UpdatePost replaces a post's content. Only the author may update;
// admins have no override here.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike flips the caller's like on a post. The insert is attempted
// first; if the row already existed the like is removed instead, so exactly
// one of the two outcomes happens even under concurrent toggles.
// Returns the refreshed post and whether the post is now liked.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, false, err
	}

	inserted, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, false, err
	}

	liked := inserted
	if !inserted {
		if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, false, err
		}
	}

	if liked {
		observability.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		observability.LikeToggles.WithLabelValues("unliked").Inc()
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}
	return post, liked, nil
}
