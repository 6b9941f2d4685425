package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}

func TestCommentService_CreateComment_PostMustExist(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}

	svc := NewCommentService(noopCommentRepo(), postRepo)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, PostID: 999, Content: "hello",
	})
	assertNotFoundError(t, err)
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo())
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: ""})
	assertValidationError(t, err)

	_, err = svc.CreateComment(ctx, CreateCommentInput{
		UserID: 1, PostID: 1, Content: strings.Repeat("x", 10001),
	})
	assertValidationError(t, err)
}

func TestCommentService_CreateComment_Success(t *testing.T) {
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, comment *models.Comment) error {
		comment.ID = 5
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, Content: "hello", UserID: 1, PostID: 2}, nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo())
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, PostID: 2, Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), comment.ID)
	assert.Equal(t, "hello", comment.Content)
}

func TestCommentService_ListComments_PostMustExist(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}

	svc := NewCommentService(noopCommentRepo(), postRepo)
	_, err := svc.ListComments(context.Background(), 999)
	assertNotFoundError(t, err)
}
