package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password assigned to every seeded user.
const SeedPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the Seeder and tests.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
	// bcrypt is slow; hash the shared seed password once
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("seed: failed to hash password: %v", err))
	}

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// CreateUser persists a user with a generated username, email, and bio.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d",
		strings.ToLower(gofakeit.Username()), f.rng.Intn(10000))

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password: f.passwordHash,
		IsActive: true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UserID: user.ID,
		Bio:    gofakeit.Sentence(8),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// CreatePost persists a post for the given author with a realistic
// created_at spread over the last 90 days.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
		UserID:  author.ID,
	}

	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(10),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records a like. Returns false when the user already liked the post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) (bool, error) {
	res := f.db.Exec(
		"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
		user.ID, post.ID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateFollow records a follow edge. Returns false when it already exists.
func (f *Factory) CreateFollow(follower, following *models.User) (bool, error) {
	res := f.db.Exec(
		"INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (follower_id, following_id) DO NOTHING",
		follower.ID, following.ID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
