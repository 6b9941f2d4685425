// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with realistic development data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Tables are cleared child-first so
// foreign keys never dangle mid-wipe.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Clearing existing data...")

	tables := []string{"likes", "comments", "posts", "follows", "user_profiles", "revoked_tokens", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	log.Println("✓ Database cleared")
	return nil
}

// SeedSocialMesh creates users and a follow graph between them. Each user
// follows a random subset of the others so every feed has content.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	log.Printf("🌱 Creating %d users...", numUsers)

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d users created", len(users))

	follows := 0
	for _, follower := range users {
		// Follow between 10% and 40% of the other users.
		count := 1 + s.rng.Intn(maxInt(numUsers*4/10, 2))
		for _, idx := range s.rng.Perm(len(users))[:minInt(count, len(users))] {
			target := users[idx]
			if target.ID == follower.ID {
				continue
			}
			created, err := s.factory.CreateFollow(follower, target)
			if err != nil {
				return nil, fmt.Errorf("failed to create follow: %w", err)
			}
			if created {
				follows++
			}
		}
	}
	log.Printf("✓ %d follow edges created", follows)

	return users, nil
}

// SeedEngagement creates posts for the given users plus comments and likes
// on a random subset of them.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}

	log.Printf("🌱 Creating %d posts...", numPosts)

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("failed to create post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments := 0
	likes := 0
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(5); i++ {
			commenter := users[s.rng.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			comments++
		}
		for _, idx := range s.rng.Perm(len(users))[:s.rng.Intn(minInt(len(users), 10))] {
			created, err := s.factory.CreateLike(users[idx], post)
			if err != nil {
				return nil, fmt.Errorf("failed to create like: %w", err)
			}
			if created {
				likes++
			}
		}
	}
	log.Printf("✓ %d comments and %d likes created", comments, likes)

	return posts, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
