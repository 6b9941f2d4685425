package models

import "time"

// Follow represents a directed follow relationship between two users.
// The combination of FollowerID and FollowingID must be unique, and a
// user can never follow themselves (enforced at the handler level).
// Rows are hard-deleted on unfollow.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"following"`
}
