package models

import "time"

// RevokedToken is the persisted refresh-token blacklist. Once a token's
// JTI lands here it can never mint new access tokens again; revocation
// is terminal. Rows are mirrored into Redis for fast middleware checks
// and become garbage once ExpiresAt passes.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"column:jti;unique;not null" json:"jti"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
