package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	ProfileKeyPrefix   = "profile:user:%d"
	FeedKeyPrefix      = "feed:user:%d"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	UserTTL    = 5 * time.Minute
	ProfileTTL = 5 * time.Minute
	PostTTL    = 30 * time.Minute
	FeedTTL    = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func FeedKey(userID uint) string {
	return fmt.Sprintf(FeedKeyPrefix, userID)
}

// BlacklistKey is the Redis mirror of the persisted refresh-token blacklist.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, ProfileKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateFeed(ctx context.Context, userID uint) {
	Invalidate(ctx, FeedKey(userID))
}
