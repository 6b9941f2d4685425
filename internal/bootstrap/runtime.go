// Package bootstrap wires up runtime dependencies shared by the server
// and auxiliary commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// RunTokenJanitor starts a background loop that purges expired rows
	// from the revoked-token blacklist.
	RunTokenJanitor bool
}

const tokenJanitorInterval = time.Hour

// InitRuntime connects to the database and Redis and optionally starts
// background maintenance. The returned Redis client may be nil when Redis
// is unreachable; callers degrade gracefully.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.RunTokenJanitor {
		go runTokenJanitor(ctx, db)
	}

	return db, r, nil
}

// runTokenJanitor periodically deletes revoked-token rows whose tokens
// have expired anyway. The Redis mirror entries expire on their own.
func runTokenJanitor(ctx context.Context, db *gorm.DB) {
	tokenRepo := repository.NewTokenRepository(db)

	ticker := time.NewTicker(tokenJanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tokenRepo.DeleteExpired(ctx)
			if err != nil {
				slog.Error("token janitor sweep failed", slog.String("error", err.Error()))
				continue
			}
			if deleted > 0 {
				slog.Info("token janitor purged expired blacklist entries",
					slog.Int64("deleted", deleted))
			}
		}
	}
}
