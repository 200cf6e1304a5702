// Package bootstrap wires the process-wide runtime shared by the server and clubctl.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"clubhouse/internal/cache"
	"clubhouse/internal/config"
	"clubhouse/internal/database"
	"clubhouse/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed reconciles the baseline dataset after the schema is applied.
	Seed bool
	// SeedFile overrides the embedded baseline.
	SeedFile string
}

// InitRuntime connects to the database and Redis and optionally reconciles
// the seed baseline. Redis is optional: a nil client disables caching,
// session revocation and rate limiting.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.Seed {
		// Seeding problems never block startup.
		if err := runSeed(ctx, db, opts.SeedFile); err != nil {
			slog.WarnContext(ctx, "seed baseline applied with errors", "error", err)
		}
	}

	return db, r, nil
}

func runSeed(ctx context.Context, db *gorm.DB, path string) error {
	baseline, err := seed.Load(path)
	if err != nil {
		return err
	}
	_, err = seed.Reconcile(ctx, db, baseline)
	return err
}
