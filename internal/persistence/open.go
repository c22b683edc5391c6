package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
)

// Open builds the Store selected by cfg.Storage.Driver, running migrations
// for Postgres when enabled.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; state is lost on restart")
		return NewMemory(), nil
	case config.StorageRedis:
		return NewRedis(cfg.Redis, logger), nil
	case config.StoragePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
