package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/codegate/core/config"
	"github.com/m3rciful/codegate/core/logger"
)

const (
	// DefaultCapacity bounds the memory backend when no capacity is configured.
	DefaultCapacity = 10000
	// DefaultTTL evicts values that were not rewritten for this long.
	DefaultTTL = 24 * time.Hour
)

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg coreconfig.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", coreconfig.SessionMemory:
		logger.Info(ctx, "state", "state.open",
			slog.String("status", "ok"),
			slog.String("session_backend", coreconfig.SessionMemory),
			slog.Int("count", cfg.Capacity),
			slog.Duration("ttl", cfg.TTL),
		)
		return NewMemoryStore(cfg.Capacity, cfg.TTL), nil
	case coreconfig.SessionRedis:
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			logger.Error(ctx, "state", "state.open",
				slog.String("status", "fail"),
				slog.String("session_backend", coreconfig.SessionRedis),
				slog.String("err", err.Error()),
			)
			return nil, err
		}
		logger.Info(ctx, "state", "state.open",
			slog.String("status", "ok"),
			slog.String("session_backend", coreconfig.SessionRedis),
			slog.Duration("ttl", cfg.TTL),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("state: unknown backend %q", cfg.Backend)
	}
}
