package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/guidance/internal/model"
)

// Open builds the SessionStore selected by cfg.Backend.
func Open(ctx context.Context, cfg model.StorageConfig) (SessionStore, error) {
	switch cfg.Backend {
	case model.BackendMemory:
		return NewMemoryStore(), nil
	case model.BackendSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case model.BackendRedis:
		s, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
