// Package storage picks the deck repository named by the configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/youruser/pokedeck/internal/config"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/logger"
	"github.com/youruser/pokedeck/internal/storage/gormstore"
	"github.com/youruser/pokedeck/internal/storage/memory"
	"github.com/youruser/pokedeck/internal/storage/redisstore"
)

// Open returns the configured repository and a func releasing it.
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (deck.Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.DeckStore {
	case config.StoreMemory:
		return memory.New(), noop, nil
	case config.StoreSQLite:
		s, err := gormstore.OpenSQLite(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StorePostgres:
		s, err := gormstore.OpenPostgres(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := redisstore.Connect(ctx, cfg.RedisAddr, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown deck store %q", cfg.DeckStore)
	}
}
