package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/aura-reserve/backend/config"
	"github.com/aura-reserve/backend/internal/history"
	"github.com/aura-reserve/backend/internal/organizations"
	"github.com/aura-reserve/backend/internal/reservations"
	"github.com/aura-reserve/backend/internal/resources"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/internal/store/memstore"
	"github.com/aura-reserve/backend/internal/users"
	"github.com/aura-reserve/backend/pkg/database"
)

// Backend is the initialized persistence layer shared by the server and worker.
type Backend struct {
	Store   store.Store
	History history.Store
	close   func()
}

// Close releases the underlying connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// OpenBackend connects to PostgreSQL and applies migrations once, or builds
// the in-memory store when DATABASE_URL=memory.
func OpenBackend(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Backend, error) {
	if cfg.InMemory() {
		mem := memstore.New()
		logger.Warn("using in-memory store; data is lost on exit")
		return &Backend{Store: mem.Bundle(), History: mem.History()}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DSN(), database.PoolOptions{MaxConns: int32(cfg.MaxConns)}, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return &Backend{
		Store: store.Store{
			Organizations: organizations.NewRepository(pool),
			Resources:     resources.NewRepository(pool),
			Users:         users.NewRepository(pool),
			Reservations:  reservations.NewRepository(pool),
		},
		History: history.NewRepository(pool),
		close:   pool.Close,
	}, nil
}
