package cache

import (
	"github.com/erp/branchcore/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates cache stores based on configuration
type StoreFactory struct {
	cfg    config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.Config, log *zap.Logger) *StoreFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoreFactory{cfg: cfg, logger: log}
}

// CreateStore creates a store for the configured backend. When Redis is
// configured but unreachable it falls back to the in-memory store - cached
// aggregates are recomputable, so availability wins over sharing.
func (f *StoreFactory) CreateStore() Store {
	if f.cfg.Cache.Backend == "redis" {
		store, err := NewRedisStore(f.cfg.Redis)
		if err == nil {
			f.logger.Info("using Redis stats cache", zap.String("addr", f.cfg.Redis.Addr()))
			return store
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stats cache", zap.Error(err))
	}
	return NewInMemoryStore()
}
