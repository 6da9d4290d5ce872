package cache

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/config"
	"github.com/retailcrm/backend/internal/infrastructure/persistence"
)

// SyncLogStoreFactory creates sync log stores based on configuration
type SyncLogStoreFactory struct {
	redisConfig           config.RedisConfig
	capacity              int
	db                    *gorm.DB
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SyncLogStoreFactoryOption is a functional option for configuring the factory
type SyncLogStoreFactoryOption func(*SyncLogStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SyncLogStoreFactoryOption {
	return func(f *SyncLogStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable.
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) SyncLogStoreFactoryOption {
	return func(f *SyncLogStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithDatabase provides the connection used by the database backend
func WithDatabase(db *gorm.DB) SyncLogStoreFactoryOption {
	return func(f *SyncLogStoreFactory) {
		f.db = db
	}
}

// NewSyncLogStoreFactory creates a new factory
func NewSyncLogStoreFactory(cfg config.RedisConfig, capacity int, opts ...SyncLogStoreFactoryOption) *SyncLogStoreFactory {
	f := &SyncLogStoreFactory{
		redisConfig:           cfg,
		capacity:              capacity,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed sync log store
func (f *SyncLogStoreFactory) CreateRedisStore() (*RedisSyncLogStore, error) {
	store, err := NewRedisSyncLogStore(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis sync log store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory sync log store.
// WARNING: entries are not shared across instances and are lost on restart.
func (f *SyncLogStoreFactory) CreateInMemoryStore() *InMemorySyncLogStore {
	return NewInMemorySyncLogStore(f.capacity)
}

// CreateStore creates the store for backend (memory, redis or database).
// A Redis failure falls back to memory when fallback is allowed.
func (f *SyncLogStoreFactory) CreateStore(backend string) (integration.SyncLogStore, error) {
	switch backend {
	case "", config.SyncLogStoreMemory:
		f.logger.Info("using in-memory sync log store", zap.Int("capacity", f.capacity))
		return f.CreateInMemoryStore(), nil

	case config.SyncLogStoreDatabase:
		if f.db == nil {
			return nil, fmt.Errorf("database sync log store requires a database connection")
		}
		f.logger.Info("using database sync log store", zap.Int("capacity", f.capacity))
		return persistence.NewGormSyncLogStore(f.db, f.capacity), nil

	case config.SyncLogStoreRedis:
		store, err := f.CreateRedisStore()
		if err == nil {
			f.logger.Info("using Redis sync log store", zap.Int("capacity", f.capacity))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for sync log but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory sync log store. "+
			"Sync history will not survive restarts.",
			zap.Error(err),
		)
		return f.CreateInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown sync log store backend %q", backend)
	}
}
