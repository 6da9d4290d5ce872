package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/config"
	"github.com/retailcrm/backend/internal/infrastructure/persistence"
)

func entryFor(userID uuid.UUID, msg string) integration.SyncLogEntry {
	e := integration.NewSyncLogEntry(userID, integration.MarketplaceOzon, integration.SyncOperationStockPush, integration.SyncTriggerManual)
	e.Succeed(msg, 0, nil)
	return *e
}

// ---------------------------------------------------------------------------
// InMemorySyncLogStore
// ---------------------------------------------------------------------------

func TestInMemorySyncLogStore(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the newest entries per user", func(t *testing.T) {
		store := NewInMemorySyncLogStore(3)
		userID := uuid.New()
		for i := 1; i <= 5; i++ {
			require.NoError(t, store.Append(ctx, entryFor(userID, fmt.Sprintf("run %d", i))))
		}

		entries, err := store.List(ctx, userID, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "run 5", entries[0].Message)
		assert.Equal(t, "run 3", entries[2].Message)
	})

	t.Run("default capacity", func(t *testing.T) {
		store := NewInMemorySyncLogStore(0)
		userID := uuid.New()
		for i := 0; i < integration.DefaultSyncLogCapacity+1; i++ {
			require.NoError(t, store.Append(ctx, entryFor(userID, "x")))
		}
		entries, err := store.List(ctx, userID, 0)
		require.NoError(t, err)
		assert.Len(t, entries, integration.DefaultSyncLogCapacity)
	})

	t.Run("unknown user returns empty list", func(t *testing.T) {
		store := NewInMemorySyncLogStore(0)
		entries, err := store.List(ctx, uuid.New(), 10)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("clear only affects one user", func(t *testing.T) {
		store := NewInMemorySyncLogStore(0)
		alice, bob := uuid.New(), uuid.New()
		require.NoError(t, store.Append(ctx, entryFor(alice, "a")))
		require.NoError(t, store.Append(ctx, entryFor(bob, "b")))

		require.NoError(t, store.Clear(ctx, alice))

		aliceEntries, _ := store.List(ctx, alice, 0)
		bobEntries, _ := store.List(ctx, bob, 0)
		assert.Empty(t, aliceEntries)
		assert.Len(t, bobEntries, 1)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		store := NewInMemorySyncLogStore(0)
		userID := uuid.New()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.Append(ctx, entryFor(userID, "c"))
			}()
		}
		wg.Wait()

		entries, err := store.List(ctx, userID, 0)
		require.NoError(t, err)
		assert.Len(t, entries, integration.DefaultSyncLogCapacity)
	})
}

// ---------------------------------------------------------------------------
// SyncLogStoreFactory
// ---------------------------------------------------------------------------

func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1}
}

func TestSyncLogStoreFactory_CreateStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := NewSyncLogStoreFactory(unreachableRedis(), 10).CreateStore(config.SyncLogStoreMemory)
		require.NoError(t, err)
		assert.IsType(t, &InMemorySyncLogStore{}, store)
	})

	t.Run("redis falls back to memory", func(t *testing.T) {
		store, err := NewSyncLogStoreFactory(unreachableRedis(), 10).CreateStore(config.SyncLogStoreRedis)
		require.NoError(t, err)
		assert.IsType(t, &InMemorySyncLogStore{}, store)
	})

	t.Run("redis without fallback fails", func(t *testing.T) {
		_, err := NewSyncLogStoreFactory(unreachableRedis(), 10, WithInMemoryFallback(false)).CreateStore(config.SyncLogStoreRedis)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})

	t.Run("database requires a connection", func(t *testing.T) {
		_, err := NewSyncLogStoreFactory(unreachableRedis(), 10).CreateStore(config.SyncLogStoreDatabase)
		assert.Error(t, err)
	})

	t.Run("database", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		store, err := NewSyncLogStoreFactory(unreachableRedis(), 10, WithDatabase(db)).CreateStore(config.SyncLogStoreDatabase)
		require.NoError(t, err)
		assert.IsType(t, &persistence.GormSyncLogStore{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewSyncLogStoreFactory(unreachableRedis(), 10).CreateStore("kafka")
		assert.Error(t, err)
	})
}
