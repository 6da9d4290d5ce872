package handler

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/cache"
	"github.com/retailcrm/backend/internal/infrastructure/scheduler"
)

// testEnv wires real services over in-memory stores
type testEnv struct {
	userID    uuid.UUID
	creds     *memCredentials
	mappings  *memMappings
	inventory *memInventory
	logs      *cache.InMemorySyncLogStore
	wb        *fakeClient
	ozon      *fakeClient
	sync      *appintegration.StockSyncService
	manager   *scheduler.AutoSyncManager
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		userID:    uuid.New(),
		creds:     newMemCredentials(),
		mappings:  &memMappings{},
		inventory: &memInventory{},
		logs:      cache.NewInMemorySyncLogStore(integration.DefaultSyncLogCapacity),
		wb:        &fakeClient{code: integration.MarketplaceWildberries},
		ozon:      &fakeClient{code: integration.MarketplaceOzon},
	}
	registry := fakeRegistry{
		integration.MarketplaceWildberries: env.wb,
		integration.MarketplaceOzon:        env.ozon,
	}

	env.sync = appintegration.NewStockSyncService(env.creds, env.mappings, env.inventory, env.logs, registry)
	manager, err := scheduler.NewAutoSyncManager(env.sync, scheduler.AutoSyncConfig{
		ProductIntervalMinutes: 60,
		StockIntervalMinutes:   30,
		RestartDelay:           10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	env.manager = manager
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = manager.StopAll(ctx)
	})

	credentialHandler := NewCredentialHandler(appintegration.NewCredentialService(env.creds, registry, nil))
	mappingHandler := NewSkuMappingHandler(appintegration.NewSkuMappingService(env.mappings, nil))
	syncHandler := NewSyncHandler(env.sync)
	autoSyncHandler := NewAutoSyncHandler(manager)
	inventoryHandler := NewInventoryHandler(appintegration.NewInventoryService(env.inventory))

	r := gin.New()
	api := r.Group("/api/v1", authenticated(env.userID))
	api.GET("/marketplaces/credentials", credentialHandler.List)
	api.GET("/marketplaces/:marketplace/credentials", credentialHandler.Get)
	api.PUT("/marketplaces/:marketplace/credentials", credentialHandler.Save)
	api.DELETE("/marketplaces/:marketplace/credentials", credentialHandler.Delete)
	api.POST("/marketplaces/:marketplace/connection-check", credentialHandler.CheckConnection)
	api.GET("/marketplaces/:marketplace/sku-mappings", mappingHandler.List)
	api.POST("/marketplaces/:marketplace/sku-mappings", mappingHandler.Upsert)
	api.POST("/marketplaces/:marketplace/sku-mappings/import", mappingHandler.Import)
	api.DELETE("/marketplaces/:marketplace/sku-mappings/:internalSku", mappingHandler.Delete)
	api.POST("/marketplaces/:marketplace/sync/stocks", syncHandler.SyncStocks)
	api.POST("/marketplaces/:marketplace/sync/items", syncHandler.SyncItems)
	api.POST("/marketplaces/:marketplace/sync/products", syncHandler.SyncProducts)
	api.GET("/sync/logs", syncHandler.ListLogs)
	api.DELETE("/sync/logs", syncHandler.ClearLogs)
	api.GET("/auto-sync", autoSyncHandler.Status)
	api.POST("/auto-sync/start", autoSyncHandler.Start)
	api.POST("/auto-sync/stop", autoSyncHandler.Stop)
	api.PUT("/auto-sync/intervals", autoSyncHandler.UpdateIntervals)
	api.GET("/inventory", inventoryHandler.List)
	api.GET("/inventory/low-stock", inventoryHandler.LowStock)

	anon := r.Group("/anon", authenticated(uuid.Nil))
	anon.GET("/inventory", inventoryHandler.List)

	env.router = r
	return env
}

func (e *testEnv) configureWildberries(t *testing.T) {
	t.Helper()
	cred, err := integration.NewCredential(e.userID, integration.MarketplaceWildberries, "wb-secret-key", "", "")
	require.NoError(t, err)
	require.NoError(t, e.creds.Save(context.Background(), cred))
}

func (e *testEnv) mapSku(t *testing.T, marketplace integration.MarketplaceCode, internalSku, externalSku string) {
	t.Helper()
	m, err := integration.NewSkuMapping(e.userID, marketplace, internalSku, externalSku)
	require.NoError(t, err)
	require.NoError(t, e.mappings.Upsert(context.Background(), m))
}

func (e *testEnv) logEntries(t *testing.T) []integration.SyncLogEntry {
	t.Helper()
	entries, err := e.logs.List(context.Background(), e.userID, integration.DefaultSyncLogCapacity)
	require.NoError(t, err)
	return entries
}
