package router

import (
	"github.com/retailcrm/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers mounted under the versioned API group
type Handlers struct {
	System      *handler.SystemHandler
	Credentials *handler.CredentialHandler
	SkuMappings *handler.SkuMappingHandler
	Sync        *handler.SyncHandler
	AutoSync    *handler.AutoSyncHandler
	Inventory   *handler.InventoryHandler
}

// APIGroups builds the route groups of the stock sync API
func APIGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)

	marketplaces := NewDomainGroup("marketplaces", "/marketplaces")
	marketplaces.GET("/credentials", h.Credentials.List)

	marketplace := marketplaces.Group("marketplace", "/:marketplace")
	marketplace.GET("/credentials", h.Credentials.Get)
	marketplace.PUT("/credentials", h.Credentials.Save)
	marketplace.DELETE("/credentials", h.Credentials.Delete)
	marketplace.POST("/connection-check", h.Credentials.CheckConnection)

	mappings := marketplace.Group("sku-mappings", "/sku-mappings")
	mappings.GET("", h.SkuMappings.List)
	mappings.POST("", h.SkuMappings.Upsert)
	mappings.POST("/import", h.SkuMappings.Import)
	mappings.DELETE("/:internalSku", h.SkuMappings.Delete)

	sync := marketplace.Group("sync", "/sync")
	sync.POST("/stocks", h.Sync.SyncStocks)
	sync.POST("/items", h.Sync.SyncItems)
	sync.POST("/products", h.Sync.SyncProducts)

	logs := NewDomainGroup("sync-logs", "/sync/logs")
	logs.GET("", h.Sync.ListLogs)
	logs.DELETE("", h.Sync.ClearLogs)

	autoSync := NewDomainGroup("auto-sync", "/auto-sync")
	autoSync.GET("", h.AutoSync.Status)
	autoSync.POST("/start", h.AutoSync.Start)
	autoSync.POST("/stop", h.AutoSync.Stop)
	autoSync.PUT("/intervals", h.AutoSync.UpdateIntervals)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("", h.Inventory.List)
	inventory.GET("/low-stock", h.Inventory.LowStock)

	return []*DomainGroup{system, marketplaces, logs, autoSync, inventory}
}
