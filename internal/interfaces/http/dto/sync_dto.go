package dto

import (
	"time"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/domain/integration"
)

// SyncItemsRequest carries caller-supplied items in either the normalized or
// the legacy per-marketplace shape
type SyncItemsRequest struct {
	Items []map[string]any `json:"items" binding:"required,min=1,max=10000"`
}

// ImportSkuMappingsRequest carries tab-separated "internal<TAB>external" lines
type ImportSkuMappingsRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateIntervalsRequest changes the auto-sync intervals in minutes.
// A zero product interval disables product sync.
type UpdateIntervalsRequest struct {
	ProductSyncIntervalMinutes *int `json:"product_sync_interval_minutes" binding:"required,gte=0,max=10080"`
	StockUpdateIntervalMinutes *int `json:"stock_update_interval_minutes" binding:"required,gt=0,max=10080"`
}

// SyncLogQuery bounds the number of returned log entries
type SyncLogQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SyncOutcomeResponse is the API view of a finished sync pass
type SyncOutcomeResponse struct {
	Marketplace  integration.MarketplaceCode `json:"marketplace"`
	Operation    integration.SyncOperation   `json:"operation"`
	Status       integration.SyncStatus      `json:"status"`
	NoValidItems bool                        `json:"no_valid_items"`
	ValidCount   int                         `json:"valid_count"`
	InvalidCount int                         `json:"invalid_count"`
	UpdatedCount int                         `json:"updated_count"`
	ErrorCount   int                         `json:"error_count"`
	Message      string                      `json:"message"`
	Results      []integration.ItemResult    `json:"results"`
	LogEntryID   string                      `json:"log_entry_id,omitempty"`
}

// ToSyncOutcomeResponse converts a service outcome
func ToSyncOutcomeResponse(o *appintegration.SyncOutcome) SyncOutcomeResponse {
	resp := SyncOutcomeResponse{
		Marketplace:  o.Marketplace,
		Operation:    o.Operation,
		Status:       o.Status,
		NoValidItems: o.NoValidItems,
		ValidCount:   o.ValidCount,
		InvalidCount: o.InvalidCount,
		UpdatedCount: o.UpdatedCount,
		ErrorCount:   o.ErrorCount,
		Message:      o.Message,
		Results:      o.Results,
	}
	if resp.Results == nil {
		resp.Results = []integration.ItemResult{}
	}
	if o.LogEntry != nil {
		resp.LogEntryID = o.LogEntry.ID.String()
	}
	return resp
}

// AutoSyncStatusResponse is the API view of a user's scheduler
type AutoSyncStatusResponse struct {
	IsRunning                  bool       `json:"is_running"`
	LastProductSyncAt          *time.Time `json:"last_product_sync_at"`
	LastStockUpdateAt          *time.Time `json:"last_stock_update_at"`
	NextProductSyncAt          *time.Time `json:"next_product_sync_at"`
	NextStockUpdateAt          *time.Time `json:"next_stock_update_at"`
	ProductSyncIntervalMinutes int        `json:"product_sync_interval_minutes"`
	StockUpdateIntervalMinutes int        `json:"stock_update_interval_minutes"`
	ProductSyncEnabled         bool       `json:"product_sync_enabled"`
}

// ToAutoSyncStatusResponse converts a scheduler snapshot
func ToAutoSyncStatusResponse(s integration.AutoSyncStatus) AutoSyncStatusResponse {
	return AutoSyncStatusResponse{
		IsRunning:                  s.IsRunning,
		LastProductSyncAt:          s.LastProductSyncAt,
		LastStockUpdateAt:          s.LastStockUpdateAt,
		NextProductSyncAt:          s.NextProductSyncAt,
		NextStockUpdateAt:          s.NextStockUpdateAt,
		ProductSyncIntervalMinutes: s.ProductSyncIntervalMinutes,
		StockUpdateIntervalMinutes: s.StockUpdateIntervalMinutes,
		ProductSyncEnabled:         s.ProductSyncEnabled(),
	}
}
