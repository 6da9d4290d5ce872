package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcrm/backend/internal/domain/integration"
	csvimport "github.com/retailcrm/backend/internal/infrastructure/import"
)

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// SaveCredentialRequest carries the access fields of one marketplace
type SaveCredentialRequest struct {
	APIKey      string `json:"api_key" validate:"required,min=8,max=2048"`
	ClientID    string `json:"client_id" validate:"omitempty,max=64"`
	WarehouseID string `json:"warehouse_id" validate:"omitempty,max=64"`
}

// CredentialResponse is a credential with the API key masked
type CredentialResponse struct {
	ID            uuid.UUID                   `json:"id"`
	Marketplace   integration.MarketplaceCode `json:"marketplace"`
	APIKey        string                      `json:"api_key"`
	ClientID      string                      `json:"client_id,omitempty"`
	WarehouseID   string                      `json:"warehouse_id,omitempty"`
	MissingFields []string                    `json:"missing_fields,omitempty"`
	Configured    bool                        `json:"configured"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// ToCredentialResponse masks the key and reports missing required fields
func ToCredentialResponse(c *integration.Credential) CredentialResponse {
	masked := c.Masked()
	return CredentialResponse{
		ID:            masked.ID,
		Marketplace:   masked.Marketplace,
		APIKey:        masked.APIKey,
		ClientID:      masked.ClientID,
		WarehouseID:   masked.WarehouseID,
		MissingFields: c.MissingFields(),
		Configured:    c.Validate() == nil,
		UpdatedAt:     masked.UpdatedAt,
	}
}

// ConnectionCheckResponse is the result of a connection check
type ConnectionCheckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// SKU mappings
// ---------------------------------------------------------------------------

// UpsertSkuMappingRequest maps one internal SKU
type UpsertSkuMappingRequest struct {
	InternalSku string `json:"internal_sku" validate:"required,max=100"`
	ExternalSku string `json:"external_sku" validate:"required,max=100"`
}

// SkuMappingResponse is a mapping as shown to the operator
type SkuMappingResponse struct {
	InternalSku    string                      `json:"internal_sku"`
	ExternalSku    string                      `json:"external_sku"`
	Marketplace    integration.MarketplaceCode `json:"marketplace"`
	CachedQuantity int                         `json:"cached_quantity"`
	LastUpdatedAt  time.Time                   `json:"last_updated_at"`
}

// ToSkuMappingResponse converts a domain mapping
func ToSkuMappingResponse(m *integration.SkuMapping) SkuMappingResponse {
	return SkuMappingResponse{
		InternalSku:    m.InternalSku,
		ExternalSku:    m.ExternalSku,
		Marketplace:    m.Marketplace,
		CachedQuantity: m.CachedQuantity,
		LastUpdatedAt:  m.LastUpdatedAt,
	}
}

// ImportSkuMappingsResult reports a bulk import
type ImportSkuMappingsResult struct {
	Imported      int                  `json:"imported"`
	FailedCount   int                  `json:"failed_count"`
	Failures      []csvimport.RowError `json:"failures"`
	TotalMappings int64                `json:"total_mappings"`
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

// InventoryItemResponse is one inventory row
type InventoryItemResponse struct {
	InternalSku  string          `json:"internal_sku"`
	ProductName  string          `json:"product_name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Category     string          `json:"category,omitempty"`
	PushQuantity int             `json:"push_quantity"`
	LowStock     bool            `json:"low_stock"`
}

// ToInventoryItemResponse converts a domain inventory item
func ToInventoryItemResponse(item integration.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		InternalSku:  item.InternalSku,
		ProductName:  item.ProductName,
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
		Category:     item.Category,
		PushQuantity: item.PushQuantity(),
		LowStock:     item.IsLowStock(),
	}
}
