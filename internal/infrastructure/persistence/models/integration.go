package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// CredentialModel is the persistence model for integration.Credential.
// APIKey holds the sealed value; the repository seals and opens it.
type CredentialModel struct {
	BaseModel
	UserID      uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_credential_user_marketplace,priority:1"`
	Marketplace integration.MarketplaceCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_credential_user_marketplace,priority:2"`
	APIKey      string                      `gorm:"type:text;not null"`
	ClientID    string                      `gorm:"type:varchar(100)"`
	WarehouseID string                      `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "marketplace_credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *CredentialModel) ToDomain() *integration.Credential {
	return &integration.Credential{
		ID:          m.ID,
		UserID:      m.UserID,
		Marketplace: m.Marketplace,
		APIKey:      m.APIKey,
		ClientID:    m.ClientID,
		WarehouseID: m.WarehouseID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Credential.
func (m *CredentialModel) FromDomain(c *integration.Credential) {
	m.ID = c.ID
	m.UserID = c.UserID
	m.Marketplace = c.Marketplace
	m.APIKey = c.APIKey
	m.ClientID = c.ClientID
	m.WarehouseID = c.WarehouseID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ---------------------------------------------------------------------------
// SKU mappings
// ---------------------------------------------------------------------------

// SkuMappingModel is the persistence model for integration.SkuMapping.
// Both (user, marketplace, internal_sku) and (user, marketplace, external_sku) are unique.
type SkuMappingModel struct {
	BaseModel
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_sku_mapping_internal,priority:1;uniqueIndex:idx_sku_mapping_external,priority:1"`
	Marketplace    integration.MarketplaceCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_sku_mapping_internal,priority:2;uniqueIndex:idx_sku_mapping_external,priority:2"`
	InternalSku    string                      `gorm:"type:varchar(100);not null;uniqueIndex:idx_sku_mapping_internal,priority:3"`
	ExternalSku    string                      `gorm:"type:varchar(100);not null;uniqueIndex:idx_sku_mapping_external,priority:3"`
	CachedQuantity int                         `gorm:"not null;default:0"`
	LastUpdatedAt  time.Time                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SkuMappingModel) TableName() string {
	return "sku_mappings"
}

// ToDomain converts the persistence model to a domain SkuMapping.
func (m *SkuMappingModel) ToDomain() *integration.SkuMapping {
	return &integration.SkuMapping{
		ID:             m.ID,
		UserID:         m.UserID,
		Marketplace:    m.Marketplace,
		InternalSku:    m.InternalSku,
		ExternalSku:    m.ExternalSku,
		CachedQuantity: m.CachedQuantity,
		LastUpdatedAt:  m.LastUpdatedAt,
		CreatedAt:      m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SkuMapping.
func (m *SkuMappingModel) FromDomain(s *integration.SkuMapping) {
	m.ID = s.ID
	m.UserID = s.UserID
	m.Marketplace = s.Marketplace
	m.InternalSku = s.InternalSku
	m.ExternalSku = s.ExternalSku
	m.CachedQuantity = s.CachedQuantity
	m.LastUpdatedAt = s.LastUpdatedAt
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.LastUpdatedAt
}

// ---------------------------------------------------------------------------
// Sync log
// ---------------------------------------------------------------------------

// SyncLogModel is the persisted form of integration.SyncLogEntry.
type SyncLogModel struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID                   `gorm:"type:uuid;not null;index:idx_sync_log_user_completed,priority:1"`
	Marketplace     integration.MarketplaceCode `gorm:"type:varchar(20);not null"`
	Operation       integration.SyncOperation   `gorm:"type:varchar(20);not null"`
	Status          integration.SyncLogStatus   `gorm:"type:varchar(10);not null"`
	TriggeredBy     integration.SyncTrigger     `gorm:"type:varchar(10);not null;default:'manual'"`
	Message         string                      `gorm:"type:text"`
	ExecutionTimeMs int64                       `gorm:"not null;default:0"`
	UpdatedCount    int                         `gorm:"not null;default:0"`
	ErroredCount    int                         `gorm:"not null;default:0"`
	PerItemResults  string                      `gorm:"type:text"`
	CreatedAt       time.Time                   `gorm:"not null"`
	// CompletedAt is stamped by the store on append and orders the log
	CompletedAt     time.Time                   `gorm:"not null;index:idx_sync_log_user_completed,priority:2"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *SyncLogModel) ToDomain() integration.SyncLogEntry {
	entry := integration.SyncLogEntry{
		ID:              m.ID,
		UserID:          m.UserID,
		Marketplace:     m.Marketplace,
		Operation:       m.Operation,
		Status:          m.Status,
		Trigger:         m.TriggeredBy,
		Message:         m.Message,
		ExecutionTimeMs: m.ExecutionTimeMs,
		ItemCounts: integration.ItemCounts{
			Updated: m.UpdatedCount,
			Errored: m.ErroredCount,
		},
		CreatedAt: m.CreatedAt,
	}

	if m.PerItemResults != "" {
		var results []integration.ItemResult
		if err := json.Unmarshal([]byte(m.PerItemResults), &results); err == nil {
			entry.PerItemResults = results
		}
	}

	return entry
}

// FromDomain populates the persistence model from a domain SyncLogEntry.
func (m *SyncLogModel) FromDomain(e integration.SyncLogEntry) error {
	m.ID = e.ID
	m.UserID = e.UserID
	m.Marketplace = e.Marketplace
	m.Operation = e.Operation
	m.Status = e.Status
	m.TriggeredBy = e.Trigger
	m.Message = e.Message
	m.ExecutionTimeMs = e.ExecutionTimeMs
	m.UpdatedCount = e.ItemCounts.Updated
	m.ErroredCount = e.ItemCounts.Errored
	m.CreatedAt = e.CreatedAt
	m.PerItemResults = ""

	if len(e.PerItemResults) > 0 {
		raw, err := json.Marshal(e.PerItemResults)
		if err != nil {
			return err
		}
		m.PerItemResults = string(raw)
	}
	return nil
}
