package integration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SkuMapping Entity
// ---------------------------------------------------------------------------

// SkuMapping maps an internal SKU to the identifier a marketplace uses for it.
// It is unique per (user, marketplace, internal SKU) and an external SKU may
// belong to only one internal SKU within a marketplace.
type SkuMapping struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Marketplace MarketplaceCode
	InternalSku string
	ExternalSku string
	// CachedQuantity is the last quantity pushed or read back, for display only.
	// Pushes always read stock from the inventory.
	CachedQuantity int
	LastUpdatedAt  time.Time
	CreatedAt      time.Time
}

// NewSkuMapping creates a new SKU mapping
func NewSkuMapping(userID uuid.UUID, marketplace MarketplaceCode, internalSku, externalSku string) (*SkuMapping, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if !marketplace.IsValid() {
		return nil, ErrInvalidMarketplace
	}
	internalSku = strings.TrimSpace(internalSku)
	if internalSku == "" {
		return nil, ErrMappingInvalidInternalSku
	}
	externalSku = strings.TrimSpace(externalSku)
	if externalSku == "" {
		return nil, ErrMappingInvalidExternalSku
	}

	now := time.Now()
	return &SkuMapping{
		ID:            uuid.New(),
		UserID:        userID,
		Marketplace:   marketplace,
		InternalSku:   internalSku,
		ExternalSku:   externalSku,
		LastUpdatedAt: now,
		CreatedAt:     now,
	}, nil
}

// Remap points the mapping at a different external SKU
func (m *SkuMapping) Remap(externalSku string) error {
	externalSku = strings.TrimSpace(externalSku)
	if externalSku == "" {
		return ErrMappingInvalidExternalSku
	}
	m.ExternalSku = externalSku
	m.LastUpdatedAt = time.Now()
	return nil
}

// RecordQuantity stores the quantity last seen on the marketplace
func (m *SkuMapping) RecordQuantity(quantity int, at time.Time) {
	if quantity < 0 {
		quantity = 0
	}
	m.CachedQuantity = quantity
	m.LastUpdatedAt = at
}

// EnsureExternalSkuAvailable rejects mapping externalSku to internalSku when
// the external SKU already belongs to another internal SKU.
func EnsureExternalSkuAvailable(owner *SkuMapping, internalSku string) error {
	if owner == nil {
		return nil
	}
	if owner.InternalSku != strings.TrimSpace(internalSku) {
		return ErrDuplicateExternalSku
	}
	return nil
}

// SkuMappingRepository defines persistence for SKU mappings
type SkuMappingRepository interface {
	FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode) ([]SkuMapping, error)
	// FindByInternalSku returns ErrMappingNotFound when absent
	FindByInternalSku(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode, internalSku string) (*SkuMapping, error)
	// FindByExternalSku returns ErrMappingNotFound when absent
	FindByExternalSku(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode, externalSku string) (*SkuMapping, error)
	// Upsert inserts or replaces the mapping keyed on internal SKU
	Upsert(ctx context.Context, mapping *SkuMapping) error
	// UpdateCachedQuantities sets cached quantities keyed by internal SKU
	UpdateCachedQuantities(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode, quantities map[string]int, at time.Time) error
	Delete(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode, internalSku string) error
	CountByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode) (int64, error)
}
