package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/persistence/models"
)

// GormSkuMappingRepository implements integration.SkuMappingRepository using GORM
type GormSkuMappingRepository struct {
	db *gorm.DB
}

// Ensure GormSkuMappingRepository implements SkuMappingRepository
var _ integration.SkuMappingRepository = (*GormSkuMappingRepository)(nil)

// NewGormSkuMappingRepository creates a new GormSkuMappingRepository
func NewGormSkuMappingRepository(db *gorm.DB) *GormSkuMappingRepository {
	return &GormSkuMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// FindByUserAndMarketplace lists the mappings of a user on one marketplace ordered by internal SKU
func (r *GormSkuMappingRepository) FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) ([]integration.SkuMapping, error) {
	var mappingModels []models.SkuMappingModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedByOn(userID, marketplace)).
		Order("internal_sku ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]integration.SkuMapping, len(mappingModels))
	for i := range mappingModels {
		mappings[i] = *mappingModels[i].ToDomain()
	}
	return mappings, nil
}

// FindByInternalSku finds the mapping of one internal SKU
func (r *GormSkuMappingRepository) FindByInternalSku(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) (*integration.SkuMapping, error) {
	return r.findOne(ctx, userID, marketplace, "internal_sku = ?", internalSku)
}

// FindByExternalSku finds the mapping that owns an external SKU
func (r *GormSkuMappingRepository) FindByExternalSku(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, externalSku string) (*integration.SkuMapping, error) {
	return r.findOne(ctx, userID, marketplace, "external_sku = ?", externalSku)
}

func (r *GormSkuMappingRepository) findOne(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, cond string, value string) (*integration.SkuMapping, error) {
	var model models.SkuMappingModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedByOn(userID, marketplace)).
		Where(cond, value).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByUserAndMarketplace counts the mappings of a user on one marketplace
func (r *GormSkuMappingRepository) CountByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SkuMappingModel{}).
		Scopes(ownedByOn(userID, marketplace)).
		Count(&count).Error
	return count, err
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Upsert inserts the mapping or re-points the existing internal SKU at the new external SKU
func (r *GormSkuMappingRepository) Upsert(ctx context.Context, mapping *integration.SkuMapping) error {
	var model models.SkuMappingModel
	model.FromDomain(mapping)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "marketplace"}, {Name: "internal_sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_sku", "last_updated_at", "updated_at"}),
	}).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// the external SKU index is the only one the upsert does not absorb
		return integration.ErrDuplicateExternalSku
	}
	return err
}

// UpdateCachedQuantities stores the quantities last seen on the marketplace, keyed by internal SKU
func (r *GormSkuMappingRepository) UpdateCachedQuantities(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, quantities map[string]int, at time.Time) error {
	if len(quantities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for internalSku, qty := range quantities {
			if qty < 0 {
				qty = 0
			}
			if err := tx.Model(&models.SkuMappingModel{}).
				Scopes(ownedByOn(userID, marketplace)).
				Where("internal_sku = ?", internalSku).
				Updates(map[string]any{
					"cached_quantity": qty,
					"last_updated_at": at,
					"updated_at":      at,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the mapping of one internal SKU
func (r *GormSkuMappingRepository) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) error {
	result := r.db.WithContext(ctx).
		Scopes(ownedByOn(userID, marketplace)).
		Where("internal_sku = ?", internalSku).
		Delete(&models.SkuMappingModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrMappingNotFound
	}
	return nil
}
