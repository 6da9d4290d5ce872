package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/persistence/models"
)

// GormInventoryRepository reads the product catalog as the inventory snapshot
type GormInventoryRepository struct {
	db *gorm.DB
}

// Ensure GormInventoryRepository implements InventoryReader
var _ integration.InventoryReader = (*GormInventoryRepository)(nil)

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// ListByUser returns every product of the user ordered by SKU, with stock as stored now
func (r *GormInventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]integration.InventoryItem, error) {
	return r.list(r.db.WithContext(ctx).Scopes(ownedBy(userID)))
}

// ListLowStock returns products whose current stock is below their minimum
func (r *GormInventoryRepository) ListLowStock(ctx context.Context, userID uuid.UUID) ([]integration.InventoryItem, error) {
	return r.list(r.db.WithContext(ctx).Scopes(ownedBy(userID)).Where("current_stock < min_stock"))
}

func (r *GormInventoryRepository) list(query *gorm.DB) ([]integration.InventoryItem, error) {
	var productModels []models.ProductModel
	if err := query.Order("sku ASC").Find(&productModels).Error; err != nil {
		return nil, err
	}

	items := make([]integration.InventoryItem, len(productModels))
	for i := range productModels {
		items[i] = productModels[i].ToDomain()
	}
	return items, nil
}

// SaveProduct inserts or updates a product row keyed on (user, sku).
// The CRM catalog normally owns these rows; this is used by seed tooling and tests.
func (r *GormInventoryRepository) SaveProduct(ctx context.Context, userID uuid.UUID, item integration.InventoryItem) error {
	now := time.Now()
	model := models.ProductModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:       userID,
		Sku:          item.InternalSku,
		Name:         item.ProductName,
		Category:     item.Category,
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "current_stock", "min_stock", "updated_at"}),
	}).Create(&model).Error
}
