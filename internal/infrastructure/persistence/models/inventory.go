package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// ProductModel is a catalog product as seen by stock sync. The CRM catalog owns
// these rows; this service only reads them.
type ProductModel struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_user_sku,priority:1"`
	Sku          string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_user_sku,priority:2"`
	Name         string          `gorm:"type:varchar(255);not null"`
	Category     string          `gorm:"type:varchar(100)"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to an integration.InventoryItem.
func (m *ProductModel) ToDomain() integration.InventoryItem {
	return integration.InventoryItem{
		InternalSku:  m.Sku,
		ProductName:  m.Name,
		CurrentStock: m.CurrentStock,
		MinStock:     m.MinStock,
		Category:     m.Category,
	}
}
