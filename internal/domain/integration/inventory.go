package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is the catalog's view of stock for one internal SKU.
// It is read-only to the sync workflow.
type InventoryItem struct {
	InternalSku  string
	ProductName  string
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	Category     string
}

// PushQuantity is the whole-unit, non-negative quantity sent to marketplaces
func (i InventoryItem) PushQuantity() int {
	if i.CurrentStock.IsNegative() {
		return 0
	}
	return int(i.CurrentStock.Floor().IntPart())
}

// IsLowStock returns true when current stock is below the configured minimum
func (i InventoryItem) IsLowStock() bool {
	return i.CurrentStock.LessThan(i.MinStock)
}

// InventoryReader reads the inventory snapshot of a user
type InventoryReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]InventoryItem, error)
	ListLowStock(ctx context.Context, userID uuid.UUID) ([]InventoryItem, error)
}
