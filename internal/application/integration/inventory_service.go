package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// InventoryService exposes the read-only inventory snapshot
type InventoryService struct {
	inventory integration.InventoryReader
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(inventory integration.InventoryReader) *InventoryService {
	return &InventoryService{inventory: inventory}
}

// List returns every inventory item of the user
func (s *InventoryService) List(ctx context.Context, userID uuid.UUID) ([]InventoryItemResponse, error) {
	items, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toInventoryResponses(items), nil
}

// LowStock returns the items whose current stock is below the minimum
func (s *InventoryService) LowStock(ctx context.Context, userID uuid.UUID) ([]InventoryItemResponse, error) {
	items, err := s.inventory.ListLowStock(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toInventoryResponses(items), nil
}

func toInventoryResponses(items []integration.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		out[i] = ToInventoryItemResponse(item)
	}
	return out
}
