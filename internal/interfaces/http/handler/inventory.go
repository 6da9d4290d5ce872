package handler

import (
	"github.com/gin-gonic/gin"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
)

// InventoryHandler exposes the inventory read model
type InventoryHandler struct {
	BaseHandler
	inventoryService *appintegration.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *appintegration.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List godoc
// @Summary      List inventory items with their push quantity
// @Tags         inventory
// @Produce      json
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	items, err := h.inventoryService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, int64(len(items)), 0)
}

// LowStock godoc
// @Summary      List items whose current stock is below their minimum
// @Tags         inventory
// @Produce      json
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	items, err := h.inventoryService.LowStock(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, int64(len(items)), 0)
}
