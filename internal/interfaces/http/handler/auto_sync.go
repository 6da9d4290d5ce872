package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/retailcrm/backend/internal/infrastructure/scheduler"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// AutoSyncHandler controls the caller's auto-sync scheduler
type AutoSyncHandler struct {
	BaseHandler
	manager *scheduler.AutoSyncManager
}

// NewAutoSyncHandler creates a new AutoSyncHandler
func NewAutoSyncHandler(manager *scheduler.AutoSyncManager) *AutoSyncHandler {
	return &AutoSyncHandler{manager: manager}
}

// Status godoc
// @Summary      Get the auto-sync state
// @Tags         auto-sync
// @Produce      json
// @Router       /auto-sync [get]
func (h *AutoSyncHandler) Status(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	h.Success(c, dto.ToAutoSyncStatusResponse(h.manager.Status(userID)))
}

// Start godoc
// @Summary      Start auto-sync
// @Description  Runs one stock push (and one product sync when enabled) immediately.
// @Description  Starting a running scheduler is a no-op.
// @Tags         auto-sync
// @Produce      json
// @Router       /auto-sync/start [post]
func (h *AutoSyncHandler) Start(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	status, err := h.manager.Start(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAutoSyncStatusResponse(status))
}

// Stop godoc
// @Summary      Stop auto-sync
// @Description  Passes already running finish and are logged; nothing is re-armed.
// @Tags         auto-sync
// @Produce      json
// @Router       /auto-sync/stop [post]
func (h *AutoSyncHandler) Stop(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	status, err := h.manager.Stop(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAutoSyncStatusResponse(status))
}

// UpdateIntervals godoc
// @Summary      Change the auto-sync intervals
// @Description  A running scheduler restarts with the new intervals after a short delay.
// @Tags         auto-sync
// @Accept       json
// @Produce      json
// @Router       /auto-sync/intervals [put]
func (h *AutoSyncHandler) UpdateIntervals(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateIntervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	status, err := h.manager.UpdateIntervals(c.Request.Context(), userID, *req.ProductSyncIntervalMinutes, *req.StockUpdateIntervalMinutes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAutoSyncStatusResponse(status))
}
