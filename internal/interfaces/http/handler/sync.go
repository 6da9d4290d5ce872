package handler

import (
	"github.com/gin-gonic/gin"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// SyncHandler handles manual sync and sync log endpoints
type SyncHandler struct {
	BaseHandler
	syncService *appintegration.StockSyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *appintegration.StockSyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncStocks godoc
// @Summary      Push the stock of every mapped SKU to the marketplace
// @Description  Configuration errors abort before anything is logged (422).
// @Description  A pass with no valid item is logged and answered with 422.
// @Description  A pass that updated nothing is logged and answered with 502.
// @Tags         sync
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sync/stocks [post]
func (h *SyncHandler) SyncStocks(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	outcome, err := h.syncService.SyncStocks(c.Request.Context(), userID, marketplace, integration.SyncTriggerManual)
	h.respondOutcome(c, outcome, err)
}

// SyncItems godoc
// @Summary      Push an explicit list of items
// @Description  Items may use the normalized keys (internal_sku, external_sku, stock)
// @Description  or the legacy per-marketplace keys (wildberries_sku, ozon_sku, ...).
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sync/items [post]
func (h *SyncHandler) SyncItems(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.SyncItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	candidates := appintegration.NormalizeLegacyItems(marketplace, req.Items)
	outcome, err := h.syncService.SyncItems(c.Request.Context(), userID, marketplace, candidates)
	h.respondOutcome(c, outcome, err)
}

// SyncProducts godoc
// @Summary      Pull marketplace stock into the cached quantities of the mappings
// @Tags         sync
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sync/products [post]
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	outcome, err := h.syncService.SyncProducts(c.Request.Context(), userID, marketplace, integration.SyncTriggerManual)
	h.respondOutcome(c, outcome, err)
}

// ListLogs godoc
// @Summary      List sync log entries, newest first
// @Tags         sync
// @Produce      json
// @Param        limit query int false "At most 50"
// @Router       /sync/logs [get]
func (h *SyncHandler) ListLogs(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var query dto.SyncLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = integration.DefaultSyncLogCapacity
	}

	entries, err := h.syncService.ListLogs(c.Request.Context(), userID, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, int64(len(entries)), query.Limit)
}

// ClearLogs godoc
// @Summary      Remove every sync log entry of the caller
// @Tags         sync
// @Router       /sync/logs [delete]
func (h *SyncHandler) ClearLogs(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.syncService.ClearLogs(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// respondOutcome answers a sync call. A logged pass that failed keeps its
// outcome in data next to the error.
func (h *SyncHandler) respondOutcome(c *gin.Context, outcome *appintegration.SyncOutcome, err error) {
	if outcome == nil {
		if err == nil {
			h.InternalError(c, "Sync returned no outcome")
			return
		}
		h.HandleError(c, err)
		return
	}

	data := dto.ToSyncOutcomeResponse(outcome)
	var code, message string
	switch {
	case err != nil:
		code, message = errorCode(err)
	case outcome.NoValidItems:
		code, message = dto.ErrCodeNoValidItems, outcome.Message
	default:
		h.Success(c, data)
		return
	}

	resp := dto.NewErrorResponseWithRequestID(code, message, getRequestID(c))
	resp.Data = data
	c.JSON(dto.GetHTTPStatus(code), resp)
}
