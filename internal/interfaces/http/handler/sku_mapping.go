package handler

import (
	"github.com/gin-gonic/gin"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// SkuMappingHandler handles SKU mapping endpoints
type SkuMappingHandler struct {
	BaseHandler
	mappingService *appintegration.SkuMappingService
}

// NewSkuMappingHandler creates a new SkuMappingHandler
func NewSkuMappingHandler(mappingService *appintegration.SkuMappingService) *SkuMappingHandler {
	return &SkuMappingHandler{mappingService: mappingService}
}

// List godoc
// @Summary      List the SKU mappings of one marketplace
// @Tags         sku-mappings
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sku-mappings [get]
func (h *SkuMappingHandler) List(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	mappings, err := h.mappingService.List(c.Request.Context(), userID, marketplace)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mappings, int64(len(mappings)), 0)
}

// Upsert godoc
// @Summary      Map an internal SKU to an external SKU
// @Description  Replaces the previous mapping of the internal SKU. An external SKU
// @Description  already mapped to another internal SKU is rejected with 409.
// @Tags         sku-mappings
// @Accept       json
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sku-mappings [post]
func (h *SkuMappingHandler) Upsert(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	var req appintegration.UpsertSkuMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mapping, err := h.mappingService.Upsert(c.Request.Context(), userID, marketplace, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapping)
}

// Import godoc
// @Summary      Bulk import tab-separated SKU mappings
// @Description  Valid lines are saved; malformed and conflicting lines are listed in failures.
// @Tags         sku-mappings
// @Accept       json
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/sku-mappings/import [post]
func (h *SkuMappingHandler) Import(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.ImportSkuMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.mappingService.Import(c.Request.Context(), userID, marketplace, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Remove the mapping of an internal SKU
// @Tags         sku-mappings
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Param        internalSku path string true "Internal SKU"
// @Router       /marketplaces/{marketplace}/sku-mappings/{internalSku} [delete]
func (h *SkuMappingHandler) Delete(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.mappingService.Delete(c.Request.Context(), userID, marketplace, c.Param("internalSku")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
