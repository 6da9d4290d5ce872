package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// CredentialHandler handles marketplace credential endpoints
type CredentialHandler struct {
	BaseHandler
	credentialService *appintegration.CredentialService
}

// NewCredentialHandler creates a new CredentialHandler
func NewCredentialHandler(credentialService *appintegration.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// List godoc
// @Summary      List marketplace credentials
// @Tags         credentials
// @Produce      json
// @Router       /marketplaces/credentials [get]
func (h *CredentialHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	creds, err := h.credentialService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, creds, int64(len(creds)), 0)
}

// Get godoc
// @Summary      Get the masked credential of one marketplace
// @Tags         credentials
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/credentials [get]
func (h *CredentialHandler) Get(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	cred, err := h.credentialService.Get(c.Request.Context(), userID, marketplace)
	if err != nil {
		h.handleCredentialError(c, marketplace, err)
		return
	}
	h.Success(c, cred)
}

// Save godoc
// @Summary      Create or replace the credential of one marketplace
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/credentials [put]
func (h *CredentialHandler) Save(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	var req appintegration.SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cred, err := h.credentialService.Save(c.Request.Context(), userID, marketplace, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cred)
}

// Delete godoc
// @Summary      Remove the credential of one marketplace
// @Tags         credentials
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/credentials [delete]
func (h *CredentialHandler) Delete(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.credentialService.Delete(c.Request.Context(), userID, marketplace); err != nil {
		h.handleCredentialError(c, marketplace, err)
		return
	}
	h.NoContent(c)
}

// CheckConnection godoc
// @Summary      Verify the saved credential against the marketplace
// @Description  A missing or rejected credential is reported in the body with success=false.
// @Tags         credentials
// @Produce      json
// @Param        marketplace path string true "WILDBERRIES or OZON"
// @Router       /marketplaces/{marketplace}/connection-check [post]
func (h *CredentialHandler) CheckConnection(c *gin.Context) {
	userID, marketplace, ok := h.scope(c)
	if !ok {
		return
	}

	result, err := h.credentialService.CheckConnection(c.Request.Context(), userID, marketplace)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// handleCredentialError reports an absent credential as 404 on the credential resource itself
func (h *CredentialHandler) handleCredentialError(c *gin.Context, marketplace integration.MarketplaceCode, err error) {
	if errors.Is(err, integration.ErrCredentialNotFound) {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, marketplace.DisplayName()+" is not configured")
		return
	}
	h.HandleError(c, err)
}
