package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/domain/shared"
	"github.com/retailcrm/backend/internal/infrastructure/logger"
	"github.com/retailcrm/backend/internal/infrastructure/scheduler"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getUserID returns the authenticated user; false when the JWT middleware did not run
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.GetJWTUserID(c)
	return userID, userID != uuid.Nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a list response with its total
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, limit int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, limit))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// requireUser returns the caller's id or answers 401
func (h *BaseHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return userID, ok
}

// marketplaceParam parses the :marketplace path segment or answers 400
func (h *BaseHandler) marketplaceParam(c *gin.Context) (integration.MarketplaceCode, bool) {
	marketplace, err := integration.ParseMarketplaceCode(c.Param("marketplace"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidMarketplace, "Unknown marketplace: "+c.Param("marketplace"))
		return "", false
	}
	return marketplace, true
}

// scope resolves both the caller and the marketplace of a /marketplaces/:marketplace route
func (h *BaseHandler) scope(c *gin.Context) (uuid.UUID, integration.MarketplaceCode, bool) {
	userID, ok := h.requireUser(c)
	if !ok {
		return uuid.Nil, "", false
	}
	marketplace, ok := h.marketplaceParam(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, marketplace, true
}

// HandleError maps service errors onto the error envelope
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	code, message := errorCode(err)
	h.ErrorWithCode(c, code, message)
}

// errorCode classifies sentinel errors; order matters where errors wrap each other
func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, integration.ErrInvalidMarketplace):
		return dto.ErrCodeInvalidMarketplace, "Unknown marketplace"
	case errors.Is(err, integration.ErrConfigurationMissing),
		errors.Is(err, integration.ErrCredentialNotFound),
		errors.Is(err, integration.ErrClientNotRegistered):
		return dto.ErrCodeConfigurationMissing, trimPrefix(err)
	case errors.Is(err, integration.ErrSyncInProgress):
		return dto.ErrCodeSyncInProgress, "A sync for this marketplace is already running"
	case errors.Is(err, integration.ErrSyncCompleteFailure):
		return dto.ErrCodeSyncFailed, trimPrefix(err)
	case errors.Is(err, integration.ErrPlatformUnavailable):
		return dto.ErrCodeMarketplaceUnavailable, trimPrefix(err)
	case errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse):
		return dto.ErrCodeMarketplaceRequestFailed, trimPrefix(err)
	case errors.Is(err, integration.ErrDuplicateExternalSku):
		return dto.ErrCodeDuplicateExternalSku, trimPrefix(err)
	case errors.Is(err, integration.ErrMappingNotFound):
		return dto.ErrCodeNotFound, "SKU mapping not found"
	case errors.Is(err, integration.ErrMappingInvalidInternalSku),
		errors.Is(err, integration.ErrMappingInvalidExternalSku),
		errors.Is(err, integration.ErrInvalidAPIKey):
		return dto.ErrCodeValidation, trimPrefix(err)
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		return dto.ErrCodeAutoSyncNotRunning, "Auto-sync is not running"
	case errors.Is(err, scheduler.ErrInvalidInterval):
		return dto.ErrCodeAutoSyncInvalidInterval, trimPrefix(err)
	default:
		return dto.ErrCodeInternal, "An unexpected error occurred"
	}
}

// trimPrefix drops the "package: " prefix of sentinel messages
func trimPrefix(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"integration: ", "scheduler: "} {
		msg = strings.ReplaceAll(msg, prefix, "")
	}
	return msg
}
