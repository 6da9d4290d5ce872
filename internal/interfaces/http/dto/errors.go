package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidMarketplace is used for an unknown :marketplace path segment
	ErrCodeInvalidMarketplace = "ERR_INVALID_MARKETPLACE"
	// ErrCodeInvalidImport is used when a bulk mapping import cannot be parsed at all
	ErrCodeInvalidImport = "ERR_INVALID_IMPORT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeDuplicateExternalSku is used when an external SKU is mapped to another internal SKU
	ErrCodeDuplicateExternalSku = "ERR_DUPLICATE_EXTERNAL_SKU"
)

// Sync error codes
const (
	// ErrCodeConfigurationMissing is used when the marketplace credential is absent or incomplete
	ErrCodeConfigurationMissing = "ERR_CONFIGURATION_MISSING"
	// ErrCodeSyncInProgress is used when a push for the same marketplace is already running
	ErrCodeSyncInProgress = "ERR_SYNC_IN_PROGRESS"
	// ErrCodeNoValidItems is used when validation left nothing to push
	ErrCodeNoValidItems = "ERR_NO_VALID_ITEMS"
	// ErrCodeSyncFailed is used when the marketplace updated no item
	ErrCodeSyncFailed = "ERR_SYNC_FAILED"
	// ErrCodeMarketplaceUnavailable is used for transport failures
	ErrCodeMarketplaceUnavailable = "ERR_MARKETPLACE_UNAVAILABLE"
	// ErrCodeMarketplaceRequestFailed is used for non-2xx marketplace responses
	ErrCodeMarketplaceRequestFailed = "ERR_MARKETPLACE_REQUEST_FAILED"
)

// Auto-sync error codes
const (
	ErrCodeAutoSyncNotRunning      = "ERR_AUTO_SYNC_NOT_RUNNING"
	ErrCodeAutoSyncInvalidInterval = "ERR_AUTO_SYNC_INVALID_INTERVAL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeInvalidMarketplace: http.StatusBadRequest,
	ErrCodeInvalidImport:      http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeDuplicateExternalSku: http.StatusConflict,

	// Sync errors
	ErrCodeConfigurationMissing:     http.StatusUnprocessableEntity,
	ErrCodeSyncInProgress:           http.StatusConflict,
	ErrCodeNoValidItems:             http.StatusUnprocessableEntity,
	ErrCodeSyncFailed:               http.StatusBadGateway,
	ErrCodeMarketplaceUnavailable:   http.StatusBadGateway,
	ErrCodeMarketplaceRequestFailed: http.StatusBadGateway,

	// Auto-sync errors
	ErrCodeAutoSyncNotRunning:      http.StatusConflict,
	ErrCodeAutoSyncInvalidInterval: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeConflict,
	"INVALID_INPUT":    ErrCodeValidation,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INVALID_IMPORT":   ErrCodeInvalidImport,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts legacy error codes to standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if normalized, ok := LegacyErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}
