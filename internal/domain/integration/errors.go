package integration

import (
	"errors"
	"fmt"
)

var (
	// Marketplace errors
	ErrInvalidMarketplace      = errors.New("integration: invalid marketplace code")
	ErrClientNotRegistered     = errors.New("integration: no client registered for marketplace")
	ErrPlatformUnavailable     = errors.New("integration: marketplace temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: marketplace request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid marketplace response")

	// Configuration errors are reported to the operator and never written to the sync log
	ErrConfigurationMissing = errors.New("integration: marketplace configuration missing")
	ErrCredentialNotFound   = errors.New("integration: marketplace credential not found")
	ErrInvalidUserID        = errors.New("integration: invalid user ID")
	ErrInvalidAPIKey        = errors.New("integration: API key is required")

	// Sync errors
	ErrSyncInProgress      = errors.New("integration: sync already in progress for marketplace")
	ErrSyncCompleteFailure = errors.New("integration: marketplace did not update any item")

	// Mapping errors
	ErrMappingInvalidInternalSku = errors.New("integration: internal SKU is required")
	ErrMappingInvalidExternalSku = errors.New("integration: external SKU is required")
	ErrMappingNotFound           = errors.New("integration: SKU mapping not found")
	ErrDuplicateExternalSku      = errors.New("integration: external SKU already mapped to another internal SKU")
)

// HTTPStatusError carries a non-2xx marketplace response that is not a catalog mismatch.
type HTTPStatusError struct {
	Marketplace MarketplaceCode
	StatusCode  int
	Body        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("integration: %s responded with HTTP %d: %s", e.Marketplace, e.StatusCode, e.Body)
}

// Unwrap lets callers match the error with errors.Is(err, ErrPlatformRequestFailed).
func (e *HTTPStatusError) Unwrap() error {
	return ErrPlatformRequestFailed
}

// IsConfigurationError reports whether err belongs to the configuration class,
// which aborts a sync before anything is logged.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) ||
		errors.Is(err, ErrCredentialNotFound) ||
		errors.Is(err, ErrClientNotRegistered) ||
		errors.Is(err, ErrSyncInProgress)
}
