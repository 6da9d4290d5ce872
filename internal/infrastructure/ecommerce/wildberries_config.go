package ecommerce

import "errors"

// WildberriesConfig holds endpoint and tuning configuration for the Wildberries API.
// Seller tokens are per user and come from the credential store.
type WildberriesConfig struct {
	// APIBaseURL is the marketplace API host
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxBatchSize is the maximum number of stocks per request
	MaxBatchSize int
}

const (
	// WildberriesMarketplaceAPIURL is the production marketplace API endpoint
	WildberriesMarketplaceAPIURL = "https://marketplace-api.wildberries.ru"
	// WildberriesMaxBatchSize is the API limit of stocks per request
	WildberriesMaxBatchSize = 1000
)

// ErrWildberriesConfigInvalidBatchSize is returned for a batch size above the API limit
var ErrWildberriesConfigInvalidBatchSize = errors.New("wildberries: batch size exceeds API limit")

// NewWildberriesConfig creates a configuration with production defaults
func NewWildberriesConfig() *WildberriesConfig {
	return &WildberriesConfig{
		APIBaseURL:     WildberriesMarketplaceAPIURL,
		TimeoutSeconds: 30,
		MaxBatchSize:   WildberriesMaxBatchSize,
	}
}

// Validate validates the configuration and fills defaults
func (c *WildberriesConfig) Validate() error {
	if c.MaxBatchSize > WildberriesMaxBatchSize {
		return ErrWildberriesConfigInvalidBatchSize
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = WildberriesMaxBatchSize
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = WildberriesMarketplaceAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
