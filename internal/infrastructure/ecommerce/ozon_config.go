package ecommerce

import "errors"

// OzonConfig holds endpoint and tuning configuration for the Ozon Seller API.
// Client-Id and Api-Key are per user and come from the credential store.
type OzonConfig struct {
	// APIBaseURL is the Seller API host
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxBatchSize is the maximum number of stocks per request
	MaxBatchSize int
}

const (
	// OzonSellerAPIURL is the production Seller API endpoint
	OzonSellerAPIURL = "https://api-seller.ozon.ru"
	// OzonMaxBatchSize is the API limit of stocks per request
	OzonMaxBatchSize = 100
)

// ErrOzonConfigInvalidBatchSize is returned for a batch size above the API limit
var ErrOzonConfigInvalidBatchSize = errors.New("ozon: batch size exceeds API limit")

// NewOzonConfig creates a configuration with production defaults
func NewOzonConfig() *OzonConfig {
	return &OzonConfig{
		APIBaseURL:     OzonSellerAPIURL,
		TimeoutSeconds: 30,
		MaxBatchSize:   OzonMaxBatchSize,
	}
}

// Validate validates the configuration and fills defaults
func (c *OzonConfig) Validate() error {
	if c.MaxBatchSize > OzonMaxBatchSize {
		return ErrOzonConfigInvalidBatchSize
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = OzonMaxBatchSize
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = OzonSellerAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
