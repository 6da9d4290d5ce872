package integration

import (
	"context"
	"strings"
)

// ---------------------------------------------------------------------------
// MarketplaceCode
// ---------------------------------------------------------------------------

// MarketplaceCode identifies an external marketplace
type MarketplaceCode string

const (
	// MarketplaceWildberries is the "W" marketplace
	MarketplaceWildberries MarketplaceCode = "WILDBERRIES"
	// MarketplaceOzon is the "O" marketplace
	MarketplaceOzon MarketplaceCode = "OZON"
)

// AllMarketplaces returns every supported marketplace in a stable order
func AllMarketplaces() []MarketplaceCode {
	return []MarketplaceCode{MarketplaceWildberries, MarketplaceOzon}
}

// IsValid returns true if the marketplace code is supported
func (c MarketplaceCode) IsValid() bool {
	switch c {
	case MarketplaceWildberries, MarketplaceOzon:
		return true
	default:
		return false
	}
}

// String returns the string representation of MarketplaceCode
func (c MarketplaceCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the marketplace
func (c MarketplaceCode) DisplayName() string {
	switch c {
	case MarketplaceWildberries:
		return "Wildberries"
	case MarketplaceOzon:
		return "Ozon"
	default:
		return string(c)
	}
}

// RequiresClientID reports whether the marketplace authenticates with a client id
func (c MarketplaceCode) RequiresClientID() bool {
	return c == MarketplaceOzon
}

// ParseMarketplaceCode accepts the canonical code, its lowercase form or the
// single-letter shorthand ("w", "o").
func ParseMarketplaceCode(s string) (MarketplaceCode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W", "WB", string(MarketplaceWildberries):
		return MarketplaceWildberries, nil
	case "O", string(MarketplaceOzon):
		return MarketplaceOzon, nil
	default:
		return "", ErrInvalidMarketplace
	}
}

// ---------------------------------------------------------------------------
// SyncStatus represents the aggregate outcome of a push
// ---------------------------------------------------------------------------

// SyncStatus represents the aggregate outcome of a push
type SyncStatus string

const (
	// SyncStatusSuccess indicates every item was updated
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates some items were updated and some failed
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates nothing was updated
	SyncStatusFailed SyncStatus = "FAILED"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusPartial, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Push value objects
// ---------------------------------------------------------------------------

// StockItem is one validated line of a batch push
type StockItem struct {
	InternalSku string
	ExternalSku string
	Quantity    int
}

// ItemOutcome is the per-item result of a push
type ItemOutcome string

const (
	ItemOutcomeUpdated  ItemOutcome = "updated"
	ItemOutcomeError    ItemOutcome = "error"
	ItemOutcomeNotFound ItemOutcome = "not_found"
)

// ItemResult is the marketplace's verdict for one external SKU
type ItemResult struct {
	ExternalSku  string      `json:"external_sku"`
	Outcome      ItemOutcome `json:"outcome"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Succeeded returns true if the item was updated
func (r ItemResult) Succeeded() bool {
	return r.Outcome == ItemOutcomeUpdated
}

// PushResult holds the per-item results of one batched push
type PushResult struct {
	Marketplace MarketplaceCode
	Items       []ItemResult
}

// SuccessCount returns the number of updated items
func (r *PushResult) SuccessCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Succeeded() {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of items that were not updated, not-found included
func (r *PushResult) ErrorCount() int {
	return len(r.Items) - r.SuccessCount()
}

// Status classifies the batch from its per-item results.
// An HTTP 200 with zero updated items is a failure.
func (r *PushResult) Status() SyncStatus {
	success := r.SuccessCount()
	switch {
	case success == 0:
		return SyncStatusFailed
	case success < len(r.Items):
		return SyncStatusPartial
	default:
		return SyncStatusSuccess
	}
}

// NotFoundResults marks every item of a batch as not found in the marketplace catalog
func NotFoundResults(items []StockItem, code, message string) []ItemResult {
	results := make([]ItemResult, len(items))
	for i, item := range items {
		results[i] = ItemResult{
			ExternalSku:  item.ExternalSku,
			Outcome:      ItemOutcomeNotFound,
			ErrorCode:    code,
			ErrorMessage: message,
		}
	}
	return results
}

// ConnectionStatus is the result of a credential connection check
type ConnectionStatus struct {
	Success bool
	Message string
	Error   string
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// MarketplaceClient is the port implemented by each marketplace adapter.
// PushStocks issues one batched call carrying every item.
type MarketplaceClient interface {
	// Marketplace returns the marketplace this client talks to
	Marketplace() MarketplaceCode

	// PushStocks sends stock levels and returns one result per item.
	// A catalog mismatch (HTTP 409) yields not-found results and a nil error.
	// When a later batch fails after earlier ones were applied, the result is
	// returned together with the error: applied items keep their outcome and
	// the rest are errors carrying the failure message.
	PushStocks(ctx context.Context, cred Credential, items []StockItem) (*PushResult, error)

	// CheckConnection verifies the credential against the marketplace
	CheckConnection(ctx context.Context, cred Credential) (*ConnectionStatus, error)

	// FetchStocks reads the marketplace's current stock for the given external SKUs
	FetchStocks(ctx context.Context, cred Credential, externalSkus []string) (map[string]int, error)
}

// CredentialResolver is implemented by clients that complete a credential
// from the marketplace itself before any stock is exchanged. A credential the
// marketplace cannot complete yields ErrConfigurationMissing.
type CredentialResolver interface {
	ResolveCredential(ctx context.Context, cred Credential) (*Credential, error)
}

// MarketplaceRegistry resolves the client for a marketplace
type MarketplaceRegistry interface {
	Client(code MarketplaceCode) (MarketplaceClient, error)
}
