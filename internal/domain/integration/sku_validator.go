package integration

import "strings"

// StockCandidate is an already-normalized update item before validation.
// ExternalSku and Stock are optional.
type StockCandidate struct {
	InternalSku string
	ExternalSku *string
	Stock       *int
}

// ValidationResult partitions candidates into pushable items and a skip count
type ValidationResult struct {
	ValidProducts []StockItem
	InvalidCount  int
}

// ValidCount returns the number of valid items
func (r ValidationResult) ValidCount() int {
	return len(r.ValidProducts)
}

// ValidateStockCandidates keeps the candidates that carry a non-blank external
// SKU. Missing stock defaults to 0 and negative stock is clamped to 0.
// ValidCount()+InvalidCount always equals len(candidates).
func ValidateStockCandidates(candidates []StockCandidate) ValidationResult {
	result := ValidationResult{ValidProducts: make([]StockItem, 0, len(candidates))}
	for _, c := range candidates {
		if c.ExternalSku == nil {
			result.InvalidCount++
			continue
		}
		externalSku := strings.TrimSpace(*c.ExternalSku)
		if externalSku == "" {
			result.InvalidCount++
			continue
		}

		quantity := 0
		if c.Stock != nil && *c.Stock > 0 {
			quantity = *c.Stock
		}
		result.ValidProducts = append(result.ValidProducts, StockItem{
			InternalSku: strings.TrimSpace(c.InternalSku),
			ExternalSku: externalSku,
			Quantity:    quantity,
		})
	}
	return result
}
