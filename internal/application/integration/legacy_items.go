package integration

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/retailcrm/backend/internal/domain/integration"
)

var (
	genericExternalSkuKeys = []string{"external_sku", "externalSku"}

	marketplaceExternalSkuKeys = map[integration.MarketplaceCode][]string{
		integration.MarketplaceWildberries: {"wildberries_sku", "nm_id"},
		integration.MarketplaceOzon:        {"ozon_sku", "offer_id"},
	}

	internalSkuKeys = []string{"internal_sku", "internalSku", "sku"}
	stockKeys       = []string{"stock", "quantity", "current_stock"}
)

// NormalizeLegacyItems converts loosely-typed update items into validator input.
// This is the only place that knows the legacy field names.
func NormalizeLegacyItems(marketplace integration.MarketplaceCode, items []map[string]any) []integration.StockCandidate {
	externalKeys := append(append([]string{}, genericExternalSkuKeys...), marketplaceExternalSkuKeys[marketplace]...)

	candidates := make([]integration.StockCandidate, 0, len(items))
	for _, item := range items {
		var c integration.StockCandidate
		if v, ok := firstString(item, internalSkuKeys); ok {
			c.InternalSku = v
		}
		if v, ok := firstString(item, externalKeys); ok {
			c.ExternalSku = &v
		}
		if v, ok := firstInt(item, stockKeys); ok {
			c.Stock = &v
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// firstString returns the first key whose value renders to a non-blank string
func firstString(item map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		raw, ok := item[k]
		if !ok || raw == nil {
			continue
		}
		if s := strings.TrimSpace(formatScalar(raw)); s != "" {
			return s, true
		}
	}
	return "", false
}

func firstInt(item map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		raw, ok := item[k]
		if !ok || raw == nil {
			continue
		}
		if n, ok := toInt(raw); ok {
			return n, true
		}
	}
	return 0, false
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case float64:
		f = t
	case float32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Floor(f)), true
}
