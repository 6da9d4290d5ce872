package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/retailcrm/backend/internal/domain/integration"
)

const (
	ozonNotFoundCode          = "NOT_FOUND"
	ozonNotFoundMessage       = "item not found in Ozon catalog"
	ozonMissingInResponseCode = "MISSING_IN_RESPONSE"
	ozonStockInfoLimit        = 1000
	ozonFBSStockType          = "fbs"
)

// OzonClient implements integration.MarketplaceClient for the Ozon Seller API
type OzonClient struct {
	config     *OzonConfig
	httpClient *http.Client
}

// Ensure OzonClient implements the client ports
var (
	_ integration.MarketplaceClient  = (*OzonClient)(nil)
	_ integration.CredentialResolver = (*OzonClient)(nil)
)

// NewOzonClient creates a new Ozon client
func NewOzonClient(config *OzonConfig) (*OzonClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OzonClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Marketplace returns the marketplace code
func (c *OzonClient) Marketplace() integration.MarketplaceCode {
	return integration.MarketplaceOzon
}

// PushStocks sets FBS warehouse stock for every item and maps the per-item
// verdicts. HTTP 200 with updated=false items is not an error here; the
// orchestrator classifies the batch.
func (c *OzonClient) PushStocks(ctx context.Context, cred integration.Credential, items []integration.StockItem) (*integration.PushResult, error) {
	if len(items) == 0 {
		return &integration.PushResult{Marketplace: integration.MarketplaceOzon, Items: []integration.ItemResult{}}, nil
	}

	warehouseID, err := parseOzonWarehouseID(cred.WarehouseID)
	if err != nil {
		return nil, err
	}

	return pushBatches(integration.MarketplaceOzon, items, c.config.MaxBatchSize,
		func(batch []integration.StockItem) ([]integration.ItemResult, error) {
			return c.pushBatch(ctx, cred, warehouseID, batch)
		})
}

// ResolveCredential rejects a warehouse id Ozon cannot accept. Nothing is sent.
func (c *OzonClient) ResolveCredential(_ context.Context, cred integration.Credential) (*integration.Credential, error) {
	if _, err := parseOzonWarehouseID(cred.WarehouseID); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c *OzonClient) pushBatch(ctx context.Context, cred integration.Credential, warehouseID int64, batch []integration.StockItem) ([]integration.ItemResult, error) {
	payload := OzonStocksRequest{Stocks: make([]OzonStock, len(batch))}
	for i, item := range batch {
		payload.Stocks[i] = OzonStock{OfferID: item.ExternalSku, Stock: item.Quantity, WarehouseID: warehouseID}
	}

	resp, err := doJSONRequest(ctx, c.httpClient, http.MethodPost, c.url("/v2/products/stocks"), c.headers(cred), payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusConflict {
		message := ozonNotFoundMessage
		var apiErr OzonErrorResponse
		if json.Unmarshal(resp.Body, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return integration.NotFoundResults(batch, ozonNotFoundCode, message), nil
	}
	if !resp.isSuccess() {
		return nil, statusError(integration.MarketplaceOzon, resp)
	}

	var parsed OzonStocksResponse
	if err := decodeBody(resp, &parsed); err != nil {
		return nil, err
	}

	byOffer := make(map[string]OzonStockResult, len(parsed.Result))
	for _, r := range parsed.Result {
		byOffer[r.OfferID] = r
	}

	results := make([]integration.ItemResult, len(batch))
	for i, item := range batch {
		r, ok := byOffer[item.ExternalSku]
		if !ok {
			results[i] = integration.ItemResult{
				ExternalSku:  item.ExternalSku,
				Outcome:      integration.ItemOutcomeError,
				ErrorCode:    ozonMissingInResponseCode,
				ErrorMessage: "item missing from Ozon response",
			}
			continue
		}
		results[i] = mapOzonStockResult(item.ExternalSku, r)
	}
	return results, nil
}

// mapOzonStockResult carries the API's own per-item error through
func mapOzonStockResult(externalSku string, r OzonStockResult) integration.ItemResult {
	if r.Updated {
		return integration.ItemResult{ExternalSku: externalSku, Outcome: integration.ItemOutcomeUpdated}
	}

	out := integration.ItemResult{ExternalSku: externalSku, Outcome: integration.ItemOutcomeError}
	if len(r.Errors) > 0 {
		out.ErrorCode = r.Errors[0].Code
		out.ErrorMessage = r.Errors[0].Message
		if strings.Contains(strings.ToUpper(out.ErrorCode), ozonNotFoundCode) {
			out.Outcome = integration.ItemOutcomeNotFound
		}
	}
	return out
}

// CheckConnection lists warehouses and confirms the configured one exists
func (c *OzonClient) CheckConnection(ctx context.Context, cred integration.Credential) (*integration.ConnectionStatus, error) {
	resp, err := doJSONRequest(ctx, c.httpClient, http.MethodPost, c.url("/v1/warehouse/list"), c.headers(cred), struct{}{})
	if err != nil {
		return nil, err
	}
	if !resp.isSuccess() {
		return &integration.ConnectionStatus{
			Success: false,
			Error:   fmt.Sprintf("Ozon responded with HTTP %d", resp.StatusCode),
		}, nil
	}

	var parsed OzonWarehouseListResponse
	if err := decodeBody(resp, &parsed); err != nil {
		return nil, err
	}

	if cred.WarehouseID != "" {
		found := false
		for _, w := range parsed.Result {
			if strconv.FormatInt(w.WarehouseID, 10) == strings.TrimSpace(cred.WarehouseID) {
				found = true
				break
			}
		}
		if !found {
			return &integration.ConnectionStatus{
				Success: false,
				Error:   fmt.Sprintf("warehouse %s not found in Ozon account", cred.WarehouseID),
			}, nil
		}
	}

	return &integration.ConnectionStatus{
		Success: true,
		Message: fmt.Sprintf("Connected to Ozon, %d warehouse(s) available", len(parsed.Result)),
	}, nil
}

// FetchStocks reads present FBS stock for the given offer ids
func (c *OzonClient) FetchStocks(ctx context.Context, cred integration.Credential, externalSkus []string) (map[string]int, error) {
	stocks := make(map[string]int, len(externalSkus))
	for _, batch := range chunkStrings(externalSkus, ozonStockInfoLimit) {
		if len(batch) == 0 {
			continue
		}
		payload := OzonStockInfoRequest{
			Filter: OzonStockInfoFilter{OfferID: batch, Visibility: "ALL"},
			Limit:  ozonStockInfoLimit,
		}
		resp, err := doJSONRequest(ctx, c.httpClient, http.MethodPost, c.url("/v3/product/info/stocks"), c.headers(cred), payload)
		if err != nil {
			return nil, err
		}
		if !resp.isSuccess() {
			return nil, statusError(integration.MarketplaceOzon, resp)
		}

		var parsed OzonStockInfoResponse
		if err := decodeBody(resp, &parsed); err != nil {
			return nil, err
		}
		for _, item := range parsed.Result.Items {
			for _, s := range item.Stocks {
				if s.Type == ozonFBSStockType {
					stocks[item.OfferID] += s.Present
				}
			}
		}
	}
	return stocks, nil
}

func parseOzonWarehouseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: Ozon warehouse_id must be numeric", integration.ErrConfigurationMissing)
	}
	return id, nil
}

func (c *OzonClient) url(path string) string {
	return strings.TrimRight(c.config.APIBaseURL, "/") + path
}

func (c *OzonClient) headers(cred integration.Credential) map[string]string {
	return map[string]string{
		"Client-Id": cred.ClientID,
		"Api-Key":   cred.APIKey,
	}
}
