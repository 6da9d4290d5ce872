package ecommerce

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/retailcrm/backend/internal/domain/integration"
)

const (
	wildberriesNotFoundCode    = "NotFound"
	wildberriesNotFoundMessage = "item not found in Wildberries catalog"
)

// WildberriesClient implements integration.MarketplaceClient for Wildberries
type WildberriesClient struct {
	config     *WildberriesConfig
	httpClient *http.Client
}

// Ensure WildberriesClient implements the client ports
var (
	_ integration.MarketplaceClient  = (*WildberriesClient)(nil)
	_ integration.CredentialResolver = (*WildberriesClient)(nil)
)

// NewWildberriesClient creates a new Wildberries client
func NewWildberriesClient(config *WildberriesConfig) (*WildberriesClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WildberriesClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Marketplace returns the marketplace code
func (c *WildberriesClient) Marketplace() integration.MarketplaceCode {
	return integration.MarketplaceWildberries
}

// PushStocks sets warehouse stock for every item. A 409 answer means the
// catalog does not know the SKUs, so the whole batch is reported not found.
func (c *WildberriesClient) PushStocks(ctx context.Context, cred integration.Credential, items []integration.StockItem) (*integration.PushResult, error) {
	if len(items) == 0 {
		return &integration.PushResult{Marketplace: integration.MarketplaceWildberries, Items: []integration.ItemResult{}}, nil
	}

	warehouseID, err := c.resolveWarehouse(ctx, cred)
	if err != nil {
		return nil, err
	}

	return pushBatches(integration.MarketplaceWildberries, items, c.config.MaxBatchSize,
		func(batch []integration.StockItem) ([]integration.ItemResult, error) {
			return c.pushBatch(ctx, cred, warehouseID, batch)
		})
}

func (c *WildberriesClient) pushBatch(ctx context.Context, cred integration.Credential, warehouseID string, batch []integration.StockItem) ([]integration.ItemResult, error) {
	payload := WildberriesStocksRequest{Stocks: make([]WildberriesStock, len(batch))}
	for i, item := range batch {
		payload.Stocks[i] = WildberriesStock{Sku: item.ExternalSku, Amount: item.Quantity}
	}

	resp, err := doJSONRequest(ctx, c.httpClient, http.MethodPut, c.url("/api/v3/stocks/"+warehouseID), c.headers(cred), payload)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.isSuccess():
		results := make([]integration.ItemResult, len(batch))
		for i, item := range batch {
			results[i] = integration.ItemResult{ExternalSku: item.ExternalSku, Outcome: integration.ItemOutcomeUpdated}
		}
		return results, nil
	case resp.StatusCode == http.StatusConflict:
		code, message := parseWildberriesError(resp.Body)
		if code == "" {
			code = wildberriesNotFoundCode
		}
		if message == "" {
			message = wildberriesNotFoundMessage
		}
		return integration.NotFoundResults(batch, code, message), nil
	default:
		return nil, statusError(integration.MarketplaceWildberries, resp)
	}
}

// CheckConnection pings the API with the seller token
func (c *WildberriesClient) CheckConnection(ctx context.Context, cred integration.Credential) (*integration.ConnectionStatus, error) {
	resp, err := doJSONRequest(ctx, c.httpClient, http.MethodGet, c.url("/ping"), c.headers(cred), nil)
	if err != nil {
		return nil, err
	}
	if !resp.isSuccess() {
		return &integration.ConnectionStatus{
			Success: false,
			Error:   fmt.Sprintf("Wildberries responded with HTTP %d", resp.StatusCode),
		}, nil
	}
	return &integration.ConnectionStatus{
		Success: true,
		Message: "Connected to Wildberries",
	}, nil
}

// FetchStocks reads the warehouse stock of the given SKUs
func (c *WildberriesClient) FetchStocks(ctx context.Context, cred integration.Credential, externalSkus []string) (map[string]int, error) {
	stocks := make(map[string]int, len(externalSkus))
	if len(externalSkus) == 0 {
		return stocks, nil
	}

	warehouseID, err := c.resolveWarehouse(ctx, cred)
	if err != nil {
		return nil, err
	}

	for _, batch := range chunkStrings(externalSkus, c.config.MaxBatchSize) {
		resp, err := doJSONRequest(ctx, c.httpClient, http.MethodPost, c.url("/api/v3/stocks/"+warehouseID),
			c.headers(cred), WildberriesStocksQuery{Skus: batch})
		if err != nil {
			return nil, err
		}
		if !resp.isSuccess() {
			return nil, statusError(integration.MarketplaceWildberries, resp)
		}

		var parsed WildberriesStocksResponse
		if err := decodeBody(resp, &parsed); err != nil {
			return nil, err
		}
		for _, s := range parsed.Stocks {
			stocks[s.Sku] += s.Amount
		}
	}
	return stocks, nil
}

// ResolveCredential fills in the seller's first warehouse when none is saved
func (c *WildberriesClient) ResolveCredential(ctx context.Context, cred integration.Credential) (*integration.Credential, error) {
	warehouseID, err := c.resolveWarehouse(ctx, cred)
	if err != nil {
		return nil, err
	}
	cred.WarehouseID = warehouseID
	return &cred, nil
}

// resolveWarehouse returns the configured warehouse or the seller's first one
func (c *WildberriesClient) resolveWarehouse(ctx context.Context, cred integration.Credential) (string, error) {
	if id := strings.TrimSpace(cred.WarehouseID); id != "" {
		return id, nil
	}

	resp, err := doJSONRequest(ctx, c.httpClient, http.MethodGet, c.url("/api/v3/warehouses"), c.headers(cred), nil)
	if err != nil {
		return "", err
	}
	if !resp.isSuccess() {
		return "", statusError(integration.MarketplaceWildberries, resp)
	}

	var warehouses []WildberriesWarehouse
	if err := decodeBody(resp, &warehouses); err != nil {
		return "", err
	}
	if len(warehouses) == 0 {
		return "", fmt.Errorf("%w: Wildberries account has no seller warehouse", integration.ErrConfigurationMissing)
	}
	return strconv.FormatInt(warehouses[0].ID, 10), nil
}

func (c *WildberriesClient) url(path string) string {
	return strings.TrimRight(c.config.APIBaseURL, "/") + path
}

func (c *WildberriesClient) headers(cred integration.Credential) map[string]string {
	return map[string]string{"Authorization": cred.APIKey}
}
