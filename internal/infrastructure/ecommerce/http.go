// Package ecommerce contains the marketplace adapters implementing
// integration.MarketplaceClient over the marketplaces' HTTP APIs.
package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a marketplace API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBodySize bounds the raw body carried on HTTPStatusError
const maxErrorBodySize = 2048

// batchFailedCode marks items of a batch that failed or was never sent
const batchFailedCode = "REQUEST_FAILED"

// apiResponse is a raw marketplace response. Status handling is left to the
// caller because 409 carries business meaning.
type apiResponse struct {
	StatusCode int
	Body       []byte
}

func (r *apiResponse) isSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// doJSONRequest sends payload as JSON (when non-nil) and returns the raw response.
// Transport failures wrap integration.ErrPlatformUnavailable.
func doJSONRequest(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ecommerce: failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("ecommerce: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformUnavailable, err)
	}

	return &apiResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// statusError builds the error for a non-2xx, non-409 response
func statusError(marketplace integration.MarketplaceCode, resp *apiResponse) error {
	body := resp.Body
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}
	return &integration.HTTPStatusError{
		Marketplace: marketplace,
		StatusCode:  resp.StatusCode,
		Body:        string(body),
	}
}

// decodeBody unmarshals a successful response body
func decodeBody(resp *apiResponse, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return nil
}

// pushBatches sends items batch by batch in order. A failure in the first
// batch returns only the error. A later failure keeps the results of the
// applied batches, marks every remaining item as an error carrying the
// failure message and returns that result together with the error.
func pushBatches(marketplace integration.MarketplaceCode, items []integration.StockItem, size int, push func([]integration.StockItem) ([]integration.ItemResult, error)) (*integration.PushResult, error) {
	result := &integration.PushResult{
		Marketplace: marketplace,
		Items:       make([]integration.ItemResult, 0, len(items)),
	}

	batches := chunkItems(items, size)
	for i, batch := range batches {
		batchResults, err := push(batch)
		if err != nil {
			if i == 0 {
				return nil, err
			}
			for _, rest := range batches[i:] {
				for _, item := range rest {
					result.Items = append(result.Items, integration.ItemResult{
						ExternalSku:  item.ExternalSku,
						Outcome:      integration.ItemOutcomeError,
						ErrorCode:    batchFailedCode,
						ErrorMessage: err.Error(),
					})
				}
			}
			return result, err
		}
		result.Items = append(result.Items, batchResults...)
	}
	return result, nil
}

// chunkItems splits items into batches of at most size
func chunkItems(items []integration.StockItem, size int) [][]integration.StockItem {
	if size <= 0 || len(items) <= size {
		return [][]integration.StockItem{items}
	}
	batches := make([][]integration.StockItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

// chunkStrings splits values into batches of at most size
func chunkStrings(values []string, size int) [][]string {
	if size <= 0 || len(values) <= size {
		return [][]string{values}
	}
	batches := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		batches = append(batches, values[start:end])
	}
	return batches
}
