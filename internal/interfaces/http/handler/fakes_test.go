package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type credentialKey struct {
	userID      uuid.UUID
	marketplace integration.MarketplaceCode
}

type memCredentials struct {
	mu    sync.Mutex
	creds map[credentialKey]integration.Credential
}

func newMemCredentials() *memCredentials {
	return &memCredentials{creds: make(map[credentialKey]integration.Credential)}
}

func (r *memCredentials) FindByUserAndMarketplace(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*integration.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[credentialKey{userID, marketplace}]
	if !ok {
		return nil, integration.ErrCredentialNotFound
	}
	return &cred, nil
}

func (r *memCredentials) FindAllByUser(_ context.Context, userID uuid.UUID) ([]integration.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.Credential
	for _, code := range integration.AllMarketplaces() {
		if cred, ok := r.creds[credentialKey{userID, code}]; ok {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (r *memCredentials) Save(_ context.Context, cred *integration.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[credentialKey{cred.UserID, cred.Marketplace}] = *cred
	return nil
}

func (r *memCredentials) Delete(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := credentialKey{userID, marketplace}
	if _, ok := r.creds[key]; !ok {
		return integration.ErrCredentialNotFound
	}
	delete(r.creds, key)
	return nil
}

type memMappings struct {
	mu       sync.Mutex
	mappings []integration.SkuMapping
}

func (r *memMappings) scoped(userID uuid.UUID, marketplace integration.MarketplaceCode) []int {
	var idx []int
	for i, m := range r.mappings {
		if m.UserID == userID && m.Marketplace == marketplace {
			idx = append(idx, i)
		}
	}
	return idx
}

func (r *memMappings) FindByUserAndMarketplace(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) ([]integration.SkuMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []integration.SkuMapping{}
	for _, i := range r.scoped(userID, marketplace) {
		out = append(out, r.mappings[i])
	}
	return out, nil
}

func (r *memMappings) find(userID uuid.UUID, marketplace integration.MarketplaceCode, match func(integration.SkuMapping) bool) (*integration.SkuMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.scoped(userID, marketplace) {
		if match(r.mappings[i]) {
			m := r.mappings[i]
			return &m, nil
		}
	}
	return nil, integration.ErrMappingNotFound
}

func (r *memMappings) FindByInternalSku(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) (*integration.SkuMapping, error) {
	return r.find(userID, marketplace, func(m integration.SkuMapping) bool { return m.InternalSku == internalSku })
}

func (r *memMappings) FindByExternalSku(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, externalSku string) (*integration.SkuMapping, error) {
	return r.find(userID, marketplace, func(m integration.SkuMapping) bool { return m.ExternalSku == externalSku })
}

func (r *memMappings) Upsert(_ context.Context, mapping *integration.SkuMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.scoped(mapping.UserID, mapping.Marketplace) {
		if r.mappings[i].InternalSku == mapping.InternalSku {
			r.mappings[i] = *mapping
			return nil
		}
	}
	r.mappings = append(r.mappings, *mapping)
	return nil
}

func (r *memMappings) UpdateCachedQuantities(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, quantities map[string]int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.scoped(userID, marketplace) {
		if q, ok := quantities[r.mappings[i].InternalSku]; ok {
			r.mappings[i].RecordQuantity(q, at)
		}
	}
	return nil
}

func (r *memMappings) Delete(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.scoped(userID, marketplace) {
		if r.mappings[i].InternalSku == internalSku {
			r.mappings = append(r.mappings[:i], r.mappings[i+1:]...)
			return nil
		}
	}
	return integration.ErrMappingNotFound
}

func (r *memMappings) CountByUserAndMarketplace(_ context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.scoped(userID, marketplace))), nil
}

type memInventory struct {
	items []integration.InventoryItem
}

func (r *memInventory) ListByUser(context.Context, uuid.UUID) ([]integration.InventoryItem, error) {
	return r.items, nil
}

func (r *memInventory) ListLowStock(context.Context, uuid.UUID) ([]integration.InventoryItem, error) {
	var out []integration.InventoryItem
	for _, item := range r.items {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	return out, nil
}

func stockItem(sku string, current, min int64) integration.InventoryItem {
	return integration.InventoryItem{
		InternalSku:  sku,
		ProductName:  "Product " + sku,
		CurrentStock: decimal.NewFromInt(current),
		MinStock:     decimal.NewFromInt(min),
	}
}

// ---------------------------------------------------------------------------
// Marketplace client
// ---------------------------------------------------------------------------

type fakeClient struct {
	code integration.MarketplaceCode

	mu     sync.Mutex
	pushed [][]integration.StockItem
	push   func(items []integration.StockItem) (*integration.PushResult, error)
	stocks map[string]int
}

func (f *fakeClient) Marketplace() integration.MarketplaceCode { return f.code }

func (f *fakeClient) PushStocks(_ context.Context, _ integration.Credential, items []integration.StockItem) (*integration.PushResult, error) {
	f.mu.Lock()
	f.pushed = append(f.pushed, items)
	push := f.push
	f.mu.Unlock()
	if push != nil {
		return push(items)
	}
	results := make([]integration.ItemResult, len(items))
	for i, item := range items {
		results[i] = integration.ItemResult{ExternalSku: item.ExternalSku, Outcome: integration.ItemOutcomeUpdated}
	}
	return &integration.PushResult{Marketplace: f.code, Items: results}, nil
}

func (f *fakeClient) CheckConnection(context.Context, integration.Credential) (*integration.ConnectionStatus, error) {
	return &integration.ConnectionStatus{Success: true, Message: "connected"}, nil
}

func (f *fakeClient) FetchStocks(_ context.Context, _ integration.Credential, externalSkus []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, sku := range externalSkus {
		if q, ok := f.stocks[sku]; ok {
			out[sku] = q
		}
	}
	return out, nil
}

func (f *fakeClient) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

type fakeRegistry map[integration.MarketplaceCode]integration.MarketplaceClient

func (r fakeRegistry) Client(code integration.MarketplaceCode) (integration.MarketplaceClient, error) {
	if c, ok := r[code]; ok {
		return c, nil
	}
	return nil, integration.ErrClientNotRegistered
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// authenticated stands in for the JWT middleware
func authenticated(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.JWTUserIDKey, userID)
		}
		c.Next()
	}
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}
