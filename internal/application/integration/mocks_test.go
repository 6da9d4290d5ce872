package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Repository mocks
// ---------------------------------------------------------------------------

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*integration.Credential, error) {
	args := m.Called(ctx, userID, marketplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Credential), args.Error(1)
}

func (m *MockCredentialRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]integration.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Save(ctx context.Context, cred *integration.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) error {
	args := m.Called(ctx, userID, marketplace)
	return args.Error(0)
}

type MockSkuMappingRepository struct {
	mock.Mock
}

func (m *MockSkuMappingRepository) FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) ([]integration.SkuMapping, error) {
	args := m.Called(ctx, userID, marketplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.SkuMapping), args.Error(1)
}

func (m *MockSkuMappingRepository) FindByInternalSku(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) (*integration.SkuMapping, error) {
	args := m.Called(ctx, userID, marketplace, internalSku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SkuMapping), args.Error(1)
}

func (m *MockSkuMappingRepository) FindByExternalSku(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, externalSku string) (*integration.SkuMapping, error) {
	args := m.Called(ctx, userID, marketplace, externalSku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SkuMapping), args.Error(1)
}

func (m *MockSkuMappingRepository) Upsert(ctx context.Context, mapping *integration.SkuMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockSkuMappingRepository) UpdateCachedQuantities(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, quantities map[string]int, at time.Time) error {
	args := m.Called(ctx, userID, marketplace, quantities, at)
	return args.Error(0)
}

func (m *MockSkuMappingRepository) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) error {
	args := m.Called(ctx, userID, marketplace, internalSku)
	return args.Error(0)
}

func (m *MockSkuMappingRepository) CountByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (int64, error) {
	args := m.Called(ctx, userID, marketplace)
	return args.Get(0).(int64), args.Error(1)
}

type MockInventoryReader struct {
	mock.Mock
}

func (m *MockInventoryReader) ListByUser(ctx context.Context, userID uuid.UUID) ([]integration.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.InventoryItem), args.Error(1)
}

func (m *MockInventoryReader) ListLowStock(ctx context.Context, userID uuid.UUID) ([]integration.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.InventoryItem), args.Error(1)
}

type MockSyncLogStore struct {
	mock.Mock
}

func (m *MockSyncLogStore) Append(ctx context.Context, entry integration.SyncLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncLogStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]integration.SyncLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.SyncLogEntry), args.Error(1)
}

func (m *MockSyncLogStore) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// appended returns the entries passed to Append
func (m *MockSyncLogStore) appended() []integration.SyncLogEntry {
	var out []integration.SyncLogEntry
	for _, call := range m.Calls {
		if call.Method == "Append" {
			out = append(out, call.Arguments.Get(1).(integration.SyncLogEntry))
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Marketplace mocks
// ---------------------------------------------------------------------------

type MockMarketplaceClient struct {
	mock.Mock
	code integration.MarketplaceCode
}

func (m *MockMarketplaceClient) Marketplace() integration.MarketplaceCode {
	return m.code
}

func (m *MockMarketplaceClient) PushStocks(ctx context.Context, cred integration.Credential, items []integration.StockItem) (*integration.PushResult, error) {
	args := m.Called(ctx, cred, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PushResult), args.Error(1)
}

func (m *MockMarketplaceClient) CheckConnection(ctx context.Context, cred integration.Credential) (*integration.ConnectionStatus, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ConnectionStatus), args.Error(1)
}

func (m *MockMarketplaceClient) FetchStocks(ctx context.Context, cred integration.Credential, externalSkus []string) (map[string]int, error) {
	args := m.Called(ctx, cred, externalSkus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockResolvingClient also completes credentials before use
type MockResolvingClient struct {
	MockMarketplaceClient
}

func (m *MockResolvingClient) ResolveCredential(ctx context.Context, cred integration.Credential) (*integration.Credential, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Credential), args.Error(1)
}

type stubRegistry struct {
	clients map[integration.MarketplaceCode]integration.MarketplaceClient
}

func (r *stubRegistry) Client(code integration.MarketplaceCode) (integration.MarketplaceClient, error) {
	c, ok := r.clients[code]
	if !ok {
		return nil, integration.ErrClientNotRegistered
	}
	return c, nil
}

func registryWith(clients ...*MockMarketplaceClient) *stubRegistry {
	r := &stubRegistry{clients: make(map[integration.MarketplaceCode]integration.MarketplaceClient)}
	for _, c := range clients {
		r.clients[c.code] = c
	}
	return r
}
