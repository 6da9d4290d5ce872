package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/retailcrm/backend/internal/domain/integration"
)

const (
	wb   = integration.MarketplaceWildberries
	ozon = integration.MarketplaceOzon
)

type syncFixture struct {
	userID    uuid.UUID
	creds     *MockCredentialRepository
	mappings  *MockSkuMappingRepository
	inventory *MockInventoryReader
	logs      *MockSyncLogStore
	wbClient  *MockMarketplaceClient
	ozClient  *MockMarketplaceClient
	svc       *StockSyncService
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		userID:    uuid.New(),
		creds:     new(MockCredentialRepository),
		mappings:  new(MockSkuMappingRepository),
		inventory: new(MockInventoryReader),
		logs:      new(MockSyncLogStore),
		wbClient:  &MockMarketplaceClient{code: wb},
		ozClient:  &MockMarketplaceClient{code: ozon},
	}
	f.svc = NewStockSyncService(f.creds, f.mappings, f.inventory, f.logs, registryWith(f.wbClient, f.ozClient))
	return f
}

func (f *syncFixture) wbCredential() *integration.Credential {
	return &integration.Credential{ID: uuid.New(), UserID: f.userID, Marketplace: wb, APIKey: "wb-key-123456"}
}

func (f *syncFixture) withCredential(mp integration.MarketplaceCode, cred *integration.Credential) {
	f.creds.On("FindByUserAndMarketplace", mock.Anything, f.userID, mp).Return(cred, nil)
}

func (f *syncFixture) withoutCredential(mp integration.MarketplaceCode) {
	f.creds.On("FindByUserAndMarketplace", mock.Anything, f.userID, mp).Return(nil, integration.ErrCredentialNotFound)
}

func (f *syncFixture) withCatalog(mp integration.MarketplaceCode, items []integration.InventoryItem, mappings []integration.SkuMapping) {
	f.inventory.On("ListByUser", mock.Anything, f.userID).Return(items, nil)
	f.mappings.On("FindByUserAndMarketplace", mock.Anything, f.userID, mp).Return(mappings, nil)
}

func (f *syncFixture) acceptLogs() {
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
}

func inventoryItem(sku string, stock string) integration.InventoryItem {
	return integration.InventoryItem{InternalSku: sku, ProductName: "Product " + sku, CurrentStock: decimal.RequireFromString(stock)}
}

func mapping(userID uuid.UUID, mp integration.MarketplaceCode, internalSku, externalSku string) integration.SkuMapping {
	return integration.SkuMapping{ID: uuid.New(), UserID: userID, Marketplace: mp, InternalSku: internalSku, ExternalSku: externalSku}
}

func updated(sku string) integration.ItemResult {
	return integration.ItemResult{ExternalSku: sku, Outcome: integration.ItemOutcomeUpdated}
}

func notFound(sku string) integration.ItemResult {
	return integration.ItemResult{ExternalSku: sku, Outcome: integration.ItemOutcomeNotFound, ErrorCode: "NotFound"}
}

// ---------------------------------------------------------------------------
// Configuration errors
// ---------------------------------------------------------------------------

func TestStockSyncService_SyncStocks_ConfigurationMissing(t *testing.T) {
	t.Run("no credential", func(t *testing.T) {
		f := newSyncFixture()
		f.withoutCredential(wb)

		outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
		assert.ErrorIs(t, err, integration.ErrCredentialNotFound)
		assert.True(t, integration.IsConfigurationError(err))
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.wbClient.AssertNotCalled(t, "PushStocks", mock.Anything, mock.Anything, mock.Anything)
		f.inventory.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})

	t.Run("incomplete ozon credential", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(ozon, &integration.Credential{UserID: f.userID, Marketplace: ozon, APIKey: "oz-key-123456", ClientID: "42"})

		outcome, err := f.svc.SyncStocks(context.Background(), f.userID, ozon, integration.SyncTriggerManual)

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
		assert.Contains(t, err.Error(), "warehouse_id")
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("invalid marketplace", func(t *testing.T) {
		f := newSyncFixture()

		_, err := f.svc.SyncStocks(context.Background(), f.userID, integration.MarketplaceCode("AMAZON"), integration.SyncTriggerManual)

		assert.ErrorIs(t, err, integration.ErrInvalidMarketplace)
	})
}

// ---------------------------------------------------------------------------
// Push pipeline
// ---------------------------------------------------------------------------

func TestStockSyncService_SyncStocks_NoValidItems(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb, []integration.InventoryItem{inventoryItem("A", "3"), inventoryItem("B", "1")}, nil)
	f.acceptLogs()

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.NoValidItems)
	assert.Equal(t, integration.SyncStatusFailed, outcome.Status)
	assert.Equal(t, 0, outcome.ValidCount)
	assert.Equal(t, 2, outcome.InvalidCount)
	f.wbClient.AssertNotCalled(t, "PushStocks", mock.Anything, mock.Anything, mock.Anything)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	assert.Equal(t, msgNoValidItems, entries[0].Message)
	assert.Equal(t, integration.ItemCounts{}, entries[0].ItemCounts)
}

func TestStockSyncService_SyncStocks_Success(t *testing.T) {
	f := newSyncFixture()
	cred := f.wbCredential()
	f.withCredential(wb, cred)
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "5.7"), inventoryItem("B", "-2"), inventoryItem("C", "9")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa"), mapping(f.userID, wb, "B", "wb")},
	)
	f.acceptLogs()

	expected := []integration.StockItem{
		{InternalSku: "A", ExternalSku: "wa", Quantity: 5},
		{InternalSku: "B", ExternalSku: "wb", Quantity: 0},
	}
	f.wbClient.On("PushStocks", mock.Anything, *cred, expected).
		Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{updated("wa"), updated("wb")}}, nil).Once()
	f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 5, "B": 0}, mock.AnythingOfType("time.Time")).Return(nil)

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusSuccess, outcome.Status)
	assert.Equal(t, 2, outcome.ValidCount)
	assert.Equal(t, 1, outcome.InvalidCount)
	assert.Equal(t, 2, outcome.UpdatedCount)
	assert.Equal(t, 0, outcome.ErrorCount)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusSuccess, entries[0].Status)
	assert.Equal(t, integration.SyncOperationStockPush, entries[0].Operation)
	assert.Equal(t, integration.SyncTriggerManual, entries[0].Trigger)
	assert.Equal(t, integration.ItemCounts{Updated: 2}, entries[0].ItemCounts)
	f.wbClient.AssertExpectations(t)
	f.mappings.AssertExpectations(t)
}

func TestStockSyncService_SyncStocks_Partial(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "4"), inventoryItem("B", "2")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa"), mapping(f.userID, wb, "B", "wb")},
	)
	f.acceptLogs()
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).
		Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{updated("wa"), notFound("wb")}}, nil)
	f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 4}, mock.Anything).Return(nil)

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerAuto)

	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusPartial, outcome.Status)
	assert.Equal(t, 1, outcome.UpdatedCount)
	assert.Equal(t, 1, outcome.ErrorCount)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusSuccess, entries[0].Status)
	assert.Equal(t, integration.ItemCounts{Updated: 1, Errored: 1}, entries[0].ItemCounts)
	assert.Equal(t, integration.SyncTriggerAuto, entries[0].Trigger)
	f.mappings.AssertExpectations(t)
}

func TestStockSyncService_SyncStocks_CompleteFailure(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "4"), inventoryItem("B", "2")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa"), mapping(f.userID, wb, "B", "wb")},
	)
	f.acceptLogs()
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).
		Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{notFound("wa"), notFound("wb")}}, nil)

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	assert.ErrorIs(t, err, integration.ErrSyncCompleteFailure)
	require.NotNil(t, outcome)
	assert.Equal(t, integration.SyncStatusFailed, outcome.Status)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	assert.Equal(t, integration.ItemCounts{Errored: 2}, entries[0].ItemCounts)
	f.mappings.AssertNotCalled(t, "UpdateCachedQuantities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStockSyncService_SyncStocks_MarketplaceError(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "4")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")},
	)
	f.acceptLogs()
	httpErr := &integration.HTTPStatusError{Marketplace: wb, StatusCode: 500, Body: "internal error"}
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).Return(nil, httpErr).Once()

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	require.NotNil(t, outcome)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	assert.Contains(t, entries[0].Message, "HTTP 500")
	assert.Contains(t, entries[0].Message, "internal error")
	// no retry
	f.wbClient.AssertNumberOfCalls(t, "PushStocks", 1)
}

func TestStockSyncService_SyncStocks_LaterBatchFailure(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "4"), inventoryItem("B", "2")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa"), mapping(f.userID, wb, "B", "wb")},
	)
	f.acceptLogs()
	httpErr := &integration.HTTPStatusError{Marketplace: wb, StatusCode: 500, Body: "internal error"}
	applied := &integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{
		updated("wa"),
		{ExternalSku: "wb", Outcome: integration.ItemOutcomeError, ErrorCode: "REQUEST_FAILED", ErrorMessage: httpErr.Error()},
	}}
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).Return(applied, httpErr).Once()
	f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 4}, mock.Anything).Return(nil).Once()

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	require.NotNil(t, outcome)
	assert.Equal(t, 1, outcome.UpdatedCount)
	assert.Equal(t, 1, outcome.ErrorCount)
	assert.Len(t, outcome.Results, 2)

	entries := f.logs.appended()
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	assert.Equal(t, integration.ItemCounts{Updated: 1, Errored: 1}, entries[0].ItemCounts)
	assert.Contains(t, entries[0].Message, "HTTP 500")
	f.mappings.AssertExpectations(t)
	f.wbClient.AssertNumberOfCalls(t, "PushStocks", 1)
}

func TestStockSyncService_SyncStocks_ClientConfigurationError(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "4")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")},
	)
	f.acceptLogs()
	cfgErr := fmt.Errorf("%w: Wildberries account has no seller warehouse", integration.ErrConfigurationMissing)
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).Return(nil, cfgErr).Once()

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerAuto)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
	assert.Empty(t, f.logs.appended())
}

func TestStockSyncService_SyncStocks_ResolvesCredential(t *testing.T) {
	newResolvingFixture := func() (*syncFixture, *MockResolvingClient) {
		f := newSyncFixture()
		client := &MockResolvingClient{MockMarketplaceClient: MockMarketplaceClient{code: wb}}
		registry := &stubRegistry{clients: map[integration.MarketplaceCode]integration.MarketplaceClient{wb: client}}
		f.svc = NewStockSyncService(f.creds, f.mappings, f.inventory, f.logs, registry)
		return f, client
	}

	t.Run("unresolvable credential writes no log entry", func(t *testing.T) {
		f, client := newResolvingFixture()
		cred := f.wbCredential()
		f.withCredential(wb, cred)
		client.On("ResolveCredential", mock.Anything, *cred).
			Return(nil, fmt.Errorf("%w: Wildberries account has no seller warehouse", integration.ErrConfigurationMissing))

		outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		assert.Nil(t, outcome)
		assert.True(t, integration.IsConfigurationError(err))
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.inventory.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "PushStocks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("resolved credential is pushed with", func(t *testing.T) {
		f, client := newResolvingFixture()
		cred := f.wbCredential()
		f.withCredential(wb, cred)
		f.withCatalog(wb,
			[]integration.InventoryItem{inventoryItem("A", "3")},
			[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")},
		)
		f.acceptLogs()
		resolved := *cred
		resolved.WarehouseID = "501"
		client.On("ResolveCredential", mock.Anything, *cred).Return(&resolved, nil)
		client.On("PushStocks", mock.Anything, resolved, mock.Anything).
			Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{updated("wa")}}, nil).Once()
		f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 3}, mock.Anything).Return(nil)

		outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		require.NoError(t, err)
		assert.Equal(t, integration.SyncStatusSuccess, outcome.Status)
		client.AssertExpectations(t)
	})

	t.Run("transport failure while resolving is logged", func(t *testing.T) {
		f, client := newResolvingFixture()
		cred := f.wbCredential()
		f.withCredential(wb, cred)
		f.acceptLogs()
		client.On("ResolveCredential", mock.Anything, *cred).Return(nil, integration.ErrPlatformUnavailable)

		outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
		require.NotNil(t, outcome)
		entries := f.logs.appended()
		require.Len(t, entries, 1)
		assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	})

	t.Run("product sync skips the log as well", func(t *testing.T) {
		f, client := newResolvingFixture()
		cred := f.wbCredential()
		f.withCredential(wb, cred)
		client.On("ResolveCredential", mock.Anything, *cred).Return(nil, integration.ErrConfigurationMissing)

		outcome, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerAuto)

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.mappings.AssertNotCalled(t, "FindByUserAndMarketplace", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStockSyncService_SyncStocks_LogAppendFailureDoesNotFailSync(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb, nil, nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	outcome, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	require.NoError(t, err)
	assert.True(t, outcome.NoValidItems)
}

func TestStockSyncService_SyncStocks_InFlightGuard(t *testing.T) {
	f := newSyncFixture()
	release, ok := f.svc.pushGuard.TryAcquire(f.userID, wb)
	require.True(t, ok)

	_, err := f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)

	assert.ErrorIs(t, err, integration.ErrSyncInProgress)
	f.creds.AssertNotCalled(t, "FindByUserAndMarketplace", mock.Anything, mock.Anything, mock.Anything)
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)

	release()
	f.withoutCredential(wb)
	_, err = f.svc.SyncStocks(context.Background(), f.userID, wb, integration.SyncTriggerManual)
	assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
}

// ---------------------------------------------------------------------------
// Explicit items
// ---------------------------------------------------------------------------

func TestStockSyncService_SyncItems(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb,
		[]integration.InventoryItem{inventoryItem("A", "6")},
		[]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")},
	)
	f.acceptLogs()

	ext := "wx"
	three := 3
	candidates := []integration.StockCandidate{
		{InternalSku: "A"},
		{ExternalSku: &ext, Stock: &three},
		{InternalSku: "Z"},
	}
	expected := []integration.StockItem{
		{InternalSku: "A", ExternalSku: "wa", Quantity: 6},
		{ExternalSku: "wx", Quantity: 3},
	}
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, expected).
		Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{updated("wa"), updated("wx")}}, nil)
	f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 6}, mock.Anything).Return(nil)

	outcome, err := f.svc.SyncItems(context.Background(), f.userID, wb, candidates)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.ValidCount)
	assert.Equal(t, 1, outcome.InvalidCount)
	assert.Equal(t, integration.SyncStatusSuccess, outcome.Status)
	require.Len(t, f.logs.appended(), 1)
	f.wbClient.AssertExpectations(t)
}

func TestStockSyncService_SyncItems_LegacyItems(t *testing.T) {
	f := newSyncFixture()
	f.withCredential(wb, f.wbCredential())
	f.withCatalog(wb, nil, nil)
	f.acceptLogs()

	legacy := []map[string]any{
		{"sku": "A", "nm_id": float64(123456789), "stock": "7"},
		{"sku": "B"},
	}
	f.wbClient.On("PushStocks", mock.Anything, mock.Anything, []integration.StockItem{{InternalSku: "A", ExternalSku: "123456789", Quantity: 7}}).
		Return(&integration.PushResult{Marketplace: wb, Items: []integration.ItemResult{updated("123456789")}}, nil)
	f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 7}, mock.Anything).Return(nil)

	outcome, err := f.svc.SyncItems(context.Background(), f.userID, wb, NormalizeLegacyItems(wb, legacy))

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.ValidCount)
	assert.Equal(t, 1, outcome.InvalidCount)
}

// ---------------------------------------------------------------------------
// Product sync
// ---------------------------------------------------------------------------

func TestStockSyncService_SyncProducts(t *testing.T) {
	t.Run("updates cached quantities of returned SKUs", func(t *testing.T) {
		f := newSyncFixture()
		cred := f.wbCredential()
		f.withCredential(wb, cred)
		f.mappings.On("FindByUserAndMarketplace", mock.Anything, f.userID, wb).
			Return([]integration.SkuMapping{mapping(f.userID, wb, "A", "wa"), mapping(f.userID, wb, "B", "wb")}, nil)
		f.wbClient.On("FetchStocks", mock.Anything, *cred, []string{"wa", "wb"}).Return(map[string]int{"wa": 7}, nil)
		f.mappings.On("UpdateCachedQuantities", mock.Anything, f.userID, wb, map[string]int{"A": 7}, mock.Anything).Return(nil)
		f.acceptLogs()

		outcome, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerAuto)

		require.NoError(t, err)
		assert.Equal(t, integration.SyncStatusPartial, outcome.Status)
		entries := f.logs.appended()
		require.Len(t, entries, 1)
		assert.Equal(t, integration.SyncOperationProductSync, entries[0].Operation)
		assert.Equal(t, integration.SyncLogStatusSuccess, entries[0].Status)
		assert.Equal(t, integration.ItemCounts{Updated: 1, Errored: 1}, entries[0].ItemCounts)
	})

	t.Run("no mappings logs an error without calling the marketplace", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(wb, f.wbCredential())
		f.mappings.On("FindByUserAndMarketplace", mock.Anything, f.userID, wb).Return([]integration.SkuMapping{}, nil)
		f.acceptLogs()

		outcome, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		require.NoError(t, err)
		assert.True(t, outcome.NoValidItems)
		f.wbClient.AssertNotCalled(t, "FetchStocks", mock.Anything, mock.Anything, mock.Anything)
		entries := f.logs.appended()
		require.Len(t, entries, 1)
		assert.Equal(t, msgNoMappings, entries[0].Message)
	})

	t.Run("fetch error is logged and returned", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(wb, f.wbCredential())
		f.mappings.On("FindByUserAndMarketplace", mock.Anything, f.userID, wb).Return([]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")}, nil)
		f.wbClient.On("FetchStocks", mock.Anything, mock.Anything, mock.Anything).Return(nil, integration.ErrPlatformUnavailable)
		f.acceptLogs()

		_, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
		entries := f.logs.appended()
		require.Len(t, entries, 1)
		assert.Equal(t, integration.SyncLogStatusError, entries[0].Status)
	})

	t.Run("configuration error from the client is not logged", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(wb, f.wbCredential())
		f.mappings.On("FindByUserAndMarketplace", mock.Anything, f.userID, wb).Return([]integration.SkuMapping{mapping(f.userID, wb, "A", "wa")}, nil)
		f.wbClient.On("FetchStocks", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: Wildberries account has no seller warehouse", integration.ErrConfigurationMissing))

		outcome, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerManual)

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("does not share the push guard", func(t *testing.T) {
		f := newSyncFixture()
		release, ok := f.svc.pushGuard.TryAcquire(f.userID, wb)
		require.True(t, ok)
		defer release()
		f.withoutCredential(wb)

		_, err := f.svc.SyncProducts(context.Background(), f.userID, wb, integration.SyncTriggerAuto)

		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
	})
}

// ---------------------------------------------------------------------------
// Scheduler entry points
// ---------------------------------------------------------------------------

func TestStockSyncService_RunStockPush(t *testing.T) {
	t.Run("skips marketplaces without credentials", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(wb, f.wbCredential())
		f.withoutCredential(ozon)
		f.withCatalog(wb, nil, nil)
		f.acceptLogs()

		err := f.svc.RunStockPush(context.Background(), f.userID)

		require.NoError(t, err)
		entries := f.logs.appended()
		require.Len(t, entries, 1)
		assert.Equal(t, integration.SyncTriggerAuto, entries[0].Trigger)
		assert.Equal(t, wb, entries[0].Marketplace)
	})

	t.Run("joins marketplace errors", func(t *testing.T) {
		f := newSyncFixture()
		f.withCredential(wb, f.wbCredential())
		f.withCredential(ozon, &integration.Credential{UserID: f.userID, Marketplace: ozon, APIKey: "oz-key-123456"})
		f.withCatalog(wb, []integration.InventoryItem{inventoryItem("A", "1")}, []integration.SkuMapping{mapping(f.userID, wb, "A", "wa")})
		f.wbClient.On("PushStocks", mock.Anything, mock.Anything, mock.Anything).Return(nil, integration.ErrPlatformUnavailable)
		f.acceptLogs()

		err := f.svc.RunStockPush(context.Background(), f.userID)

		require.Error(t, err)
		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
		assert.ErrorIs(t, err, integration.ErrConfigurationMissing)
		assert.Contains(t, err.Error(), "WILDBERRIES")
		assert.Contains(t, err.Error(), "OZON")
	})
}

func TestStockSyncService_RunProductSync(t *testing.T) {
	f := newSyncFixture()
	f.withoutCredential(wb)
	f.withoutCredential(ozon)

	assert.NoError(t, f.svc.RunProductSync(context.Background(), f.userID))
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestStockSyncService_ListLogs(t *testing.T) {
	f := newSyncFixture()
	entries := []integration.SyncLogEntry{*integration.NewSyncLogEntry(f.userID, wb, integration.SyncOperationStockPush, integration.SyncTriggerManual)}
	f.logs.On("List", mock.Anything, f.userID, 10).Return(entries, nil)
	f.logs.On("Clear", mock.Anything, f.userID).Return(nil)

	got, err := f.svc.ListLogs(context.Background(), f.userID, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	assert.NoError(t, f.svc.ClearLogs(context.Background(), f.userID))
}
