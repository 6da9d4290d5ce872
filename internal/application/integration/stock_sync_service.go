package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/telemetry"
)

const (
	msgNoValidItems = "no valid items to sync"
	msgNoMappings   = "no mapped SKUs to sync"

	productNotFoundCode    = "NOT_FOUND"
	productNotFoundMessage = "SKU not found in marketplace stock"

	runStatusNoValidItems = "no_valid_items"
	runStatusError        = "error"
)

// SyncOutcome describes a pass that reached the marketplace stage and wrote a log entry
type SyncOutcome struct {
	Marketplace  integration.MarketplaceCode
	Operation    integration.SyncOperation
	Status       integration.SyncStatus
	NoValidItems bool
	ValidCount   int
	InvalidCount int
	UpdatedCount int
	ErrorCount   int
	Results      []integration.ItemResult
	Message      string
	LogEntry     *integration.SyncLogEntry
}

// StockSyncService orchestrates stock pushes and product syncs.
// Every call that passes the configuration check writes exactly one log entry.
type StockSyncService struct {
	credentials integration.CredentialRepository
	mappings    integration.SkuMappingRepository
	inventory   integration.InventoryReader
	logs        integration.SyncLogStore
	clients     integration.MarketplaceRegistry

	pushGuard    *InFlightGuard
	productGuard *InFlightGuard
	metrics      *telemetry.SyncMetrics
	logger       *zap.Logger
	now          func() time.Time
}

var _ integration.AutoSyncRunner = (*StockSyncService)(nil)

// StockSyncOption configures a StockSyncService
type StockSyncOption func(*StockSyncService)

// WithSyncMetrics records every pass on m
func WithSyncMetrics(m *telemetry.SyncMetrics) StockSyncOption {
	return func(s *StockSyncService) {
		s.metrics = m
	}
}

// WithSyncLogger sets the service logger
func WithSyncLogger(logger *zap.Logger) StockSyncOption {
	return func(s *StockSyncService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStockSyncService creates a new StockSyncService
func NewStockSyncService(
	credentials integration.CredentialRepository,
	mappings integration.SkuMappingRepository,
	inventory integration.InventoryReader,
	logs integration.SyncLogStore,
	clients integration.MarketplaceRegistry,
	opts ...StockSyncOption,
) *StockSyncService {
	s := &StockSyncService{
		credentials:  credentials,
		mappings:     mappings,
		inventory:    inventory,
		logs:         logs,
		clients:      clients,
		pushGuard:    NewInFlightGuard(),
		productGuard: NewInFlightGuard(),
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Stock push
// ---------------------------------------------------------------------------

// SyncStocks pushes the current inventory of every mapped SKU to the marketplace
func (s *StockSyncService) SyncStocks(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, trigger integration.SyncTrigger) (*SyncOutcome, error) {
	return s.push(ctx, userID, marketplace, trigger, nil)
}

// SyncItems pushes an explicit list of candidates. A candidate without an
// external SKU takes it from the saved mapping, one without stock takes the
// current inventory quantity.
func (s *StockSyncService) SyncItems(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, candidates []integration.StockCandidate) (*SyncOutcome, error) {
	if candidates == nil {
		candidates = []integration.StockCandidate{}
	}
	return s.push(ctx, userID, marketplace, integration.SyncTriggerManual, candidates)
}

func (s *StockSyncService) push(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, trigger integration.SyncTrigger, explicit []integration.StockCandidate) (*SyncOutcome, error) {
	if !marketplace.IsValid() {
		return nil, integration.ErrInvalidMarketplace
	}

	release, ok := s.pushGuard.TryAcquire(userID, marketplace)
	if !ok {
		return nil, integration.ErrSyncInProgress
	}
	defer release()

	ctx, span := telemetry.StartServiceSpan(ctx, "stock_sync", "sync_stocks",
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrMarketplace, marketplace.String(),
		telemetry.SpanAttrTrigger, string(trigger),
	)
	defer span.End()

	log := s.logger.With(
		zap.String("user_id", userID.String()),
		zap.String("marketplace", marketplace.String()),
		zap.String("operation", string(integration.SyncOperationStockPush)),
		zap.String("trigger", string(trigger)),
	)

	cred, client, err := s.prepare(ctx, userID, marketplace)
	if err != nil {
		log.Info("Stock push aborted: marketplace not configured", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	cred, err = resolveCredential(ctx, client, cred)
	if integration.IsConfigurationError(err) {
		log.Info("Stock push aborted: marketplace not configured", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := s.now()
	entry := integration.NewSyncLogEntry(userID, marketplace, integration.SyncOperationStockPush, trigger)
	outcome := &SyncOutcome{
		Marketplace: marketplace,
		Operation:   integration.SyncOperationStockPush,
		Status:      integration.SyncStatusFailed,
		LogEntry:    entry,
	}
	if err != nil {
		s.fail(ctx, outcome, err.Error(), start, nil, trigger, runStatusError)
		log.Warn("Stock push failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return outcome, err
	}

	candidates, err := s.stockCandidates(ctx, userID, marketplace, explicit, log)
	if err != nil {
		s.fail(ctx, outcome, err.Error(), start, nil, trigger, runStatusError)
		telemetry.RecordError(span, err)
		return outcome, err
	}

	validation := integration.ValidateStockCandidates(candidates)
	outcome.ValidCount = validation.ValidCount()
	outcome.InvalidCount = validation.InvalidCount
	telemetry.SetAttributes(span,
		telemetry.SpanAttrValidCount, outcome.ValidCount,
		telemetry.SpanAttrInvalidCount, outcome.InvalidCount,
	)

	if outcome.ValidCount == 0 {
		outcome.NoValidItems = true
		s.fail(ctx, outcome, msgNoValidItems, start, nil, trigger, runStatusNoValidItems)
		log.Info("Stock push skipped: no valid items", zap.Int("invalid_count", outcome.InvalidCount))
		return outcome, nil
	}

	result, err := client.PushStocks(ctx, *cred, validation.ValidProducts)
	if err != nil {
		if integration.IsConfigurationError(err) {
			log.Info("Stock push aborted: marketplace not configured", zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, err
		}
		var applied []integration.ItemResult
		if result != nil {
			// earlier batches were applied before the failure
			applied = result.Items
			outcome.Results = result.Items
			outcome.UpdatedCount = result.SuccessCount()
			outcome.ErrorCount = result.ErrorCount()
			s.refreshCachedQuantities(ctx, userID, marketplace, validation.ValidProducts, result.Items, log)
		}
		s.fail(ctx, outcome, err.Error(), start, applied, trigger, runStatusError)
		log.Warn("Stock push failed",
			zap.Int("valid_count", outcome.ValidCount),
			zap.Int("updated", outcome.UpdatedCount),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return outcome, err
	}

	outcome.Results = result.Items
	outcome.UpdatedCount = result.SuccessCount()
	outcome.ErrorCount = result.ErrorCount()
	outcome.Status = result.Status()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrUpdatedCount, outcome.UpdatedCount,
		telemetry.SpanAttrErrorCount, outcome.ErrorCount,
	)

	if outcome.Status == integration.SyncStatusFailed {
		msg := fmt.Sprintf("marketplace updated none of %d items", len(result.Items))
		s.fail(ctx, outcome, msg, start, result.Items, trigger, statusLabel(outcome.Status))
		err := fmt.Errorf("%w: %s", integration.ErrSyncCompleteFailure, msg)
		log.Warn("Stock push rejected", zap.Int("error_count", outcome.ErrorCount))
		telemetry.RecordError(span, err)
		return outcome, err
	}

	s.refreshCachedQuantities(ctx, userID, marketplace, validation.ValidProducts, result.Items, log)

	msg := fmt.Sprintf("updated %d items", outcome.UpdatedCount)
	if outcome.Status == integration.SyncStatusPartial {
		msg = fmt.Sprintf("updated %d of %d items, %d failed", outcome.UpdatedCount, len(result.Items), outcome.ErrorCount)
	}
	s.succeed(ctx, outcome, msg, start, result.Items, trigger)
	log.Info("Stock push completed",
		zap.String("status", outcome.Status.String()),
		zap.Int("updated", outcome.UpdatedCount),
		zap.Int("errored", outcome.ErrorCount),
		zap.Int("skipped", outcome.InvalidCount),
	)
	return outcome, nil
}

// stockCandidates joins fresh inventory with the saved mappings. Inventory
// rows without a mapping stay as candidates without an external SKU.
func (s *StockSyncService) stockCandidates(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, explicit []integration.StockCandidate, log *zap.Logger) ([]integration.StockCandidate, error) {
	mappings, err := s.mappings.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		return nil, fmt.Errorf("load sku mappings: %w", err)
	}
	items, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	externalByInternal := make(map[string]string, len(mappings))
	for _, m := range mappings {
		externalByInternal[m.InternalSku] = m.ExternalSku
	}
	stockByInternal := make(map[string]int, len(items))
	for _, item := range items {
		stockByInternal[item.InternalSku] = item.PushQuantity()
	}

	if explicit != nil {
		out := make([]integration.StockCandidate, len(explicit))
		for i, c := range explicit {
			if c.ExternalSku == nil {
				if ext, ok := externalByInternal[c.InternalSku]; ok {
					c.ExternalSku = &ext
				}
			}
			if c.Stock == nil {
				if qty, ok := stockByInternal[c.InternalSku]; ok {
					c.Stock = &qty
				}
			}
			out[i] = c
		}
		return out, nil
	}

	out := make([]integration.StockCandidate, 0, len(items))
	for _, item := range items {
		qty := item.PushQuantity()
		c := integration.StockCandidate{InternalSku: item.InternalSku, Stock: &qty}
		if ext, ok := externalByInternal[item.InternalSku]; ok {
			c.ExternalSku = &ext
		}
		out = append(out, c)
	}

	for internalSku := range externalByInternal {
		if _, ok := stockByInternal[internalSku]; !ok {
			log.Debug("Mapping has no inventory row, ignored", zap.String("internal_sku", internalSku))
		}
	}
	return out, nil
}

// refreshCachedQuantities stores the pushed quantity of every updated item.
// Failures are logged; the push itself already succeeded.
func (s *StockSyncService) refreshCachedQuantities(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, pushed []integration.StockItem, results []integration.ItemResult, log *zap.Logger) {
	byExternal := make(map[string]integration.StockItem, len(pushed))
	for _, item := range pushed {
		byExternal[item.ExternalSku] = item
	}

	quantities := make(map[string]int)
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		if item, ok := byExternal[r.ExternalSku]; ok && item.InternalSku != "" {
			quantities[item.InternalSku] = item.Quantity
		}
	}
	if len(quantities) == 0 {
		return
	}
	if err := s.mappings.UpdateCachedQuantities(ctx, userID, marketplace, quantities, s.now()); err != nil {
		log.Warn("Failed to refresh cached quantities", zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Product sync
// ---------------------------------------------------------------------------

// SyncProducts reads the marketplace stock of every mapped SKU into the cached quantities
func (s *StockSyncService) SyncProducts(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, trigger integration.SyncTrigger) (*SyncOutcome, error) {
	if !marketplace.IsValid() {
		return nil, integration.ErrInvalidMarketplace
	}

	release, ok := s.productGuard.TryAcquire(userID, marketplace)
	if !ok {
		return nil, integration.ErrSyncInProgress
	}
	defer release()

	ctx, span := telemetry.StartServiceSpan(ctx, "stock_sync", "sync_products",
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrMarketplace, marketplace.String(),
		telemetry.SpanAttrTrigger, string(trigger),
	)
	defer span.End()

	log := s.logger.With(
		zap.String("user_id", userID.String()),
		zap.String("marketplace", marketplace.String()),
		zap.String("operation", string(integration.SyncOperationProductSync)),
		zap.String("trigger", string(trigger)),
	)

	cred, client, err := s.prepare(ctx, userID, marketplace)
	if err != nil {
		log.Info("Product sync aborted: marketplace not configured", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	cred, err = resolveCredential(ctx, client, cred)
	if integration.IsConfigurationError(err) {
		log.Info("Product sync aborted: marketplace not configured", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := s.now()
	entry := integration.NewSyncLogEntry(userID, marketplace, integration.SyncOperationProductSync, trigger)
	outcome := &SyncOutcome{
		Marketplace: marketplace,
		Operation:   integration.SyncOperationProductSync,
		Status:      integration.SyncStatusFailed,
		LogEntry:    entry,
	}
	if err != nil {
		s.fail(ctx, outcome, err.Error(), start, nil, trigger, runStatusError)
		log.Warn("Product sync failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return outcome, err
	}

	mappings, err := s.mappings.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		err = fmt.Errorf("load sku mappings: %w", err)
		s.fail(ctx, outcome, err.Error(), start, nil, trigger, runStatusError)
		telemetry.RecordError(span, err)
		return outcome, err
	}
	outcome.ValidCount = len(mappings)
	if len(mappings) == 0 {
		outcome.NoValidItems = true
		s.fail(ctx, outcome, msgNoMappings, start, nil, trigger, runStatusNoValidItems)
		return outcome, nil
	}

	externalSkus := make([]string, len(mappings))
	for i, m := range mappings {
		externalSkus[i] = m.ExternalSku
	}

	stocks, err := client.FetchStocks(ctx, *cred, externalSkus)
	if err != nil {
		if integration.IsConfigurationError(err) {
			log.Info("Product sync aborted: marketplace not configured", zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.fail(ctx, outcome, err.Error(), start, nil, trigger, runStatusError)
		log.Warn("Product sync failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return outcome, err
	}

	results := make([]integration.ItemResult, len(mappings))
	quantities := make(map[string]int, len(mappings))
	for i, m := range mappings {
		qty, found := stocks[m.ExternalSku]
		if !found {
			results[i] = integration.ItemResult{
				ExternalSku:  m.ExternalSku,
				Outcome:      integration.ItemOutcomeNotFound,
				ErrorCode:    productNotFoundCode,
				ErrorMessage: productNotFoundMessage,
			}
			continue
		}
		results[i] = integration.ItemResult{ExternalSku: m.ExternalSku, Outcome: integration.ItemOutcomeUpdated}
		quantities[m.InternalSku] = qty
	}

	pr := integration.PushResult{Marketplace: marketplace, Items: results}
	outcome.Results = results
	outcome.UpdatedCount = pr.SuccessCount()
	outcome.ErrorCount = pr.ErrorCount()
	outcome.Status = pr.Status()

	if outcome.Status == integration.SyncStatusFailed {
		msg := fmt.Sprintf("marketplace returned none of %d SKUs", len(results))
		s.fail(ctx, outcome, msg, start, results, trigger, statusLabel(outcome.Status))
		err := fmt.Errorf("%w: %s", integration.ErrSyncCompleteFailure, msg)
		telemetry.RecordError(span, err)
		return outcome, err
	}

	if err := s.mappings.UpdateCachedQuantities(ctx, userID, marketplace, quantities, s.now()); err != nil {
		err = fmt.Errorf("store cached quantities: %w", err)
		outcome.Status = integration.SyncStatusFailed
		s.fail(ctx, outcome, err.Error(), start, results, trigger, runStatusError)
		telemetry.RecordError(span, err)
		return outcome, err
	}

	msg := fmt.Sprintf("synced %d SKUs", outcome.UpdatedCount)
	if outcome.Status == integration.SyncStatusPartial {
		msg = fmt.Sprintf("synced %d of %d SKUs, %d not found", outcome.UpdatedCount, len(results), outcome.ErrorCount)
	}
	s.succeed(ctx, outcome, msg, start, results, trigger)
	log.Info("Product sync completed",
		zap.String("status", outcome.Status.String()),
		zap.Int("updated", outcome.UpdatedCount),
		zap.Int("errored", outcome.ErrorCount),
	)
	return outcome, nil
}

// ---------------------------------------------------------------------------
// Scheduler entry points
// ---------------------------------------------------------------------------

// RunStockPush pushes stocks to every configured marketplace in turn
func (s *StockSyncService) RunStockPush(ctx context.Context, userID uuid.UUID) error {
	return s.runAll(userID, func(mp integration.MarketplaceCode) error {
		_, err := s.SyncStocks(ctx, userID, mp, integration.SyncTriggerAuto)
		return err
	})
}

// RunProductSync syncs products from every configured marketplace in turn
func (s *StockSyncService) RunProductSync(ctx context.Context, userID uuid.UUID) error {
	return s.runAll(userID, func(mp integration.MarketplaceCode) error {
		_, err := s.SyncProducts(ctx, userID, mp, integration.SyncTriggerAuto)
		return err
	})
}

// runAll skips marketplaces without a saved credential
func (s *StockSyncService) runAll(userID uuid.UUID, pass func(integration.MarketplaceCode) error) error {
	var errs []error
	for _, mp := range integration.AllMarketplaces() {
		err := pass(mp)
		if err == nil || errors.Is(err, integration.ErrCredentialNotFound) {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", mp, err))
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Sync log
// ---------------------------------------------------------------------------

// ListLogs returns up to limit entries, newest first
func (s *StockSyncService) ListLogs(ctx context.Context, userID uuid.UUID, limit int) ([]integration.SyncLogEntry, error) {
	return s.logs.List(ctx, userID, limit)
}

// ClearLogs removes every entry of the user
func (s *StockSyncService) ClearLogs(ctx context.Context, userID uuid.UUID) error {
	return s.logs.Clear(ctx, userID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// prepare loads and validates the credential and resolves the client.
// Its errors are configuration errors: nothing is logged and nothing is sent.
func (s *StockSyncService) prepare(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*integration.Credential, integration.MarketplaceClient, error) {
	cred, err := s.credentials.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		if errors.Is(err, integration.ErrCredentialNotFound) {
			return nil, nil, fmt.Errorf("%w: %w", integration.ErrConfigurationMissing, err)
		}
		return nil, nil, err
	}
	if err := cred.Validate(); err != nil {
		return nil, nil, err
	}
	client, err := s.clients.Client(marketplace)
	if err != nil {
		return nil, nil, err
	}
	return cred, client, nil
}

// resolveCredential lets clients that derive part of the credential from the
// marketplace complete it before a log entry exists
func resolveCredential(ctx context.Context, client integration.MarketplaceClient, cred *integration.Credential) (*integration.Credential, error) {
	resolver, ok := client.(integration.CredentialResolver)
	if !ok {
		return cred, nil
	}
	return resolver.ResolveCredential(ctx, *cred)
}

func (s *StockSyncService) fail(ctx context.Context, outcome *SyncOutcome, msg string, start time.Time, results []integration.ItemResult, trigger integration.SyncTrigger, runStatus string) {
	outcome.Message = msg
	outcome.LogEntry.Fail(msg, s.now().Sub(start), results)
	s.record(ctx, outcome, trigger, runStatus, start)
}

func (s *StockSyncService) succeed(ctx context.Context, outcome *SyncOutcome, msg string, start time.Time, results []integration.ItemResult, trigger integration.SyncTrigger) {
	outcome.Message = msg
	outcome.LogEntry.Succeed(msg, s.now().Sub(start), results)
	s.record(ctx, outcome, trigger, statusLabel(outcome.Status), start)
}

// record appends the single log entry of a pass and reports it to metrics
func (s *StockSyncService) record(ctx context.Context, outcome *SyncOutcome, trigger integration.SyncTrigger, runStatus string, start time.Time) {
	if err := s.logs.Append(ctx, *outcome.LogEntry); err != nil {
		s.logger.Warn("Failed to append sync log entry",
			zap.String("marketplace", outcome.Marketplace.String()),
			zap.String("operation", string(outcome.Operation)),
			zap.Error(err),
		)
	}

	notFound := 0
	for _, r := range outcome.Results {
		if r.Outcome == integration.ItemOutcomeNotFound {
			notFound++
		}
	}
	s.metrics.RecordRun(ctx, telemetry.SyncRun{
		Marketplace: outcome.Marketplace,
		Operation:   outcome.Operation,
		Trigger:     trigger,
		Status:      runStatus,
		Updated:     outcome.UpdatedCount,
		Errored:     outcome.ErrorCount - notFound,
		NotFound:    notFound,
		Duration:    s.now().Sub(start),
	})
}

func statusLabel(status integration.SyncStatus) string {
	switch status {
	case integration.SyncStatusSuccess:
		return "success"
	case integration.SyncStatusPartial:
		return "partial"
	default:
		return "failed"
	}
}
