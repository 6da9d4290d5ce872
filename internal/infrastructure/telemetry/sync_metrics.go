package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/retailcrm/backend/internal/domain/integration"
)

const syncMeterName = "retailcrm/sync"

// SyncRun is what one sync pass reports to metrics
type SyncRun struct {
	Marketplace integration.MarketplaceCode
	Operation   integration.SyncOperation
	Trigger     integration.SyncTrigger
	// Status is "success", "partial", "failed", "no_valid_items" or "error"
	Status   string
	Updated  int
	Errored  int
	NotFound int
	Duration time.Duration
}

// SyncMetrics records sync pass counters and durations.
// A nil *SyncMetrics records nothing.
type SyncMetrics struct {
	runs     *Counter
	items    *Counter
	duration *Histogram
}

// NewSyncMetrics registers the sync instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := NewCounter(meter, "sync_runs_total", "Number of marketplace sync passes", "{run}")
	if err != nil {
		return nil, err
	}
	items, err := NewCounter(meter, "sync_items_total", "Number of items pushed per outcome", "{item}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "sync_duration_ms",
		Description: "Duration of marketplace sync passes",
		Unit:        "ms",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{runs: runs, items: items, duration: duration}, nil
}

// RecordRun records one sync pass
func (m *SyncMetrics) RecordRun(ctx context.Context, run SyncRun) {
	if m == nil {
		return
	}

	marketplace := AttrMarketplace.String(run.Marketplace.String())
	m.runs.Inc(ctx,
		marketplace,
		AttrOperation.String(string(run.Operation)),
		AttrTrigger.String(string(run.Trigger)),
		AttrStatus.String(run.Status),
	)
	m.duration.Record(ctx, float64(run.Duration.Milliseconds()),
		marketplace,
		AttrOperation.String(string(run.Operation)),
	)

	if run.Updated > 0 {
		m.items.Add(ctx, int64(run.Updated), marketplace, AttrOutcome.String(string(integration.ItemOutcomeUpdated)))
	}
	if run.NotFound > 0 {
		m.items.Add(ctx, int64(run.NotFound), marketplace, AttrOutcome.String(string(integration.ItemOutcomeNotFound)))
	}
	if other := run.Errored - run.NotFound; other > 0 {
		m.items.Add(ctx, int64(other), marketplace, AttrOutcome.String(string(integration.ItemOutcomeError)))
	}
}
