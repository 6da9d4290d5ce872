package integration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSyncLogCapacity is the number of entries kept per user
const DefaultSyncLogCapacity = 50

// SyncOperation names the kind of sync pass
type SyncOperation string

const (
	SyncOperationStockPush   SyncOperation = "stock_push"
	SyncOperationProductSync SyncOperation = "product_sync"
)

// IsValid returns true if the operation is known
func (o SyncOperation) IsValid() bool {
	return o == SyncOperationStockPush || o == SyncOperationProductSync
}

// SyncLogStatus is the log-level verdict of a sync pass.
// Partial success is logged as success with both counts recorded.
type SyncLogStatus string

const (
	SyncLogStatusSuccess SyncLogStatus = "success"
	SyncLogStatusError   SyncLogStatus = "error"
)

// SyncTrigger records who started a sync pass
type SyncTrigger string

const (
	SyncTriggerManual SyncTrigger = "manual"
	SyncTriggerAuto   SyncTrigger = "auto"
)

// ItemCounts summarizes per-item outcomes
type ItemCounts struct {
	Updated int `json:"updated"`
	Errored int `json:"errored"`
}

// SyncLogEntry records one sync pass. Entries are append-only.
type SyncLogEntry struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Marketplace     MarketplaceCode `json:"marketplace"`
	Operation       SyncOperation   `json:"operation"`
	Status          SyncLogStatus   `json:"status"`
	Trigger         SyncTrigger     `json:"trigger"`
	Message         string          `json:"message"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	ItemCounts      ItemCounts      `json:"item_counts"`
	PerItemResults  []ItemResult    `json:"per_item_results,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewSyncLogEntry creates an entry stamped with a fresh id and the current time
func NewSyncLogEntry(userID uuid.UUID, marketplace MarketplaceCode, operation SyncOperation, trigger SyncTrigger) *SyncLogEntry {
	return &SyncLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Marketplace: marketplace,
		Operation:   operation,
		Trigger:     trigger,
		CreatedAt:   time.Now(),
	}
}

// Succeed marks the entry as successful
func (e *SyncLogEntry) Succeed(message string, elapsed time.Duration, results []ItemResult) {
	e.complete(SyncLogStatusSuccess, message, elapsed, results)
}

// Fail marks the entry as failed
func (e *SyncLogEntry) Fail(message string, elapsed time.Duration, results []ItemResult) {
	e.complete(SyncLogStatusError, message, elapsed, results)
}

func (e *SyncLogEntry) complete(status SyncLogStatus, message string, elapsed time.Duration, results []ItemResult) {
	e.Status = status
	e.Message = message
	e.ExecutionTimeMs = elapsed.Milliseconds()
	e.PerItemResults = results
	e.ItemCounts = ItemCounts{}
	for _, r := range results {
		if r.Succeeded() {
			e.ItemCounts.Updated++
		} else {
			e.ItemCounts.Errored++
		}
	}
}

// ---------------------------------------------------------------------------
// SyncLog ring buffer
// ---------------------------------------------------------------------------

// SyncLog keeps the most recent entries, newest first, evicting the oldest
// once capacity is reached. It is safe for concurrent use.
type SyncLog struct {
	mu       sync.RWMutex
	entries  []SyncLogEntry
	capacity int
}

// NewSyncLog creates a ring with the given capacity (DefaultSyncLogCapacity if <= 0)
func NewSyncLog(capacity int) *SyncLog {
	if capacity <= 0 {
		capacity = DefaultSyncLogCapacity
	}
	return &SyncLog{
		entries:  make([]SyncLogEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry at the front and trims the tail
func (l *SyncLog) Append(entry SyncLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]SyncLogEntry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

// Entries returns a copy of the entries, newest first
func (l *SyncLog) Entries() []SyncLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]SyncLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns up to limit entries, newest first. limit <= 0 returns all.
func (l *SyncLog) Latest(limit int) []SyncLogEntry {
	entries := l.Entries()
	if limit > 0 && limit < len(entries) {
		return entries[:limit]
	}
	return entries
}

// Len returns the number of stored entries
func (l *SyncLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Capacity returns the maximum number of stored entries
func (l *SyncLog) Capacity() int {
	return l.capacity
}

// Clear removes every entry
func (l *SyncLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// SyncLogStore persists sync log entries per user with newest-first reads
type SyncLogStore interface {
	Append(ctx context.Context, entry SyncLogEntry) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]SyncLogEntry, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
