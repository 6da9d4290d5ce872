package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AutoSyncStatus is the observable state of an auto-sync scheduler.
// Next*At are nil while stopped. A zero product interval disables product sync.
type AutoSyncStatus struct {
	IsRunning                  bool
	LastProductSyncAt          *time.Time
	LastStockUpdateAt          *time.Time
	NextProductSyncAt          *time.Time
	NextStockUpdateAt          *time.Time
	ProductSyncIntervalMinutes int
	StockUpdateIntervalMinutes int
}

// ProductSyncEnabled returns true when the product-sync timer is armed on start
func (s AutoSyncStatus) ProductSyncEnabled() bool {
	return s.ProductSyncIntervalMinutes > 0
}

// AutoSyncRunner is what a scheduler tick invokes for one user
type AutoSyncRunner interface {
	RunProductSync(ctx context.Context, userID uuid.UUID) error
	RunStockPush(ctx context.Context, userID uuid.UUID) error
}
