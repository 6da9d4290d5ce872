package scheduler

import (
	"fmt"
	"math"
	"time"
)

// MaxIntervalMinutes caps both intervals at one week
const MaxIntervalMinutes = 7 * 24 * 60

// AutoSyncConfig holds the intervals and timing of an auto-sync scheduler
type AutoSyncConfig struct {
	// ProductIntervalMinutes is the product-sync period; 0 disables product sync
	ProductIntervalMinutes int
	// StockIntervalMinutes is the stock-push period, always > 0
	StockIntervalMinutes int
	// IntervalUnit is the length of one interval "minute"
	IntervalUnit time.Duration
	// RestartDelay separates stop and start when intervals change on a running scheduler
	RestartDelay time.Duration
	// PassTimeout bounds a single sync pass
	PassTimeout time.Duration
}

// DefaultAutoSyncConfig returns default configuration
func DefaultAutoSyncConfig() AutoSyncConfig {
	return AutoSyncConfig{
		ProductIntervalMinutes: 60,
		StockIntervalMinutes:   30,
		IntervalUnit:           time.Minute,
		RestartDelay:           time.Second,
		PassTimeout:            5 * time.Minute,
	}
}

// Validate checks intervals and fills zero timings with defaults
func (c *AutoSyncConfig) Validate() error {
	if err := validateIntervals(c.ProductIntervalMinutes, c.StockIntervalMinutes); err != nil {
		return err
	}
	if c.IntervalUnit < 0 || c.RestartDelay < 0 || c.PassTimeout < 0 {
		return ErrInvalidConfig
	}
	if c.IntervalUnit > time.Duration(math.MaxInt64/MaxIntervalMinutes) {
		return fmt.Errorf("%w: interval unit %s is too long", ErrInvalidConfig, c.IntervalUnit)
	}
	defaults := DefaultAutoSyncConfig()
	if c.IntervalUnit == 0 {
		c.IntervalUnit = defaults.IntervalUnit
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = defaults.RestartDelay
	}
	if c.PassTimeout == 0 {
		c.PassTimeout = defaults.PassTimeout
	}
	return nil
}

func (c AutoSyncConfig) productInterval() time.Duration {
	return time.Duration(c.ProductIntervalMinutes) * c.IntervalUnit
}

func (c AutoSyncConfig) stockInterval() time.Duration {
	return time.Duration(c.StockIntervalMinutes) * c.IntervalUnit
}

func validateIntervals(productMinutes, stockMinutes int) error {
	if productMinutes < 0 {
		return fmt.Errorf("%w: product interval must be >= 0, got %d", ErrInvalidInterval, productMinutes)
	}
	if stockMinutes <= 0 {
		return fmt.Errorf("%w: stock interval must be > 0, got %d", ErrInvalidInterval, stockMinutes)
	}
	if productMinutes > MaxIntervalMinutes || stockMinutes > MaxIntervalMinutes {
		return fmt.Errorf("%w: intervals must not exceed %d minutes", ErrInvalidInterval, MaxIntervalMinutes)
	}
	return nil
}
