package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when stopping a scheduler that is not running
	ErrSchedulerNotRunning = errors.New("scheduler: auto-sync is not running")

	// ErrInvalidInterval is returned for a negative product interval, a non-positive stock interval
	// or either interval above MaxIntervalMinutes
	ErrInvalidInterval = errors.New("scheduler: invalid sync interval")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")
)
