package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// AutoSyncManager owns one AutoSyncScheduler per user
type AutoSyncManager struct {
	runner   integration.AutoSyncRunner
	defaults AutoSyncConfig
	logger   *zap.Logger

	mu         sync.Mutex
	schedulers map[uuid.UUID]*AutoSyncScheduler
}

// NewAutoSyncManager creates a manager; defaults seed every new user's scheduler
func NewAutoSyncManager(runner integration.AutoSyncRunner, defaults AutoSyncConfig, logger *zap.Logger) (*AutoSyncManager, error) {
	if runner == nil {
		return nil, ErrInvalidConfig
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AutoSyncManager{
		runner:     runner,
		defaults:   defaults,
		logger:     logger,
		schedulers: make(map[uuid.UUID]*AutoSyncScheduler),
	}, nil
}

func (m *AutoSyncManager) scheduler(userID uuid.UUID) (*AutoSyncScheduler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.schedulers[userID]; ok {
		return s, nil
	}
	s, err := NewAutoSyncScheduler(userID, m.runner, m.defaults, m.logger)
	if err != nil {
		return nil, err
	}
	m.schedulers[userID] = s
	return s, nil
}

func (m *AutoSyncManager) lookup(userID uuid.UUID) (*AutoSyncScheduler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedulers[userID]
	return s, ok
}

// Start starts the user's scheduler
func (m *AutoSyncManager) Start(ctx context.Context, userID uuid.UUID) (integration.AutoSyncStatus, error) {
	s, err := m.scheduler(userID)
	if err != nil {
		return integration.AutoSyncStatus{}, err
	}
	if err := s.Start(ctx); err != nil {
		return integration.AutoSyncStatus{}, err
	}
	return s.Status(), nil
}

// Stop stops the user's scheduler
func (m *AutoSyncManager) Stop(ctx context.Context, userID uuid.UUID) (integration.AutoSyncStatus, error) {
	s, ok := m.lookup(userID)
	if !ok {
		return m.Status(userID), ErrSchedulerNotRunning
	}
	if err := s.Stop(ctx); err != nil {
		return s.Status(), err
	}
	return s.Status(), nil
}

// UpdateIntervals changes the user's intervals
func (m *AutoSyncManager) UpdateIntervals(ctx context.Context, userID uuid.UUID, productMinutes, stockMinutes int) (integration.AutoSyncStatus, error) {
	if err := validateIntervals(productMinutes, stockMinutes); err != nil {
		return integration.AutoSyncStatus{}, err
	}
	s, err := m.scheduler(userID)
	if err != nil {
		return integration.AutoSyncStatus{}, err
	}
	if err := s.UpdateIntervals(ctx, productMinutes, stockMinutes); err != nil {
		return integration.AutoSyncStatus{}, err
	}
	return s.Status(), nil
}

// Status returns the user's scheduler state; users without a scheduler get the defaults
func (m *AutoSyncManager) Status(userID uuid.UUID) integration.AutoSyncStatus {
	if s, ok := m.lookup(userID); ok {
		return s.Status()
	}
	return integration.AutoSyncStatus{
		ProductSyncIntervalMinutes: m.defaults.ProductIntervalMinutes,
		StockUpdateIntervalMinutes: m.defaults.StockIntervalMinutes,
	}
}

// StopAll stops every running scheduler and waits for their loops to exit
func (m *AutoSyncManager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	schedulers := make([]*AutoSyncScheduler, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		schedulers = append(schedulers, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range schedulers {
		if err := s.Stop(ctx); err != nil && !errors.Is(err, ErrSchedulerNotRunning) {
			errs = append(errs, err)
		}
	}
	for _, s := range schedulers {
		if err := s.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
	}

	m.logger.Info("Auto-sync schedulers stopped", zap.Int("count", len(schedulers)))
	return errors.Join(errs...)
}
