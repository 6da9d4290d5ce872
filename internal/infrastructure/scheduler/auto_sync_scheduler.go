package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/domain/integration"
)

type passKind string

const (
	passProductSync passKind = "product_sync"
	passStockPush   passKind = "stock_push"
)

// ---------------------------------------------------------------------------
// AutoSyncScheduler
// ---------------------------------------------------------------------------

// AutoSyncScheduler drives periodic product-sync and stock-push passes for one user.
//
// Every Start opens a new generation. Stop closes it, and a tick that wakes up
// for a closed generation neither runs, nor updates the next-run times, nor
// re-arms. Passes run on a context detached from the caller, so a pass that is
// already in flight when Stop is called completes and writes its log entry.
type AutoSyncScheduler struct {
	userID uuid.UUID
	runner integration.AutoSyncRunner
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	config     AutoSyncConfig
	running    bool
	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	restartTimer *time.Timer
	restartSeq   uint64

	lastProductSyncAt *time.Time
	lastStockUpdateAt *time.Time
	nextProductSyncAt *time.Time
	nextStockUpdateAt *time.Time
}

// NewAutoSyncScheduler creates a stopped scheduler
func NewAutoSyncScheduler(userID uuid.UUID, runner integration.AutoSyncRunner, config AutoSyncConfig, logger *zap.Logger) (*AutoSyncScheduler, error) {
	if runner == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AutoSyncScheduler{
		userID: userID,
		runner: runner,
		logger: logger.With(zap.String("user_id", userID.String())),
		now:    time.Now,
		config: config,
	}, nil
}

// Start fires one pass of each enabled kind immediately and arms the timers.
// Starting a running scheduler is a no-op.
func (s *AutoSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelRestartLocked()
	if s.running {
		return nil
	}
	s.startLocked(ctx)
	return nil
}

func (s *AutoSyncScheduler) startLocked(ctx context.Context) {
	s.running = true
	s.generation++
	gen := s.generation

	// Loops outlive the request that started them but keep its values.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	now := s.now()
	stockInterval := s.config.stockInterval()
	nextStock := now.Add(stockInterval)
	s.nextStockUpdateAt = &nextStock

	s.wg.Add(1)
	go s.loop(loopCtx, gen, passStockPush, stockInterval)

	if s.config.ProductIntervalMinutes > 0 {
		productInterval := s.config.productInterval()
		nextProduct := now.Add(productInterval)
		s.nextProductSyncAt = &nextProduct

		s.wg.Add(1)
		go s.loop(loopCtx, gen, passProductSync, productInterval)
	} else {
		s.nextProductSyncAt = nil
	}

	s.logger.Info("Auto-sync started",
		zap.Int("product_interval_minutes", s.config.ProductIntervalMinutes),
		zap.Int("stock_interval_minutes", s.config.StockIntervalMinutes),
	)
}

// Stop disarms both timers and clears the next-run times. A pending delayed
// restart is cancelled as well.
func (s *AutoSyncScheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hadRestart := s.cancelRestartLocked()
	if !s.running {
		if hadRestart {
			return nil
		}
		return ErrSchedulerNotRunning
	}
	s.stopLocked()
	return nil
}

func (s *AutoSyncScheduler) stopLocked() {
	s.running = false
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.nextProductSyncAt = nil
	s.nextStockUpdateAt = nil

	s.logger.Info("Auto-sync stopped")
}

// UpdateIntervals stores new intervals. A running scheduler is stopped and
// started again after the restart delay; a stopped one only keeps the values.
func (s *AutoSyncScheduler) UpdateIntervals(ctx context.Context, productMinutes, stockMinutes int) error {
	if err := validateIntervals(productMinutes, stockMinutes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.ProductIntervalMinutes = productMinutes
	s.config.StockIntervalMinutes = stockMinutes

	if !s.running {
		return nil
	}

	s.stopLocked()
	s.restartSeq++
	seq := s.restartSeq
	restartCtx := context.WithoutCancel(ctx)
	s.restartTimer = time.AfterFunc(s.config.RestartDelay, func() {
		s.restart(restartCtx, seq)
	})

	s.logger.Info("Auto-sync intervals updated, restarting",
		zap.Int("product_interval_minutes", productMinutes),
		zap.Int("stock_interval_minutes", stockMinutes),
		zap.Duration("restart_delay", s.config.RestartDelay),
	)
	return nil
}

func (s *AutoSyncScheduler) restart(ctx context.Context, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.restartSeq || s.restartTimer == nil {
		return
	}
	s.restartTimer = nil
	if !s.running {
		s.startLocked(ctx)
	}
}

func (s *AutoSyncScheduler) cancelRestartLocked() bool {
	if s.restartTimer == nil {
		return false
	}
	s.restartTimer.Stop()
	s.restartTimer = nil
	s.restartSeq++
	return true
}

// Status returns a snapshot of the scheduler state
func (s *AutoSyncScheduler) Status() integration.AutoSyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return integration.AutoSyncStatus{
		IsRunning:                  s.running,
		LastProductSyncAt:          copyTime(s.lastProductSyncAt),
		LastStockUpdateAt:          copyTime(s.lastStockUpdateAt),
		NextProductSyncAt:          copyTime(s.nextProductSyncAt),
		NextStockUpdateAt:          copyTime(s.nextStockUpdateAt),
		ProductSyncIntervalMinutes: s.config.ProductIntervalMinutes,
		StockUpdateIntervalMinutes: s.config.StockIntervalMinutes,
	}
}

// IsRunning returns true between Start and Stop
func (s *AutoSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until every loop of stopped generations has exited or ctx is done.
// It does not stop the scheduler.
func (s *AutoSyncScheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

// loop runs the immediate pass then one pass per tick until its generation ends
func (s *AutoSyncScheduler) loop(ctx context.Context, gen uint64, kind passKind, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if s.beginPass(gen, kind, 0) {
		s.runPass(ctx, kind)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.beginPass(gen, kind, interval) {
				return
			}
			s.runPass(ctx, kind)
		}
	}
}

// beginPass stamps the last-run time and, for ticks, advances the next-run time.
// It reports false once gen is no longer current.
func (s *AutoSyncScheduler) beginPass(gen uint64, kind passKind, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || gen != s.generation {
		return false
	}

	now := s.now()
	switch kind {
	case passProductSync:
		s.lastProductSyncAt = &now
		if interval > 0 {
			next := now.Add(interval)
			s.nextProductSyncAt = &next
		}
	case passStockPush:
		s.lastStockUpdateAt = &now
		if interval > 0 {
			next := now.Add(interval)
			s.nextStockUpdateAt = &next
		}
	}
	return true
}

// runPass invokes the runner; errors are logged and swallowed
func (s *AutoSyncScheduler) runPass(ctx context.Context, kind passKind) {
	s.mu.Lock()
	timeout := s.config.PassTimeout
	s.mu.Unlock()

	// In-flight passes survive Stop.
	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch kind {
	case passProductSync:
		err = s.runner.RunProductSync(passCtx, s.userID)
	case passStockPush:
		err = s.runner.RunStockPush(passCtx, s.userID)
	}

	if err != nil {
		s.logger.Warn("Auto-sync pass failed",
			zap.String("operation", string(kind)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Auto-sync pass completed",
		zap.String("operation", string(kind)),
		zap.Duration("duration", time.Since(start)),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
