package scheduler

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/rentfolio/backend/internal/application/billing"
	"go.uber.org/zap"
)

// OverdueScheduler periodically scans for sent invoices past their due
// date and flags them overdue.
type OverdueScheduler struct {
	service   *appbilling.InvoiceService
	logger    *zap.Logger
	config    OverdueSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// OverdueSchedulerConfig holds configuration for the overdue scheduler
type OverdueSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// ScanInterval is the period between overdue scans
	ScanInterval time.Duration

	// ScanTimeout is the maximum time for a single scan
	ScanTimeout time.Duration
}

// DefaultOverdueSchedulerConfig returns default configuration
func DefaultOverdueSchedulerConfig() OverdueSchedulerConfig {
	return OverdueSchedulerConfig{
		Enabled:      true,
		ScanInterval: time.Hour,
		ScanTimeout:  5 * time.Minute,
	}
}

// NewOverdueScheduler creates a new overdue scheduler
func NewOverdueScheduler(
	service *appbilling.InvoiceService,
	logger *zap.Logger,
	config OverdueSchedulerConfig,
) *OverdueScheduler {
	if config.ScanInterval <= 0 {
		config.ScanInterval = time.Hour
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = 5 * time.Minute
	}
	return &OverdueScheduler{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start starts the overdue scheduler
func (s *OverdueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue scheduler started",
		zap.Duration("scan_interval", s.config.ScanInterval),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes the scan loop until the context is cancelled. The first
// scan runs immediately so a restart does not delay overdue flagging by
// a full interval.
func (s *OverdueScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.executeScan(ctx)

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue scan loop stopping")
			return
		case <-ticker.C:
			s.executeScan(ctx)
		}
	}
}

// executeScan runs a single overdue scan
func (s *OverdueScheduler) executeScan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	startTime := time.Now()
	marked, err := s.service.MarkOverdueInvoices(scanCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Overdue scan failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if marked > 0 {
		s.logger.Info("Overdue scan completed",
			zap.Duration("duration", duration),
			zap.Int("marked_overdue", marked),
		)
	} else {
		s.logger.Debug("Overdue scan completed, nothing due",
			zap.Duration("duration", duration),
		)
	}
}

// TriggerImmediateScan triggers an immediate overdue scan
func (s *OverdueScheduler) TriggerImmediateScan(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate overdue scan")

	go func() {
		defer s.wg.Done()
		s.executeScan(ctx)
	}()

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *OverdueScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
