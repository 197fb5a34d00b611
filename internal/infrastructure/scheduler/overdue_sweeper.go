package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptSweeper marks a tenant's open receipts past their due date as overdue.
type ReceiptSweeper interface {
	SweepOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int, error)
}

// TenantSource lists the tenants that have receipts due before a cutoff.
type TenantSource interface {
	TenantsWithOpenReceipts(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}

// OverdueSweeperConfig holds configuration for the overdue sweeper.
type OverdueSweeperConfig struct {
	Enabled      bool
	Interval     time.Duration
	SweepTimeout time.Duration
}

// DefaultOverdueSweeperConfig returns default configuration.
func DefaultOverdueSweeperConfig() OverdueSweeperConfig {
	return OverdueSweeperConfig{
		Enabled:      true,
		Interval:     time.Hour,
		SweepTimeout: 5 * time.Minute,
	}
}

// OverdueSweeper periodically walks every tenant with open receipts and
// flips receipts past their due date to overdue.
type OverdueSweeper struct {
	receipts  ReceiptSweeper
	tenants   TenantSource
	logger    *zap.Logger
	config    OverdueSweeperConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweeper creates an overdue sweeper.
func NewOverdueSweeper(
	receipts ReceiptSweeper,
	tenants TenantSource,
	logger *zap.Logger,
	config OverdueSweeperConfig,
) *OverdueSweeper {
	return &OverdueSweeper{
		receipts: receipts,
		tenants:  tenants,
		logger:   logger,
		config:   config,
	}
}

// Start launches the sweep loop. Starting a running or disabled sweeper is
// a no-op.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop gracefully stops the sweeper, waiting for an in-flight sweep.
func (s *OverdueSweeper) Stop(ctx context.Context) error {
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
		s.logger.Info("Overdue sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OverdueSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAll(ctx)
		}
	}
}

// SweepNow runs a single sweep across all tenants immediately.
func (s *OverdueSweeper) SweepNow(ctx context.Context) {
	s.sweepAll(ctx)
}

func (s *OverdueSweeper) sweepAll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	asOf := time.Now().UTC()
	tenantIDs, err := s.tenants.TenantsWithOpenReceipts(ctx, asOf)
	if err != nil {
		s.logger.Error("Failed to list tenants for overdue sweep", zap.Error(err))
		return
	}

	total := 0
	for _, tenantID := range tenantIDs {
		count, err := s.receipts.SweepOverdue(ctx, tenantID, asOf)
		if err != nil {
			s.logger.Error("Overdue sweep failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			continue
		}
		total += count
	}

	if total > 0 {
		s.logger.Info("Overdue sweep completed",
			zap.Int("tenants", len(tenantIDs)),
			zap.Int("marked_overdue", total))
	}
}
