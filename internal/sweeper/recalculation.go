package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/contract-ledger/internal/adapter"
	"github.com/feral-file/contract-ledger/internal/ledger"
	"github.com/feral-file/contract-ledger/internal/logger"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// ContractRecalculator rebuilds the projection of one contract
//
//go:generate mockgen -source=recalculation.go -destination=../mocks/recalculation.go -package=mocks -mock_names=ContractRecalculator=MockContractRecalculator,ContractLister=MockContractLister
type ContractRecalculator interface {
	RecalculateContractState(ctx context.Context, contractID uint64) (*schema.ContractCurrentState, error)
}

// ContractLister lists the contracts that have ledger events
type ContractLister interface {
	ListContractIDs(ctx context.Context) ([]uint64, error)
}

// RecalculationSweeperConfig holds configuration for the recalculation sweeper
type RecalculationSweeperConfig struct {
	Interval             time.Duration // Time between cycles, zero runs a single cycle
	WorkerPoolSize       int           // Concurrent recalculations
	MaxRetries           uint64        // Retries per contract after the first attempt
	RetryInitialInterval time.Duration // First backoff interval
	RetryMaxInterval     time.Duration // Backoff ceiling
}

// RecalculationSweeper rebuilds the projection of every contract
type RecalculationSweeper struct {
	config     *RecalculationSweeperConfig
	lister     ContractLister
	calculator ContractRecalculator
	clock      adapter.Clock
	running    atomic.Bool
	stopChan   chan struct{}
	stoppedCh  chan struct{}
}

// NewRecalculationSweeper creates a new recalculation sweeper
func NewRecalculationSweeper(
	config *RecalculationSweeperConfig,
	lister ContractLister,
	calculator ContractRecalculator,
	clock adapter.Clock,
) *RecalculationSweeper {
	return &RecalculationSweeper{
		config:     config,
		lister:     lister,
		calculator: calculator,
		clock:      clock,
		stopChan:   make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *RecalculationSweeper) Name() string {
	return "recalculation-sweeper"
}

// Start runs recalculation cycles until stopped
func (s *RecalculationSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting recalculation sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	for {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		if s.config.Interval <= 0 {
			return nil
		}

		select {
		case <-s.clock.After(s.config.Interval):
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Recalculation sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Recalculation sweeper stop requested")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *RecalculationSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping recalculation sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Recalculation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Recalculation sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunOnce recalculates every contract once.
// A contract that still fails after its retries is reported and does not stop the cycle.
func (s *RecalculationSweeper) RunOnce(ctx context.Context) (*ledger.BatchReport, error) {
	startTime := s.clock.Now()

	contractIDs, err := s.lister.ListContractIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	report := &ledger.BatchReport{Total: len(contractIDs)}
	if len(contractIDs) == 0 {
		logger.InfoCtx(ctx, "No contracts to recalculate")
		return report, nil
	}

	poolSize := s.config.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	pool := pond.NewPool(poolSize, pond.WithContext(ctx))

	var mu sync.Mutex
	for _, contractID := range contractIDs {
		pool.Submit(func() {
			err := s.recalculateWithRetry(ctx, contractID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, ledger.ContractFailure{ContractID: contractID, Err: err})
				return
			}
			report.Succeeded++
		})
	}
	pool.StopAndWait()

	logger.InfoCtx(ctx, "Recalculation cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)),
	)

	return report, ctx.Err()
}

// recalculateWithRetry recalculates one contract with exponential backoff
func (s *RecalculationSweeper) recalculateWithRetry(ctx context.Context, contractID uint64) error {
	b := backoff.NewExponentialBackOff()
	if s.config.RetryInitialInterval > 0 {
		b.InitialInterval = s.config.RetryInitialInterval
	}
	if s.config.RetryMaxInterval > 0 {
		b.MaxInterval = s.config.RetryMaxInterval
	}
	b.RandomizationFactor = 0.5 // Add jitter to spread retries of failing contracts

	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.config.MaxRetries), ctx)

	operation := func() error {
		_, err := s.calculator.RecalculateContractState(ctx, contractID)
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Contract recalculation failed, retrying",
			zap.Uint64("contract_id", contractID),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notifyOnError); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to recalculate contract after %d attempts: %w", attemptCount+1, err),
			zap.Uint64("contract_id", contractID),
		)
		return err
	}

	return nil
}

var _ Sweeper = (*RecalculationSweeper)(nil)
