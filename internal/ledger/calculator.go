package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/contract-ledger/internal/adapter"
	"github.com/feral-file/contract-ledger/internal/cache"
	"github.com/feral-file/contract-ledger/internal/logger"
	"github.com/feral-file/contract-ledger/internal/messaging"
	"github.com/feral-file/contract-ledger/internal/store"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// Calculator maintains the materialized projection of contracts
type Calculator struct {
	store      store.Store
	query      *EventQuery
	cache      cache.Cache
	publisher  messaging.Publisher
	clock      adapter.Clock
	cacheTTL   time.Duration
	staleAfter time.Duration
}

// NewCalculator creates a new state calculator. publisher may be nil.
func NewCalculator(st store.Store, c cache.Cache, publisher messaging.Publisher, clock adapter.Clock, cfg Config) *Calculator {
	cfg = cfg.withDefaults()
	return &Calculator{
		store:      st,
		query:      NewEventQuery(st, c, cfg.CacheTTL),
		cache:      c,
		publisher:  publisher,
		clock:      clock,
		cacheTTL:   cfg.CacheTTL,
		staleAfter: cfg.StaleAfter,
	}
}

// RecalculateContractState rebuilds and stores the projection of a contract.
// It holds the contract lock so it never interleaves with a write.
// A StateChanged message is published when the rebuilt total or active specification differs from the stored one.
func (c *Calculator) RecalculateContractState(ctx context.Context, contractID uint64) (*schema.ContractCurrentState, error) {
	var previous, state *schema.ContractCurrentState
	err := c.store.WithContractLock(ctx, contractID, store.LockForRecalculate, func(tx store.Store, version int64) error {
		var err error
		previous, err = tx.GetCurrentState(ctx, contractID)
		if err != nil {
			return err
		}

		state, err = c.recalculateWithin(ctx, tx, contractID, version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate contract %d: %w", contractID, err)
	}

	c.query.invalidateAfterCommit(ctx, contractID)

	if projectionChanged(previous, state) {
		logger.InfoCtx(ctx, "Recalculation changed contract state",
			zap.Uint64("contract_id", contractID),
			zap.String("total_amount", state.CurrentTotalAmount.StringFixed(2)),
		)
		c.publish(ctx, state, uuid.New(), nil)
	}

	return state, nil
}

func projectionChanged(previous, current *schema.ContractCurrentState) bool {
	if previous == nil {
		return true
	}
	if !previous.CurrentTotalAmount.Equal(current.CurrentTotalAmount) {
		return true
	}

	a, b := previous.ActiveSpecificationID, current.ActiveSpecificationID
	if a == nil || b == nil {
		return a != b
	}
	return *a != *b
}

// publish announces a committed state. Failures are logged only.
func (c *Calculator) publish(ctx context.Context, state *schema.ContractCurrentState, correlationID uuid.UUID, eventIDs []uint64) {
	if c.publisher == nil {
		return
	}

	if eventIDs == nil {
		eventIDs = []uint64{}
	}

	err := c.publisher.PublishStateChanged(ctx, &messaging.StateChanged{
		ContractID:            state.ContractID,
		TotalAmount:           state.CurrentTotalAmount,
		ActiveSpecificationID: state.ActiveSpecificationID,
		Version:               state.Version,
		CorrelationID:         correlationID,
		EventIDs:              eventIDs,
		CalculatedAt:          state.CalculatedAt,
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to publish contract state change",
			zap.Uint64("contract_id", state.ContractID),
			zap.String("correlation_id", correlationID.String()),
			zap.Error(err),
		)
	}
}

// recalculateWithin rebuilds the projection inside a locked transaction
func (c *Calculator) recalculateWithin(ctx context.Context, tx store.Store, contractID uint64, version int64) (*schema.ContractCurrentState, error) {
	events, err := tx.FindActiveEvents(ctx, contractID)
	if err != nil {
		return nil, err
	}

	p := Aggregate(events)
	state := &schema.ContractCurrentState{
		ContractID:            contractID,
		ActiveSpecificationID: p.ActiveSpecificationID,
		CurrentTotalAmount:    p.TotalAmount,
		ActiveEventIDs:        datatypes.JSONSlice[uint64](p.ActiveEventIDs),
		Version:               version,
		CalculatedAt:          c.clock.Now().UTC(),
	}

	if err := tx.UpsertCurrentState(ctx, state); err != nil {
		return nil, err
	}

	if err := c.cache.Invalidate(ctx, contractID); err != nil {
		return nil, fmt.Errorf("failed to invalidate contract cache: %w", err)
	}

	return state, nil
}

// GetCurrentState returns the materialized projection of a contract.
// The stored row is read through the cache and rebuilt when it is missing,
// older than the staleness threshold, or when force is set.
func (c *Calculator) GetCurrentState(ctx context.Context, contractID uint64, force bool) (*schema.ContractCurrentState, error) {
	if force {
		return c.RecalculateContractState(ctx, contractID)
	}

	state, err := cache.GetOrCompute(ctx, c.cache, contractID, nsState, c.cacheTTL,
		func(ctx context.Context) (*schema.ContractCurrentState, error) {
			return c.store.GetCurrentState(ctx, contractID)
		})
	if err != nil {
		return nil, err
	}

	if state == nil || c.isStale(state) {
		return c.RecalculateContractState(ctx, contractID)
	}

	return state, nil
}

func (c *Calculator) isStale(state *schema.ContractCurrentState) bool {
	return c.clock.Since(state.CalculatedAt) > c.staleAfter
}

// GetStateAtDate computes the state of a contract at a date from the events active then. Never cached.
func (c *Calculator) GetStateAtDate(ctx context.Context, contractID uint64, date time.Time) (*State, error) {
	events, err := c.query.FindActiveEventsAsOfDate(ctx, contractID, date)
	if err != nil {
		return nil, err
	}

	return newState(contractID, events, date), nil
}

// RecalculateContract rebuilds the projection of one contract, logging failures
func (c *Calculator) RecalculateContract(ctx context.Context, contractID uint64) error {
	if _, err := c.RecalculateContractState(ctx, contractID); err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("contract_id", contractID))
		return err
	}

	return nil
}

// ContractFailure is a contract that could not be recalculated
type ContractFailure struct {
	ContractID uint64
	Err        error
}

// BatchReport summarizes a batch recalculation
type BatchReport struct {
	Total     int
	Succeeded int
	Failures  []ContractFailure
}

// RecalculateAllContracts rebuilds the projection of every contract that has events.
// A failing contract is recorded in the report and does not stop the batch.
func (c *Calculator) RecalculateAllContracts(ctx context.Context) (*BatchReport, error) {
	contractIDs, err := c.store.ListContractIDs(ctx)
	if err != nil {
		return nil, err
	}

	startTime := c.clock.Now()
	report := &BatchReport{Total: len(contractIDs)}
	for _, contractID := range contractIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := c.RecalculateContract(ctx, contractID); err != nil {
			report.Failures = append(report.Failures, ContractFailure{ContractID: contractID, Err: err})
			continue
		}
		report.Succeeded++
	}

	logger.InfoCtx(ctx, "Recalculated contracts",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", c.clock.Since(startTime)),
	)

	return report, nil
}
