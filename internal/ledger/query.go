package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/contract-ledger/internal/cache"
	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/logger"
	"github.com/feral-file/contract-ledger/internal/store"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// EventQuery is the read side of the event store.
// Per-contract reads go through the cache; every write through it invalidates the contract.
type EventQuery struct {
	store    store.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewEventQuery creates a new query layer
func NewEventQuery(st store.Store, c cache.Cache, cacheTTL time.Duration) *EventQuery {
	return &EventQuery{
		store:    st,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// CreateEvent appends an event inside the caller's transaction and invalidates the contract's cache.
// A failed invalidation fails the write so the transaction is rolled back.
func (q *EventQuery) CreateEvent(ctx context.Context, tx store.Store, input store.CreateEventInput) (*schema.ContractStateEvent, error) {
	event, err := tx.CreateEvent(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := q.cache.Invalidate(ctx, input.ContractID); err != nil {
		return nil, fmt.Errorf("failed to invalidate contract cache: %w", err)
	}

	return event, nil
}

// UpdateEventMetadata merges bookkeeping keys into an event's metadata and invalidates the contract's cache
func (q *EventQuery) UpdateEventMetadata(ctx context.Context, eventID uint64, metadata map[string]any) (*schema.ContractStateEvent, error) {
	event, err := q.store.UpdateEventMetadata(ctx, eventID, metadata)
	if err != nil {
		return nil, err
	}

	if err := q.cache.Invalidate(ctx, event.ContractID); err != nil {
		return nil, fmt.Errorf("failed to invalidate contract cache: %w", err)
	}

	return event, nil
}

// Invalidate drops every cached read of the contract
func (q *EventQuery) Invalidate(ctx context.Context, contractID uint64) error {
	return q.cache.Invalidate(ctx, contractID)
}

// invalidateAfterCommit drops the contract's cache once a transaction is committed.
// A reader may have cached pre-commit rows after the in-transaction invalidation.
func (q *EventQuery) invalidateAfterCommit(ctx context.Context, contractID uint64) {
	if err := q.cache.Invalidate(ctx, contractID); err != nil {
		logger.WarnCtx(ctx, "Failed to invalidate contract cache after commit",
			zap.Uint64("contract_id", contractID),
			zap.Error(err),
		)
	}
}

// GetEventByID retrieves an event, nil if it does not exist
func (q *EventQuery) GetEventByID(ctx context.Context, eventID uint64) (*schema.ContractStateEvent, error) {
	return q.store.GetEventByID(ctx, eventID)
}

// FindByContract retrieves every event of a contract ordered by creation
func (q *EventQuery) FindByContract(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error) {
	return cache.GetOrCompute(ctx, q.cache, contractID, nsEvents, q.cacheTTL,
		func(ctx context.Context) ([]*schema.ContractStateEvent, error) {
			return q.store.FindByContract(ctx, contractID)
		})
}

// FindActiveEvents retrieves the active events of a contract ordered by effective date
func (q *EventQuery) FindActiveEvents(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error) {
	return cache.GetOrCompute(ctx, q.cache, contractID, nsActiveEvents, q.cacheTTL,
		func(ctx context.Context) ([]*schema.ContractStateEvent, error) {
			return q.store.FindActiveEvents(ctx, contractID)
		})
}

// FindActiveEventsAsOfDate retrieves the events active at a date. Never cached.
func (q *EventQuery) FindActiveEventsAsOfDate(ctx context.Context, contractID uint64, asOf time.Time) ([]*schema.ContractStateEvent, error) {
	return q.store.FindActiveEventsAsOfDate(ctx, contractID, asOf)
}

// FindSupersedingEvents retrieves the events that supersede eventID
func (q *EventQuery) FindSupersedingEvents(ctx context.Context, eventID uint64) ([]*schema.ContractStateEvent, error) {
	return q.store.FindSupersedingEvents(ctx, eventID)
}

// FindByType retrieves every event of a type for a contract ordered by creation
func (q *EventQuery) FindByType(ctx context.Context, contractID uint64, eventType domain.EventType) ([]*schema.ContractStateEvent, error) {
	events, err := q.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*schema.ContractStateEvent, 0, len(events))
	for _, event := range events {
		if event.EventType == eventType {
			filtered = append(filtered, event)
		}
	}

	return filtered, nil
}

// GetLatestEventByType retrieves the last appended event of a type, nil if none
func (q *EventQuery) GetLatestEventByType(ctx context.Context, contractID uint64, eventType domain.EventType) (*schema.ContractStateEvent, error) {
	events, err := q.FindByType(ctx, contractID, eventType)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	return events[len(events)-1], nil
}

// GetTimeline retrieves the full history of a contract, active and superseded.
// With asOf set, only events recorded and effective by then are returned.
func (q *EventQuery) GetTimeline(ctx context.Context, contractID uint64, asOf *time.Time) ([]*schema.ContractStateEvent, error) {
	filter := store.TimelineFilter{}
	if asOf != nil {
		filter.CreatedBefore = asOf
		filter.EffectiveBefore = asOf
	}

	return q.store.GetTimeline(ctx, contractID, filter)
}
