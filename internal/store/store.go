package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// LockMode controls what WithContractLock does to the contract's write counter
type LockMode int

const (
	// LockForAppend locks the contract and bumps its version; used by every event-appending change
	LockForAppend LockMode = iota
	// LockForRecalculate locks the contract without bumping its version
	LockForRecalculate
)

// CreateEventInput represents the input for appending a ledger event
type CreateEventInput struct {
	ContractID        uint64
	EventType         domain.EventType
	TriggeredBy       domain.TriggeredBy
	SpecificationID   *uint64
	AmountDelta       decimal.Decimal
	EffectiveFrom     time.Time
	SupersedesEventID *uint64
	Metadata          map[string]any
	CorrelationID     uuid.UUID
	CreatedByUserID   *uint64
	CreatedAt         time.Time
}

// TimelineFilter bounds a timeline query. Nil fields are not applied.
type TimelineFilter struct {
	// CreatedBefore excludes events appended after this instant
	CreatedBefore *time.Time
	// EffectiveBefore excludes events that take effect after this instant
	EffectiveBefore *time.Time
}

// Store defines the interface for ledger persistence.
// There is deliberately no way to change an event's amount, type, contract or supersession target.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateEvent appends one event
	CreateEvent(ctx context.Context, input CreateEventInput) (*schema.ContractStateEvent, error)
	// UpdateEventMetadata merges bookkeeping keys into an event's metadata
	UpdateEventMetadata(ctx context.Context, eventID uint64, metadata map[string]any) (*schema.ContractStateEvent, error)
	// GetEventByID retrieves an event by id, nil if it does not exist
	GetEventByID(ctx context.Context, eventID uint64) (*schema.ContractStateEvent, error)
	// FindByContract retrieves every event of a contract ordered by creation
	FindByContract(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error)
	// FindActiveEvents retrieves events not superseded by any other event, ordered by effective date
	FindActiveEvents(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error)
	// FindActiveEventsAsOfDate retrieves events effective at asOf and not superseded as of that date
	FindActiveEventsAsOfDate(ctx context.Context, contractID uint64, asOf time.Time) ([]*schema.ContractStateEvent, error)
	// FindSupersedingEvents retrieves events whose supersedes_event_id is eventID
	FindSupersedingEvents(ctx context.Context, eventID uint64) ([]*schema.ContractStateEvent, error)
	// FindByType retrieves every event of a type for a contract ordered by creation
	FindByType(ctx context.Context, contractID uint64, eventType domain.EventType) ([]*schema.ContractStateEvent, error)
	// GetLatestEventByType retrieves the most recently appended event of a type, nil if none
	GetLatestEventByType(ctx context.Context, contractID uint64, eventType domain.EventType) (*schema.ContractStateEvent, error)
	// GetTimeline retrieves the full history of a contract, active and superseded
	GetTimeline(ctx context.Context, contractID uint64, filter TimelineFilter) ([]*schema.ContractStateEvent, error)
	// ListContractIDs lists every contract that has at least one event
	ListContractIDs(ctx context.Context) ([]uint64, error)
	// GetCurrentState retrieves the materialized projection, nil if it was never computed
	GetCurrentState(ctx context.Context, contractID uint64) (*schema.ContractCurrentState, error)
	// UpsertCurrentState creates or overwrites the materialized projection
	UpsertCurrentState(ctx context.Context, state *schema.ContractCurrentState) error
	// WithContractLock runs fn in a transaction holding the contract's row lock.
	// fn receives a store bound to the transaction and the contract's version after locking.
	WithContractLock(ctx context.Context, contractID uint64, mode LockMode, fn func(tx Store, version int64) error) error
}
