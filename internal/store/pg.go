package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

const (
	// notSupersededClause keeps events no other event points at
	notSupersededClause = "NOT EXISTS (SELECT 1 FROM contract_state_events s WHERE s.supersedes_event_id = contract_state_events.id)"
	// notSupersededAsOfClause keeps events not superseded by an event effective at the given date
	notSupersededAsOfClause = "NOT EXISTS (SELECT 1 FROM contract_state_events s WHERE s.supersedes_event_id = contract_state_events.id AND s.effective_from <= ?)"

	// amountScale is the scale of the numeric(20,2) amount columns
	amountScale = 2

	orderByCreation  = "created_at ASC, id ASC"
	orderByEffective = "effective_from ASC, created_at ASC, id ASC"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new store over a GORM connection.
// The queries are portable between PostgreSQL and SQLite; row locks only apply on PostgreSQL.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// CreateEvent appends one event
func (s *pgStore) CreateEvent(ctx context.Context, input CreateEventInput) (*schema.ContractStateEvent, error) {
	if !domain.IsValidEventType(input.EventType) {
		return nil, fmt.Errorf("invalid event type %q", input.EventType)
	}
	if err := input.TriggeredBy.Validate(); err != nil {
		return nil, err
	}
	if input.ContractID == 0 {
		return nil, errors.New("contract id is required")
	}

	event := schema.ContractStateEvent{
		ContractID:        input.ContractID,
		EventType:         input.EventType,
		TriggeredByKind:   input.TriggeredBy.Kind,
		TriggeredByID:     input.TriggeredBy.ID,
		SpecificationID:   input.SpecificationID,
		AmountDelta:       input.AmountDelta.Round(amountScale),
		EffectiveFrom:     input.EffectiveFrom.UTC(),
		SupersedesEventID: input.SupersedesEventID,
		CorrelationID:     input.CorrelationID,
		CreatedByUserID:   input.CreatedByUserID,
		CreatedAt:         input.CreatedAt.UTC(),
	}
	if len(input.Metadata) > 0 {
		event.Metadata = datatypes.JSONMap(maps.Clone(input.Metadata))
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create contract state event: %w", err)
	}

	return &event, nil
}

// UpdateEventMetadata merges bookkeeping keys into an event's metadata.
// Only the metadata column is written.
func (s *pgStore) UpdateEventMetadata(ctx context.Context, eventID uint64, metadata map[string]any) (*schema.ContractStateEvent, error) {
	var event schema.ContractStateEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", eventID).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
			}
			return fmt.Errorf("failed to get contract state event: %w", err)
		}

		merged := datatypes.JSONMap{}
		maps.Copy(merged, event.Metadata)
		maps.Copy(merged, metadata)

		if err := tx.Model(&schema.ContractStateEvent{}).
			Where("id = ?", eventID).
			UpdateColumn("metadata", merged).Error; err != nil {
			return fmt.Errorf("failed to update event metadata: %w", err)
		}
		event.Metadata = merged

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// GetEventByID retrieves an event by id
func (s *pgStore) GetEventByID(ctx context.Context, eventID uint64) (*schema.ContractStateEvent, error) {
	var event schema.ContractStateEvent
	err := s.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract state event: %w", err)
	}

	return &event, nil
}

// FindByContract retrieves every event of a contract ordered by creation
func (s *pgStore) FindByContract(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error) {
	var events []*schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order(orderByCreation).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events by contract: %w", err)
	}

	return events, nil
}

// FindActiveEvents retrieves the active events of a contract ordered by effective date
func (s *pgStore) FindActiveEvents(ctx context.Context, contractID uint64) ([]*schema.ContractStateEvent, error) {
	var events []*schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where(notSupersededClause).
		Order(orderByEffective).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active events: %w", err)
	}

	return events, nil
}

// FindActiveEventsAsOfDate retrieves events effective at asOf that were not superseded by then.
// A supersession only counts once its own effective date has been reached.
func (s *pgStore) FindActiveEventsAsOfDate(ctx context.Context, contractID uint64, asOf time.Time) ([]*schema.ContractStateEvent, error) {
	asOf = asOf.UTC()

	var events []*schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND effective_from <= ?", contractID, asOf).
		Where(notSupersededAsOfClause, asOf).
		Order(orderByEffective).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active events as of date: %w", err)
	}

	return events, nil
}

// FindSupersedingEvents retrieves the events that supersede eventID
func (s *pgStore) FindSupersedingEvents(ctx context.Context, eventID uint64) ([]*schema.ContractStateEvent, error) {
	var events []*schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("supersedes_event_id = ?", eventID).
		Order(orderByCreation).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find superseding events: %w", err)
	}

	return events, nil
}

// FindByType retrieves every event of a type for a contract
func (s *pgStore) FindByType(ctx context.Context, contractID uint64, eventType domain.EventType) ([]*schema.ContractStateEvent, error) {
	var events []*schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND event_type = ?", contractID, eventType).
		Order(orderByCreation).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events by type: %w", err)
	}

	return events, nil
}

// GetLatestEventByType retrieves the most recently appended event of a type
func (s *pgStore) GetLatestEventByType(ctx context.Context, contractID uint64, eventType domain.EventType) (*schema.ContractStateEvent, error) {
	var event schema.ContractStateEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND event_type = ?", contractID, eventType).
		Order("created_at DESC, id DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest event by type: %w", err)
	}

	return &event, nil
}

// GetTimeline retrieves the full event history of a contract in the order it was recorded
func (s *pgStore) GetTimeline(ctx context.Context, contractID uint64, filter TimelineFilter) ([]*schema.ContractStateEvent, error) {
	query := s.db.WithContext(ctx).Where("contract_id = ?", contractID)
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", filter.CreatedBefore.UTC())
	}
	if filter.EffectiveBefore != nil {
		query = query.Where("effective_from <= ?", filter.EffectiveBefore.UTC())
	}

	var events []*schema.ContractStateEvent
	if err := query.Order(orderByCreation).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}

	return events, nil
}

// ListContractIDs lists every contract that has at least one event
func (s *pgStore) ListContractIDs(ctx context.Context) ([]uint64, error) {
	var contractIDs []uint64
	err := s.db.WithContext(ctx).
		Model(&schema.ContractStateEvent{}).
		Distinct("contract_id").
		Order("contract_id ASC").
		Pluck("contract_id", &contractIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contract ids: %w", err)
	}

	return contractIDs, nil
}

// GetCurrentState retrieves the materialized projection of a contract
func (s *pgStore) GetCurrentState(ctx context.Context, contractID uint64) (*schema.ContractCurrentState, error) {
	var state schema.ContractCurrentState
	err := s.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	return &state, nil
}

// UpsertCurrentState creates or overwrites the materialized projection
func (s *pgStore) UpsertCurrentState(ctx context.Context, state *schema.ContractCurrentState) error {
	state.CalculatedAt = state.CalculatedAt.UTC()
	state.CurrentTotalAmount = state.CurrentTotalAmount.Round(amountScale)
	if state.ActiveEventIDs == nil {
		state.ActiveEventIDs = datatypes.JSONSlice[uint64]{}
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
	if err != nil {
		return fmt.Errorf("failed to upsert current state: %w", err)
	}

	return nil
}

// WithContractLock runs fn in a transaction holding the row lock of the contract.
// Two writers for the same contract are serialized here; the second one reads
// the events committed by the first.
func (s *pgStore) WithContractLock(ctx context.Context, contractID uint64, mode LockMode, fn func(tx Store, version int64) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Make sure the lock row exists
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}},
			DoNothing: true,
		}).Create(&schema.ContractLedgerLock{ContractID: contractID}).Error; err != nil {
			return fmt.Errorf("failed to create contract lock: %w", err)
		}

		// 2. Use SELECT ... FOR UPDATE to serialize writers of this contract
		var lock schema.ContractLedgerLock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("contract_id = ?", contractID).
			First(&lock).Error; err != nil {
			return fmt.Errorf("failed to lock contract: %w", err)
		}

		// 3. Bump the write counter for appending changes
		if mode == LockForAppend {
			lock.Version++
			if err := tx.Model(&schema.ContractLedgerLock{}).
				Where("contract_id = ?", contractID).
				UpdateColumns(map[string]any{
					"version":    lock.Version,
					"updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("failed to bump contract version: %w", err)
			}
		}

		return fn(&pgStore{db: tx}, lock.Version)
	})
}
