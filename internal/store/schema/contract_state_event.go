package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/feral-file/contract-ledger/internal/domain"
)

// ContractStateEvent represents the contract_state_events table - the append-only ledger of amount-affecting changes.
// Rows are never updated except for Metadata and never deleted.
type ContractStateEvent struct {
	// ID is the internal database primary key, also the final ordering tie-breaker
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractID references the owning contract
	ContractID uint64 `gorm:"column:contract_id;not null;index:idx_cse_contract_created,priority:1;index:idx_cse_contract_effective,priority:1"`
	// EventType identifies the kind of change (CREATED, AMENDED, SUPERSEDED, ...)
	EventType domain.EventType `gorm:"column:event_type;not null;type:text"`
	// TriggeredByKind identifies the kind of document that caused the event
	TriggeredByKind domain.TriggerKind `gorm:"column:triggered_by_kind;not null;type:text;index:idx_cse_triggered_by,priority:1"`
	// TriggeredByID is the id of the document that caused the event
	TriggeredByID uint64 `gorm:"column:triggered_by_id;not null;index:idx_cse_triggered_by,priority:2"`
	// SpecificationID references the specification document associated with the change
	SpecificationID *uint64 `gorm:"column:specification_id"`
	// AmountDelta is the signed contribution of this event to the contract total
	AmountDelta decimal.Decimal `gorm:"column:amount_delta;not null;type:numeric(20,2)"`
	// EffectiveFrom is the business-effective timestamp, may be backdated
	EffectiveFrom time.Time `gorm:"column:effective_from;not null;index:idx_cse_contract_effective,priority:2"`
	// SupersedesEventID references the event this one invalidates; an event can be superseded at most once
	SupersedesEventID *uint64 `gorm:"column:supersedes_event_id;uniqueIndex:idx_cse_supersedes_event_id"`
	// Metadata carries audit context (reason, document numbers, superseded id lists)
	Metadata datatypes.JSONMap `gorm:"column:metadata"`
	// CorrelationID groups the events written by one logical change
	CorrelationID uuid.UUID `gorm:"column:correlation_id;not null;type:uuid;index"`
	// CreatedByUserID is the user who originated the change, if known
	CreatedByUserID *uint64 `gorm:"column:created_by_user_id"`
	// CreatedAt is the timestamp when this row was appended
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_cse_contract_created,priority:2"`
}

// TableName specifies the table name for the ContractStateEvent model
func (ContractStateEvent) TableName() string {
	return "contract_state_events"
}

// TriggeredBy returns the triggering document reference
func (e *ContractStateEvent) TriggeredBy() domain.TriggeredBy {
	return domain.TriggeredBy{Kind: e.TriggeredByKind, ID: e.TriggeredByID}
}

// Supersedes reports whether this event invalidates another one
func (e *ContractStateEvent) Supersedes() bool {
	return e.SupersedesEventID != nil
}
