package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ContractCurrentState represents the contract_current_states table - the materialized projection of a contract's ledger.
// It is a cache that can always be rebuilt from contract_state_events.
type ContractCurrentState struct {
	// ContractID is the primary key, one row per contract
	ContractID uint64 `gorm:"column:contract_id;primaryKey;autoIncrement:false"`
	// ActiveSpecificationID is the specification in effect
	ActiveSpecificationID *uint64 `gorm:"column:active_specification_id"`
	// CurrentTotalAmount is the sum of the active amount-bearing deltas
	CurrentTotalAmount decimal.Decimal `gorm:"column:current_total_amount;not null;type:numeric(20,2)"`
	// ActiveEventIDs is the snapshot of event ids the projection was computed from
	ActiveEventIDs datatypes.JSONSlice[uint64] `gorm:"column:active_event_ids"`
	// Version is the per-contract write counter observed when the projection was computed
	Version int64 `gorm:"column:version;not null"`
	// CalculatedAt is the staleness marker
	CalculatedAt time.Time `gorm:"column:calculated_at;not null"`
}

// TableName specifies the table name for the ContractCurrentState model
func (ContractCurrentState) TableName() string {
	return "contract_current_states"
}
