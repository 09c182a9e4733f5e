package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// Projection is the result of aggregating a set of active events
type Projection struct {
	TotalAmount           decimal.Decimal
	ActiveSpecificationID *uint64
	ActiveEventIDs        []uint64
}

// Aggregate folds active events, ordered by effective date, into a projection.
//
// The total is the sum of the deltas of events whose type affects the total.
// The active specification is the one of the latest AMENDED event that carries
// a specification, falling back to the CREATED event's.
func Aggregate(events []*schema.ContractStateEvent) Projection {
	p := Projection{
		TotalAmount:    decimal.Zero,
		ActiveEventIDs: make([]uint64, 0, len(events)),
	}

	var createdSpec, amendedSpec *uint64
	for _, event := range events {
		p.ActiveEventIDs = append(p.ActiveEventIDs, event.ID)

		if event.EventType.AffectsTotal() {
			p.TotalAmount = p.TotalAmount.Add(event.AmountDelta)
		}

		if event.SpecificationID == nil {
			continue
		}
		switch event.EventType {
		case domain.EventTypeAmended:
			amendedSpec = event.SpecificationID
		case domain.EventTypeCreated:
			if createdSpec == nil {
				createdSpec = event.SpecificationID
			}
		}
	}

	switch {
	case amendedSpec != nil:
		p.ActiveSpecificationID = copyID(amendedSpec)
	case createdSpec != nil:
		p.ActiveSpecificationID = copyID(createdSpec)
	}

	return p
}

// State is the state of a contract as seen by callers of the ledger
type State struct {
	ContractID            uint64                       `json:"contract_id"`
	TotalAmount           decimal.Decimal              `json:"total_amount"`
	ActiveSpecificationID *uint64                      `json:"active_specification_id,omitempty"`
	ActiveEvents          []*schema.ContractStateEvent `json:"active_events"`
	ActiveEventIDs        []uint64                     `json:"active_event_ids"`
	AsOfDate              time.Time                    `json:"as_of_date"`
}

// newState aggregates active events into a State
func newState(contractID uint64, events []*schema.ContractStateEvent, asOf time.Time) *State {
	p := Aggregate(events)
	if events == nil {
		events = []*schema.ContractStateEvent{}
	}

	return &State{
		ContractID:            contractID,
		TotalAmount:           p.TotalAmount,
		ActiveSpecificationID: p.ActiveSpecificationID,
		ActiveEvents:          events,
		ActiveEventIDs:        p.ActiveEventIDs,
		AsOfDate:              asOf,
	}
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
