package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents the kind of change recorded in the contract ledger
type EventType string

const (
	EventTypeCreated                      EventType = "CREATED"
	EventTypeAmended                      EventType = "AMENDED"
	EventTypeSuperseded                   EventType = "SUPERSEDED"
	EventTypeSupplementaryAgreementCreate EventType = "SUPPLEMENTARY_AGREEMENT_CREATED"
	EventTypePaymentCreated               EventType = "PAYMENT_CREATED"
)

// IsValidEventType checks if an event type is valid
func IsValidEventType(t EventType) bool {
	return t == EventTypeCreated ||
		t == EventTypeAmended ||
		t == EventTypeSuperseded ||
		t == EventTypeSupplementaryAgreementCreate ||
		t == EventTypePaymentCreated
}

// AffectsTotal reports whether events of this type contribute to the contract total.
// Payments never change the contract value. A SUPERSEDED event records the negated
// delta of its target for audit, but the target's contribution is already removed
// because it is no longer active.
func (t EventType) AffectsTotal() bool {
	return t != EventTypePaymentCreated && t != EventTypeSuperseded
}

// Supersedable reports whether an event of this type may be the target of a supersession
func (t EventType) Supersedable() bool {
	return t != EventTypePaymentCreated && t != EventTypeSuperseded
}

// TriggerKind identifies the business object that caused a ledger event
type TriggerKind string

const (
	TriggerKindContract               TriggerKind = "contract"
	TriggerKindSupplementaryAgreement TriggerKind = "supplementary_agreement"
	TriggerKindPerformanceAct         TriggerKind = "performance_act"
	TriggerKindPayment                TriggerKind = "payment"
)

// TriggeredBy is a reference to the document that caused an event.
// The set of kinds is closed; use the constructors below.
type TriggeredBy struct {
	Kind TriggerKind `json:"kind"`
	ID   uint64      `json:"id"`
}

func ByContract(id uint64) TriggeredBy {
	return TriggeredBy{Kind: TriggerKindContract, ID: id}
}

func BySupplementaryAgreement(id uint64) TriggeredBy {
	return TriggeredBy{Kind: TriggerKindSupplementaryAgreement, ID: id}
}

func ByPerformanceAct(id uint64) TriggeredBy {
	return TriggeredBy{Kind: TriggerKindPerformanceAct, ID: id}
}

func ByPayment(id uint64) TriggeredBy {
	return TriggeredBy{Kind: TriggerKindPayment, ID: id}
}

// Validate checks that the reference names a known kind and a non-zero id
func (t TriggeredBy) Validate() error {
	switch t.Kind {
	case TriggerKindContract, TriggerKindSupplementaryAgreement, TriggerKindPerformanceAct, TriggerKindPayment:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTrigger, t.Kind)
	}
	if t.ID == 0 {
		return fmt.Errorf("%w: %s id is required", ErrInvalidTrigger, t.Kind)
	}
	return nil
}

// Is reports whether the reference points to the given kind and one of the ids
func (t TriggeredBy) Is(kind TriggerKind, ids ...uint64) bool {
	if t.Kind != kind {
		return false
	}
	for _, id := range ids {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (t TriggeredBy) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Contract is the subset of the contract aggregate the ledger depends on
type Contract struct {
	ID uint64
	// TotalAmount is the denormalized total kept on the contract record
	TotalAmount decimal.Decimal
	// Date is the contract signing date, used as the effective date of the CREATED event
	Date time.Time
	// EventSourcing is false for legacy contracts whose total is edited directly
	EventSourcing bool
}

// UsesEventSourcing reports whether the ledger is authoritative for this contract
func (c *Contract) UsesEventSourcing() bool {
	return c != nil && c.EventSourcing
}

// SupplementaryAgreement is an amendment document attached to a contract
type SupplementaryAgreement struct {
	ID            uint64
	Number        string
	AgreementDate time.Time
	ChangeAmount  decimal.Decimal
	// SupersedeAgreementIDs lists earlier agreements this one invalidates
	SupersedeAgreementIDs []uint64
}

// PerformanceAct is a completion certificate that may adjust the contract amount
type PerformanceAct struct {
	ID     uint64
	Number string
	Amount decimal.Decimal
	Date   time.Time
}

// Payment is a payment posted against a contract
type Payment struct {
	ID     uint64
	Amount decimal.Decimal
	Date   time.Time
}
