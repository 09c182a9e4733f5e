package ledger

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/contract-ledger/internal/adapter"
	"github.com/feral-file/contract-ledger/internal/cache"
	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/logger"
	"github.com/feral-file/contract-ledger/internal/messaging"
	"github.com/feral-file/contract-ledger/internal/store"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// AmendmentInput describes an amendment of a contract
type AmendmentInput struct {
	SpecificationID *uint64
	AmountDelta     decimal.Decimal
	// TriggeredBy defaults to the contract itself
	TriggeredBy *domain.TriggeredBy
	// EffectiveFrom defaults to now
	EffectiveFrom *time.Time
	Metadata      map[string]any
}

// SupersedeInput describes the supersession of one event
type SupersedeInput struct {
	// TriggeredBy defaults to the contract itself
	TriggeredBy *domain.TriggeredBy
	// EffectiveFrom defaults to now
	EffectiveFrom *time.Time
	Metadata      map[string]any
}

// PerformanceActAmendment builds the amendment recorded for a performance act
func PerformanceActAmendment(act *domain.PerformanceAct, specificationID *uint64) AmendmentInput {
	trigger := domain.ByPerformanceAct(act.ID)
	effectiveFrom := act.Date
	return AmendmentInput{
		SpecificationID: specificationID,
		AmountDelta:     act.Amount,
		TriggeredBy:     &trigger,
		EffectiveFrom:   &effectiveFrom,
		Metadata: map[string]any{
			domain.MetaDocumentNumber: act.Number,
		},
	}
}

// Service is the only originator of ledger events.
// Every logical change runs in one transaction holding the contract lock,
// recomputes the projection before commit and publishes the new state after.
type Service struct {
	store        store.Store
	query        *EventQuery
	calculator   *Calculator
	clock        adapter.Clock
	driftEpsilon decimal.Decimal
}

// New creates a new ledger service. publisher may be nil.
func New(cfg Config, st store.Store, c cache.Cache, publisher messaging.Publisher, clock adapter.Clock) *Service {
	cfg = cfg.withDefaults()
	calculator := NewCalculator(st, c, publisher, clock, cfg)
	return &Service{
		store:        st,
		query:        calculator.query,
		calculator:   calculator,
		clock:        clock,
		driftEpsilon: cfg.DriftEpsilon,
	}
}

// Query returns the read side of the ledger
func (s *Service) Query() *EventQuery {
	return s.query
}

// Calculator returns the projection maintainer of the ledger
func (s *Service) Calculator() *Calculator {
	return s.calculator
}

// CreateContractCreatedEvent records the initial total of a contract. A contract has exactly one CREATED event.
func (s *Service) CreateContractCreatedEvent(ctx context.Context, contract *domain.Contract, specificationID *uint64) (*schema.ContractStateEvent, error) {
	events, err := s.apply(ctx, contract, func(w *changeWriter) error {
		existing, err := w.tx.GetLatestEventByType(ctx, contract.ID, domain.EventTypeCreated)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: contract %d", domain.ErrContractAlreadyCreated, contract.ID)
		}

		_, err = w.append(store.CreateEventInput{
			EventType:       domain.EventTypeCreated,
			TriggeredBy:     domain.ByContract(contract.ID),
			SpecificationID: specificationID,
			AmountDelta:     contract.TotalAmount,
			EffectiveFrom:   contract.Date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return events[0], nil
}

// CreateAmendedEvent records a signed change of the contract total
func (s *Service) CreateAmendedEvent(ctx context.Context, contract *domain.Contract, input AmendmentInput) (*schema.ContractStateEvent, error) {
	events, err := s.apply(ctx, contract, func(w *changeWriter) error {
		_, err := w.append(store.CreateEventInput{
			EventType:       domain.EventTypeAmended,
			TriggeredBy:     w.triggerOrContract(input.TriggeredBy),
			SpecificationID: input.SpecificationID,
			AmountDelta:     input.AmountDelta,
			EffectiveFrom:   w.effectiveOrNow(input.EffectiveFrom),
			Metadata:        input.Metadata,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return events[0], nil
}

// CreateSupersededEvent invalidates an active event by appending its negation.
// It fails with domain.ErrAlreadySuperseded when the target is no longer active.
func (s *Service) CreateSupersededEvent(ctx context.Context, contract *domain.Contract, targetEventID uint64, input SupersedeInput) (*schema.ContractStateEvent, error) {
	events, err := s.apply(ctx, contract, func(w *changeWriter) error {
		target, err := w.loadTarget(targetEventID)
		if err != nil {
			return err
		}

		_, err = w.supersede(target, w.triggerOrContract(input.TriggeredBy), w.effectiveOrNow(input.EffectiveFrom), input.Metadata)
		return err
	})
	if err != nil {
		return nil, err
	}

	return events[0], nil
}

// CreateAmendmentWithSupersede replaces a previous agreement posting with a new one.
// Without previousEventID the last active AMENDED or SUPPLEMENTARY_AGREEMENT_CREATED event is superseded.
// A new AMENDED event follows when the agreement carries an amount or a specification.
func (s *Service) CreateAmendmentWithSupersede(ctx context.Context, contract *domain.Contract, agreement *domain.SupplementaryAgreement, previousEventID *uint64, newSpecificationID *uint64) ([]*schema.ContractStateEvent, error) {
	return s.apply(ctx, contract, func(w *changeWriter) error {
		var target *schema.ContractStateEvent
		var err error
		if previousEventID != nil {
			target, err = w.loadTarget(*previousEventID)
		} else {
			target, err = w.lastReplaceableEvent()
		}
		if err != nil {
			return err
		}

		// The replacement never takes effect before the event it replaces
		trigger := domain.BySupplementaryAgreement(agreement.ID)
		effectiveFrom := laterOf(agreement.AgreementDate, target.EffectiveFrom)
		if _, err := w.supersede(target, trigger, effectiveFrom, map[string]any{
			domain.MetaReason:          "replaced by supplementary agreement",
			domain.MetaAgreementNumber: agreement.Number,
		}); err != nil {
			return err
		}

		if newSpecificationID == nil && agreement.ChangeAmount.IsZero() {
			return nil
		}

		_, err = w.append(store.CreateEventInput{
			EventType:       domain.EventTypeAmended,
			TriggeredBy:     trigger,
			SpecificationID: newSpecificationID,
			AmountDelta:     agreement.ChangeAmount,
			EffectiveFrom:   effectiveFrom,
			Metadata: map[string]any{
				domain.MetaAgreementNumber: agreement.Number,
			},
		})
		return err
	})
}

// SupersedeAgreementsWithoutAmountChange invalidates the active amount-bearing events of the given
// agreements and appends one compensating AMENDED event so the contract total is unchanged.
// It fails with domain.ErrNoActiveEventsFound when no active event matches.
func (s *Service) SupersedeAgreementsWithoutAmountChange(ctx context.Context, contract *domain.Contract, agreement *domain.SupplementaryAgreement, agreementIDs []uint64) ([]*schema.ContractStateEvent, error) {
	return s.apply(ctx, contract, func(w *changeWriter) error {
		active, err := w.tx.FindActiveEvents(ctx, contract.ID)
		if err != nil {
			return err
		}

		var matched []*schema.ContractStateEvent
		for _, event := range active {
			if !event.EventType.AffectsTotal() || !event.EventType.Supersedable() {
				continue
			}
			if event.TriggeredBy().Is(domain.TriggerKindSupplementaryAgreement, agreementIDs...) {
				matched = append(matched, event)
			}
		}
		if len(matched) == 0 {
			return fmt.Errorf("%w: contract %d, agreements %v", domain.ErrNoActiveEventsFound, contract.ID, agreementIDs)
		}

		// Supersessions and compensation share one date no earlier than any target,
		// so the total is unchanged at every as-of date
		effectiveFrom := agreement.AgreementDate
		for _, target := range matched {
			effectiveFrom = laterOf(effectiveFrom, target.EffectiveFrom)
		}

		trigger := domain.BySupplementaryAgreement(agreement.ID)
		compensation := decimal.Zero
		supersededIDs := make([]uint64, 0, len(matched))
		for _, target := range matched {
			if _, err := w.supersede(target, trigger, effectiveFrom, map[string]any{
				domain.MetaReason:          "superseded without amount change",
				domain.MetaAgreementNumber: agreement.Number,
			}); err != nil {
				return err
			}
			compensation = compensation.Add(target.AmountDelta)
			supersededIDs = append(supersededIDs, target.ID)
		}

		_, err = w.append(store.CreateEventInput{
			EventType:     domain.EventTypeAmended,
			TriggeredBy:   trigger,
			AmountDelta:   compensation,
			EffectiveFrom: effectiveFrom,
			Metadata: map[string]any{
				domain.MetaIsCompensating:         true,
				domain.MetaAgreementNumber:        agreement.Number,
				domain.MetaSupersededAgreementIDs: agreementIDs,
				domain.MetaSupersededEventIDs:     supersededIDs,
				domain.MetaSupersededEventCount:   len(matched),
			},
		})
		return err
	})
}

// CreateSupplementaryAgreementEvent posts a supplementary agreement's amount change
func (s *Service) CreateSupplementaryAgreementEvent(ctx context.Context, contract *domain.Contract, agreement *domain.SupplementaryAgreement) (*schema.ContractStateEvent, error) {
	events, err := s.apply(ctx, contract, func(w *changeWriter) error {
		_, err := w.append(store.CreateEventInput{
			EventType:     domain.EventTypeSupplementaryAgreementCreate,
			TriggeredBy:   domain.BySupplementaryAgreement(agreement.ID),
			AmountDelta:   agreement.ChangeAmount,
			EffectiveFrom: agreement.AgreementDate,
			Metadata: map[string]any{
				domain.MetaAgreementNumber: agreement.Number,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return events[0], nil
}

// CreatePaymentEvent posts a payment. Payments never change the contract total.
func (s *Service) CreatePaymentEvent(ctx context.Context, contract *domain.Contract, payment *domain.Payment) (*schema.ContractStateEvent, error) {
	events, err := s.apply(ctx, contract, func(w *changeWriter) error {
		_, err := w.append(store.CreateEventInput{
			EventType:     domain.EventTypePaymentCreated,
			TriggeredBy:   domain.ByPayment(payment.ID),
			AmountDelta:   payment.Amount,
			EffectiveFrom: payment.Date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return events[0], nil
}

// AnnotateEvent merges bookkeeping keys into an event's metadata. Amounts and links are never touched.
func (s *Service) AnnotateEvent(ctx context.Context, contract *domain.Contract, eventID uint64, metadata map[string]any) (*schema.ContractStateEvent, error) {
	if err := requireEventSourcing(contract); err != nil {
		return nil, err
	}

	event, err := s.query.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
	}
	if event.ContractID != contract.ID {
		return nil, fmt.Errorf("%w: event %d, contract %d", domain.ErrContractMismatch, eventID, contract.ID)
	}

	return s.query.UpdateEventMetadata(ctx, eventID, metadata)
}

// GetCurrentState computes the state of a contract from its active events.
// A contract total that drifts from the ledger is logged, never corrected here.
// Legacy contracts report the total kept on the contract record.
func (s *Service) GetCurrentState(ctx context.Context, contract *domain.Contract) (*State, error) {
	if contract == nil {
		return nil, domain.ErrContractRequired
	}

	now := s.clock.Now().UTC()
	if !contract.UsesEventSourcing() {
		return &State{
			ContractID:     contract.ID,
			TotalAmount:    contract.TotalAmount,
			ActiveEvents:   []*schema.ContractStateEvent{},
			ActiveEventIDs: []uint64{},
			AsOfDate:       now,
		}, nil
	}

	events, err := s.query.FindActiveEvents(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	state := newState(contract.ID, events, now)
	drift := contract.TotalAmount.Sub(state.TotalAmount).Abs()
	if drift.GreaterThan(s.driftEpsilon) {
		logger.WarnCtx(ctx, "Contract total drifts from ledger",
			zap.Uint64("contract_id", contract.ID),
			zap.String("contract_total", contract.TotalAmount.StringFixed(2)),
			zap.String("ledger_total", state.TotalAmount.StringFixed(2)),
			zap.String("drift", drift.StringFixed(2)),
		)
	}

	return state, nil
}

// GetStateAtDate computes the state of a contract at a date
func (s *Service) GetStateAtDate(ctx context.Context, contract *domain.Contract, date time.Time) (*State, error) {
	if err := requireEventSourcing(contract); err != nil {
		return nil, err
	}

	return s.calculator.GetStateAtDate(ctx, contract.ID, date)
}

// GetTimeline returns the full history of a contract, active and superseded
func (s *Service) GetTimeline(ctx context.Context, contract *domain.Contract, asOf *time.Time) ([]*schema.ContractStateEvent, error) {
	if err := requireEventSourcing(contract); err != nil {
		return nil, err
	}

	return s.query.GetTimeline(ctx, contract.ID, asOf)
}

// requireEventSourcing rejects a missing contract and legacy contracts
func requireEventSourcing(contract *domain.Contract) error {
	if contract == nil {
		return domain.ErrContractRequired
	}
	if !contract.UsesEventSourcing() {
		return domain.ErrLegacyContract
	}
	return nil
}

// apply runs one logical change of a contract in a locked transaction
func (s *Service) apply(ctx context.Context, contract *domain.Contract, change func(w *changeWriter) error) ([]*schema.ContractStateEvent, error) {
	if err := requireEventSourcing(contract); err != nil {
		return nil, err
	}

	w := &changeWriter{
		ctx:           ctx,
		query:         s.query,
		contractID:    contract.ID,
		correlationID: uuid.New(),
		userID:        UserIDFromContext(ctx),
		now:           s.clock.Now().UTC(),
	}

	var state *schema.ContractCurrentState
	err := s.store.WithContractLock(ctx, contract.ID, store.LockForAppend, func(tx store.Store, version int64) error {
		w.tx = tx
		w.events = nil
		if err := change(w); err != nil {
			return err
		}

		var err error
		state, err = s.calculator.recalculateWithin(ctx, tx, contract.ID, version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.query.invalidateAfterCommit(ctx, contract.ID)
	s.notify(ctx, state, w)

	return w.events, nil
}

// notify publishes the committed state with the events of the change
func (s *Service) notify(ctx context.Context, state *schema.ContractCurrentState, w *changeWriter) {
	eventIDs := make([]uint64, 0, len(w.events))
	for _, event := range w.events {
		eventIDs = append(eventIDs, event.ID)
	}

	s.calculator.publish(ctx, state, w.correlationID, eventIDs)
}

// changeWriter appends the events of one logical change
type changeWriter struct {
	ctx           context.Context
	tx            store.Store
	query         *EventQuery
	contractID    uint64
	correlationID uuid.UUID
	userID        *uint64
	now           time.Time
	events        []*schema.ContractStateEvent
}

func (w *changeWriter) append(input store.CreateEventInput) (*schema.ContractStateEvent, error) {
	input.ContractID = w.contractID
	input.CorrelationID = w.correlationID
	input.CreatedByUserID = w.userID
	input.CreatedAt = w.now
	if input.Metadata != nil {
		input.Metadata = maps.Clone(input.Metadata)
	}

	event, err := w.query.CreateEvent(w.ctx, w.tx, input)
	if err != nil {
		return nil, err
	}
	w.events = append(w.events, event)

	return event, nil
}

// loadTarget loads an event of the contract that is about to be superseded
func (w *changeWriter) loadTarget(eventID uint64) (*schema.ContractStateEvent, error) {
	target, err := w.tx.GetEventByID(w.ctx, eventID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
	}

	return target, nil
}

// lastReplaceableEvent finds the latest active agreement-like event of the contract
func (w *changeWriter) lastReplaceableEvent() (*schema.ContractStateEvent, error) {
	active, err := w.tx.FindActiveEvents(w.ctx, w.contractID)
	if err != nil {
		return nil, err
	}

	for i := len(active) - 1; i >= 0; i-- {
		switch active[i].EventType {
		case domain.EventTypeAmended, domain.EventTypeSupplementaryAgreementCreate:
			return active[i], nil
		}
	}

	return nil, fmt.Errorf("%w: contract %d has no active amendment", domain.ErrNoActiveEventsFound, w.contractID)
}

// supersede appends the SUPERSEDED event of an active target
func (w *changeWriter) supersede(target *schema.ContractStateEvent, trigger domain.TriggeredBy, effectiveFrom time.Time, metadata map[string]any) (*schema.ContractStateEvent, error) {
	if target.ContractID != w.contractID {
		return nil, fmt.Errorf("%w: event %d, contract %d", domain.ErrContractMismatch, target.ID, w.contractID)
	}
	if !target.EventType.Supersedable() {
		return nil, fmt.Errorf("%w: event %d is %s", domain.ErrEventNotSupersedable, target.ID, target.EventType)
	}

	superseding, err := w.tx.FindSupersedingEvents(w.ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if len(superseding) > 0 {
		return nil, fmt.Errorf("%w: event %d by event %d", domain.ErrAlreadySuperseded, target.ID, superseding[0].ID)
	}

	targetID := target.ID
	return w.append(store.CreateEventInput{
		EventType:         domain.EventTypeSuperseded,
		TriggeredBy:       trigger,
		AmountDelta:       target.AmountDelta.Neg(),
		EffectiveFrom:     effectiveFrom,
		SupersedesEventID: &targetID,
		Metadata:          metadata,
	})
}

func (w *changeWriter) triggerOrContract(trigger *domain.TriggeredBy) domain.TriggeredBy {
	if trigger == nil {
		return domain.ByContract(w.contractID)
	}
	return *trigger
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func (w *changeWriter) effectiveOrNow(effectiveFrom *time.Time) time.Time {
	if effectiveFrom == nil {
		return w.now
	}
	return *effectiveFrom
}
