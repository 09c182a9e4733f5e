package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// day returns baseTime shifted by n days
func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

// buildTestEvent creates an event input with sensible defaults
func buildTestEvent(contractID uint64, eventType domain.EventType, amount string, effectiveDay int) CreateEventInput {
	return CreateEventInput{
		ContractID:    contractID,
		EventType:     eventType,
		TriggeredBy:   domain.ByContract(contractID),
		AmountDelta:   decimal.RequireFromString(amount),
		EffectiveFrom: day(effectiveDay),
		CorrelationID: uuid.New(),
		CreatedAt:     day(effectiveDay),
	}
}

// buildSupersedingEvent creates the SUPERSEDED input of a target event
func buildSupersedingEvent(target *schema.ContractStateEvent, effectiveDay int) CreateEventInput {
	input := buildTestEvent(target.ContractID, domain.EventTypeSuperseded, target.AmountDelta.Neg().String(), effectiveDay)
	input.SupersedesEventID = &target.ID
	return input
}

func mustCreate(t *testing.T, st Store, input CreateEventInput) *schema.ContractStateEvent {
	t.Helper()
	event, err := st.CreateEvent(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, event)
	return event
}

func eventIDs(events []*schema.ContractStateEvent) []uint64 {
	ids := make([]uint64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// =============================================================================
// Tests
// =============================================================================

func testCreateEvent(t *testing.T, st Store) {
	ctx := context.Background()

	t.Run("creates event with all fields", func(t *testing.T) {
		specID := uint64(77)
		userID := uint64(5)
		input := buildTestEvent(1001, domain.EventTypeCreated, "1000000.50", 0)
		input.SpecificationID = &specID
		input.CreatedByUserID = &userID
		input.Metadata = map[string]any{domain.MetaReason: "signed"}

		event := mustCreate(t, st, input)
		assert.NotZero(t, event.ID)

		loaded, err := st.GetEventByID(ctx, event.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, uint64(1001), loaded.ContractID)
		assert.Equal(t, domain.EventTypeCreated, loaded.EventType)
		assert.Equal(t, domain.ByContract(1001), loaded.TriggeredBy())
		require.NotNil(t, loaded.SpecificationID)
		assert.Equal(t, specID, *loaded.SpecificationID)
		assertDecimal(t, "1000000.50", loaded.AmountDelta)
		assert.True(t, day(0).Equal(loaded.EffectiveFrom))
		assert.Equal(t, input.CorrelationID, loaded.CorrelationID)
		require.NotNil(t, loaded.CreatedByUserID)
		assert.Equal(t, userID, *loaded.CreatedByUserID)
		assert.Equal(t, "signed", loaded.Metadata[domain.MetaReason])
		assert.False(t, loaded.Supersedes())
	})

	t.Run("rounds amounts to the column scale", func(t *testing.T) {
		event := mustCreate(t, st, buildTestEvent(1009, domain.EventTypeAmended, "10.005", 0))
		assertDecimal(t, "10.01", event.AmountDelta)

		negative := mustCreate(t, st, buildTestEvent(1009, domain.EventTypeAmended, "-0.125", 1))
		assertDecimal(t, "-0.13", negative.AmountDelta)

		loaded, err := st.GetEventByID(ctx, event.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.True(t, event.AmountDelta.Equal(loaded.AmountDelta))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		input := buildTestEvent(1002, domain.EventType("DELETED"), "1", 0)
		_, err := st.CreateEvent(ctx, input)
		assert.Error(t, err)

		input = buildTestEvent(1002, domain.EventTypeAmended, "1", 0)
		input.TriggeredBy = domain.TriggeredBy{Kind: "invoice", ID: 1}
		_, err = st.CreateEvent(ctx, input)
		assert.True(t, errors.Is(err, domain.ErrInvalidTrigger))

		input = buildTestEvent(0, domain.EventTypeAmended, "1", 0)
		input.TriggeredBy = domain.ByContract(1002)
		_, err = st.CreateEvent(ctx, input)
		assert.Error(t, err)
	})

	t.Run("event can be superseded only once", func(t *testing.T) {
		target := mustCreate(t, st, buildTestEvent(1003, domain.EventTypeAmended, "500", 1))
		superseding := mustCreate(t, st, buildSupersedingEvent(target, 2))
		require.NotNil(t, superseding.SupersedesEventID)
		assert.Equal(t, target.ID, *superseding.SupersedesEventID)
		assertDecimal(t, "-500", superseding.AmountDelta)

		_, err := st.CreateEvent(ctx, buildSupersedingEvent(target, 3))
		assert.Error(t, err)
	})
}

func testGetEventByID(t *testing.T, st Store) {
	event, err := st.GetEventByID(context.Background(), 987654321)
	require.NoError(t, err)
	assert.Nil(t, event)
}

func testFindByContract(t *testing.T, st Store) {
	ctx := context.Background()

	// Appended out of effective order
	second := mustCreate(t, st, buildTestEvent(2001, domain.EventTypeAmended, "10", 5))
	first := mustCreate(t, st, buildTestEvent(2001, domain.EventTypeCreated, "100", 0))
	third := buildTestEvent(2001, domain.EventTypeAmended, "20", 1)
	third.CreatedAt = day(10)
	thirdEvent := mustCreate(t, st, third)
	mustCreate(t, st, buildTestEvent(2002, domain.EventTypeCreated, "1", 0))

	events, err := st.FindByContract(ctx, 2001)
	require.NoError(t, err)
	// created_at ascending, id breaks the tie
	assert.Equal(t, []uint64{first.ID, second.ID, thirdEvent.ID}, eventIDs(events))

	events, err = st.FindByContract(ctx, 2999)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testFindActiveEvents(t *testing.T, st Store) {
	ctx := context.Background()

	created := mustCreate(t, st, buildTestEvent(3001, domain.EventTypeCreated, "1000", 0))
	amendment := mustCreate(t, st, buildTestEvent(3001, domain.EventTypeAmended, "50", 2))
	backdated := mustCreate(t, st, buildTestEvent(3001, domain.EventTypeAmended, "7", 1))
	superseding := mustCreate(t, st, buildSupersedingEvent(amendment, 3))

	events, err := st.FindActiveEvents(ctx, 3001)
	require.NoError(t, err)
	// effective_from ascending
	assert.Equal(t, []uint64{created.ID, backdated.ID, superseding.ID}, eventIDs(events))

	superseders, err := st.FindSupersedingEvents(ctx, amendment.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{superseding.ID}, eventIDs(superseders))

	superseders, err = st.FindSupersedingEvents(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, superseders)
}

func testFindActiveEventsAsOfDate(t *testing.T, st Store) {
	ctx := context.Background()

	created := mustCreate(t, st, buildTestEvent(4001, domain.EventTypeCreated, "1000", 0))
	amendment := mustCreate(t, st, buildTestEvent(4001, domain.EventTypeAmended, "50", 5))
	superseding := mustCreate(t, st, buildSupersedingEvent(amendment, 10))
	future := mustCreate(t, st, buildTestEvent(4001, domain.EventTypeAmended, "3", 20))

	tests := []struct {
		name     string
		asOf     time.Time
		expected []uint64
	}{
		{"before creation", day(-1), []uint64{}},
		{"at creation", day(0), []uint64{created.ID}},
		{"after amendment", day(7), []uint64{created.ID, amendment.ID}},
		{"after supersession", day(10), []uint64{created.ID, superseding.ID}},
		{"after future amendment", day(30), []uint64{created.ID, superseding.ID, future.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := st.FindActiveEventsAsOfDate(ctx, 4001, tt.asOf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, eventIDs(events))
		})
	}
}

func testFindByType(t *testing.T, st Store) {
	ctx := context.Background()

	mustCreate(t, st, buildTestEvent(5001, domain.EventTypeCreated, "1000", 0))
	firstPayment := mustCreate(t, st, buildTestEvent(5001, domain.EventTypePaymentCreated, "100", 1))
	lastPayment := mustCreate(t, st, buildTestEvent(5001, domain.EventTypePaymentCreated, "200", 2))

	events, err := st.FindByType(ctx, 5001, domain.EventTypePaymentCreated)
	require.NoError(t, err)
	assert.Equal(t, []uint64{firstPayment.ID, lastPayment.ID}, eventIDs(events))

	latest, err := st.GetLatestEventByType(ctx, 5001, domain.EventTypePaymentCreated)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, lastPayment.ID, latest.ID)

	latest, err = st.GetLatestEventByType(ctx, 5001, domain.EventTypeSuperseded)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func testGetTimeline(t *testing.T, st Store) {
	ctx := context.Background()

	created := mustCreate(t, st, buildTestEvent(6001, domain.EventTypeCreated, "1000", 0))
	amendment := mustCreate(t, st, buildTestEvent(6001, domain.EventTypeAmended, "50", 5))
	superseding := mustCreate(t, st, buildSupersedingEvent(amendment, 10))

	// Recorded late but effective early
	backdatedInput := buildTestEvent(6001, domain.EventTypeAmended, "9", 2)
	backdatedInput.CreatedAt = day(12)
	backdated := mustCreate(t, st, backdatedInput)

	events, err := st.GetTimeline(ctx, 6001, TimelineFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{created.ID, amendment.ID, superseding.ID, backdated.ID}, eventIDs(events))

	cutoff := day(11)
	events, err = st.GetTimeline(ctx, 6001, TimelineFilter{CreatedBefore: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, []uint64{created.ID, amendment.ID, superseding.ID}, eventIDs(events))

	effective := day(6)
	events, err = st.GetTimeline(ctx, 6001, TimelineFilter{EffectiveBefore: &effective})
	require.NoError(t, err)
	assert.Equal(t, []uint64{created.ID, amendment.ID, backdated.ID}, eventIDs(events))
}

func testUpdateEventMetadata(t *testing.T, st Store) {
	ctx := context.Background()

	input := buildTestEvent(7001, domain.EventTypeAmended, "42", 0)
	input.Metadata = map[string]any{domain.MetaReason: "typo", domain.MetaDocumentNumber: "A-1"}
	event := mustCreate(t, st, input)

	updated, err := st.UpdateEventMetadata(ctx, event.ID, map[string]any{domain.MetaReason: "price correction"})
	require.NoError(t, err)
	assert.Equal(t, "price correction", updated.Metadata[domain.MetaReason])
	assert.Equal(t, "A-1", updated.Metadata[domain.MetaDocumentNumber])

	loaded, err := st.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "price correction", loaded.Metadata[domain.MetaReason])
	assert.Equal(t, "A-1", loaded.Metadata[domain.MetaDocumentNumber])
	assertDecimal(t, "42", loaded.AmountDelta)
	assert.Equal(t, domain.EventTypeAmended, loaded.EventType)
	assert.Nil(t, loaded.SupersedesEventID)

	_, err = st.UpdateEventMetadata(ctx, 987654321, map[string]any{"a": 1})
	assert.True(t, errors.Is(err, domain.ErrEventNotFound))
}

func testListContractIDs(t *testing.T, st Store) {
	ctx := context.Background()

	mustCreate(t, st, buildTestEvent(8003, domain.EventTypeCreated, "1", 0))
	mustCreate(t, st, buildTestEvent(8001, domain.EventTypeCreated, "1", 0))
	mustCreate(t, st, buildTestEvent(8001, domain.EventTypeAmended, "1", 1))

	contractIDs, err := st.ListContractIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, contractIDs, uint64(8001))
	assert.Contains(t, contractIDs, uint64(8003))

	seen := map[uint64]int{}
	for _, id := range contractIDs {
		seen[id]++
	}
	assert.Equal(t, 1, seen[8001])
}

func testCurrentState(t *testing.T, st Store) {
	ctx := context.Background()

	state, err := st.GetCurrentState(ctx, 9001)
	require.NoError(t, err)
	assert.Nil(t, state)

	specID := uint64(3)
	require.NoError(t, st.UpsertCurrentState(ctx, &schema.ContractCurrentState{
		ContractID:            9001,
		ActiveSpecificationID: &specID,
		CurrentTotalAmount:    decimal.RequireFromString("1050000"),
		ActiveEventIDs:        []uint64{1, 2},
		Version:               2,
		CalculatedAt:          day(1),
	}))

	state, err = st.GetCurrentState(ctx, 9001)
	require.NoError(t, err)
	require.NotNil(t, state)
	assertDecimal(t, "1050000", state.CurrentTotalAmount)
	assert.Equal(t, []uint64{1, 2}, []uint64(state.ActiveEventIDs))
	assert.Equal(t, int64(2), state.Version)
	require.NotNil(t, state.ActiveSpecificationID)
	assert.Equal(t, specID, *state.ActiveSpecificationID)

	// Overwrite
	require.NoError(t, st.UpsertCurrentState(ctx, &schema.ContractCurrentState{
		ContractID:         9001,
		CurrentTotalAmount: decimal.RequireFromString("1000000"),
		Version:            3,
		CalculatedAt:       day(2),
	}))

	state, err = st.GetCurrentState(ctx, 9001)
	require.NoError(t, err)
	assertDecimal(t, "1000000", state.CurrentTotalAmount)
	assert.Empty(t, state.ActiveEventIDs)
	assert.Nil(t, state.ActiveSpecificationID)
	assert.Equal(t, int64(3), state.Version)
	assert.True(t, day(2).Equal(state.CalculatedAt))
}

func testWithContractLock(t *testing.T, st Store) {
	ctx := context.Background()

	t.Run("append bumps version, recalculation does not", func(t *testing.T) {
		var versions []int64
		record := func(_ Store, version int64) error {
			versions = append(versions, version)
			return nil
		}

		require.NoError(t, st.WithContractLock(ctx, 10001, LockForAppend, record))
		require.NoError(t, st.WithContractLock(ctx, 10001, LockForAppend, record))
		require.NoError(t, st.WithContractLock(ctx, 10001, LockForRecalculate, record))
		require.NoError(t, st.WithContractLock(ctx, 10002, LockForRecalculate, record))

		assert.Equal(t, []int64{1, 2, 2, 0}, versions)
	})

	t.Run("error rolls back every write of the callback", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithContractLock(ctx, 10003, LockForAppend, func(tx Store, _ int64) error {
			mustCreate(t, tx, buildTestEvent(10003, domain.EventTypeCreated, "100", 0))
			mustCreate(t, tx, buildTestEvent(10003, domain.EventTypeAmended, "5", 1))
			return boom
		})
		assert.True(t, errors.Is(err, boom))

		events, err := st.FindByContract(ctx, 10003)
		require.NoError(t, err)
		assert.Empty(t, events)

		var version int64
		require.NoError(t, st.WithContractLock(ctx, 10003, LockForRecalculate, func(_ Store, v int64) error {
			version = v
			return nil
		}))
		assert.Equal(t, int64(0), version)
	})

	t.Run("callback sees its own writes", func(t *testing.T) {
		err := st.WithContractLock(ctx, 10004, LockForAppend, func(tx Store, _ int64) error {
			mustCreate(t, tx, buildTestEvent(10004, domain.EventTypeCreated, "100", 0))
			events, err := tx.FindActiveEvents(ctx, 10004)
			if err != nil {
				return err
			}
			assert.Len(t, events, 1)
			return nil
		})
		require.NoError(t, err)
	})
}

// RunStoreTests runs the store suite against one database
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CreateEvent", testCreateEvent},
		{"GetEventByID", testGetEventByID},
		{"FindByContract", testFindByContract},
		{"FindActiveEvents", testFindActiveEvents},
		{"FindActiveEventsAsOfDate", testFindActiveEventsAsOfDate},
		{"FindByType", testFindByType},
		{"GetTimeline", testGetTimeline},
		{"UpdateEventMetadata", testUpdateEventMetadata},
		{"ListContractIDs", testListContractIDs},
		{"CurrentState", testCurrentState},
		{"WithContractLock", testWithContractLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
