package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/contract-ledger/internal/cache"
	"github.com/feral-file/contract-ledger/internal/domain"
	"github.com/feral-file/contract-ledger/internal/ledger"
	"github.com/feral-file/contract-ledger/internal/messaging"
	"github.com/feral-file/contract-ledger/internal/mocks"
	"github.com/feral-file/contract-ledger/internal/store"
	"github.com/feral-file/contract-ledger/internal/store/schema"
	"github.com/feral-file/contract-ledger/internal/store/storetest"
)

var (
	contractDate = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	startTime    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// testLedger wires a ledger over an in-memory database
type testLedger struct {
	ctrl    *gomock.Controller
	service *ledger.Service
	store   store.Store
	cache   cache.Cache
	now     *time.Time
}

type ledgerOption func(*ledgerOptions)

type ledgerOptions struct {
	publisher messaging.Publisher
	wrapStore func(store.Store) store.Store
}

func withPublisher(p messaging.Publisher) ledgerOption {
	return func(o *ledgerOptions) { o.publisher = p }
}

func withStoreWrapper(wrap func(store.Store) store.Store) ledgerOption {
	return func(o *ledgerOptions) { o.wrapStore = wrap }
}

func setupLedger(t *testing.T, opts ...ledgerOption) *testLedger {
	t.Helper()

	var o ledgerOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)

	now := startTime
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return now }).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(ts time.Time) time.Duration { return now.Sub(ts) }).AnyTimes()

	st := store.NewPGStore(storetest.NewSQLiteDB(t))
	if o.wrapStore != nil {
		st = o.wrapStore(st)
	}
	c := cache.NewMemoryCache(clock)

	return &testLedger{
		ctrl:    ctrl,
		service: ledger.New(ledger.DefaultConfig(), st, c, o.publisher, clock),
		store:   st,
		cache:   c,
		now:     &now,
	}
}

// advance moves the clock forward
func (tl *testLedger) advance(d time.Duration) {
	*tl.now = tl.now.Add(d)
}

func newContract(id uint64, total string) *domain.Contract {
	return &domain.Contract{
		ID:            id,
		TotalAmount:   decimal.RequireFromString(total),
		Date:          contractDate,
		EventSourcing: true,
	}
}

// createContract records the CREATED event of a new contract
func (tl *testLedger) createContract(t *testing.T, id uint64, total string, specID *uint64) *domain.Contract {
	t.Helper()
	contract := newContract(id, total)
	_, err := tl.service.CreateContractCreatedEvent(context.Background(), contract, specID)
	require.NoError(t, err)
	return contract
}

func (tl *testLedger) amend(t *testing.T, contract *domain.Contract, amount string) *schema.ContractStateEvent {
	t.Helper()
	event, err := tl.service.CreateAmendedEvent(context.Background(), contract, ledger.AmendmentInput{
		AmountDelta: decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return event
}

// totalOf returns the live ledger total of a contract
func (tl *testLedger) totalOf(t *testing.T, contract *domain.Contract) decimal.Decimal {
	t.Helper()
	state, err := tl.service.GetCurrentState(context.Background(), contract)
	require.NoError(t, err)
	return state.TotalAmount
}

func agreement(id uint64, amount string) *domain.SupplementaryAgreement {
	return &domain.SupplementaryAgreement{
		ID:            id,
		Number:        "SA-" + decimal.NewFromInt(int64(id)).String(),
		AgreementDate: contractDate.AddDate(0, 2, 0),
		ChangeAmount:  decimal.RequireFromString(amount),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func specID(id uint64) *uint64 {
	return &id
}
