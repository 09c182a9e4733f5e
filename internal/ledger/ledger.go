package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/contract-ledger/internal/domain"
)

const (
	// DefaultCacheTTL is how long cached reads of a contract are kept
	DefaultCacheTTL = 5 * time.Minute
	// DefaultStaleAfter is the age after which the materialized state is recomputed on read
	DefaultStaleAfter = 10 * time.Minute
)

// Cache namespaces of a contract
const (
	nsEvents       = "events"
	nsActiveEvents = "active_events"
	nsState        = "state"
)

// Config holds the tunables of the ledger
type Config struct {
	CacheTTL     time.Duration
	StaleAfter   time.Duration
	DriftEpsilon decimal.Decimal
}

// DefaultConfig returns the default ledger configuration
func DefaultConfig() Config {
	return Config{
		CacheTTL:     DefaultCacheTTL,
		StaleAfter:   DefaultStaleAfter,
		DriftEpsilon: domain.DefaultDriftEpsilon,
	}
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if !c.DriftEpsilon.IsPositive() {
		c.DriftEpsilon = domain.DefaultDriftEpsilon
	}
	return c
}

type userIDKey struct{}

// WithUserID returns a context whose ledger writes are attributed to the user
func WithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user set by WithUserID, nil if none
func UserIDFromContext(ctx context.Context) *uint64 {
	userID, ok := ctx.Value(userIDKey{}).(uint64)
	if !ok || userID == 0 {
		return nil
	}
	return &userID
}
