package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/contract-ledger/internal/logger"
)

// Cache is a per-contract cache of serialized read results.
// Every entry of a contract belongs to the contract's current generation;
// Invalidate moves the contract to a new generation so that no entry
// written before the call can be read after it.
//
//go:generate mockgen -source=cache.go -destination=../mocks/cache.go -package=mocks -mock_names=Cache=MockCache
type Cache interface {
	// Generation returns the current generation of the contract's entries
	Generation(ctx context.Context, contractID uint64) (int64, error)
	// Get returns the entry stored under namespace for the given generation
	Get(ctx context.Context, contractID uint64, generation int64, namespace string) ([]byte, bool, error)
	// Set stores an entry; writes for a generation that is no longer current are dropped
	Set(ctx context.Context, contractID uint64, generation int64, namespace string, data []byte, ttl time.Duration) error
	// Invalidate drops every entry of the contract
	Invalidate(ctx context.Context, contractID uint64) error
}

// GetOrCompute returns the cached value of namespace for the contract or computes and stores it.
// Cache failures are logged and never fail the read.
func GetOrCompute[T any](ctx context.Context, c Cache, contractID uint64, namespace string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	generation, err := c.Generation(ctx, contractID)
	if err != nil {
		logger.WarnCtx(ctx, "Cache generation lookup failed, computing without cache",
			zap.Uint64("contract_id", contractID),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return compute(ctx)
	}

	data, found, err := c.Get(ctx, contractID, generation, namespace)
	if err != nil {
		logger.WarnCtx(ctx, "Cache read failed",
			zap.Uint64("contract_id", contractID),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}
	if found {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		logger.WarnCtx(ctx, "Dropping undecodable cache entry",
			zap.Uint64("contract_id", contractID),
			zap.String("namespace", namespace),
		)
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.Set(ctx, contractID, generation, namespace, encoded, ttl); err != nil {
		logger.WarnCtx(ctx, "Cache write failed",
			zap.Uint64("contract_id", contractID),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}

	return value, nil
}
