package cache

import (
	"context"
	"sync"
	"time"

	"github.com/feral-file/contract-ledger/internal/adapter"
)

// defaultSweepEvery is the number of writes between two sweeps of expired buckets
const defaultSweepEvery = 1024

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memoryBucket struct {
	generation int64
	entries    map[string]memoryEntry
}

// memoryCache keeps entries in process memory.
// A contract only holds a bucket while it has live entries. Invalidate frees the bucket
// and advances epoch, the generation handed out for contracts without a bucket, so a
// write prepared before the invalidation can never recreate it.
type memoryCache struct {
	mu         sync.Mutex
	clock      adapter.Clock
	buckets    map[uint64]*memoryBucket
	epoch      int64
	writes     int
	sweepEvery int
}

// NewMemoryCache creates an in-process cache
func NewMemoryCache(clock adapter.Clock) Cache {
	return &memoryCache{
		clock:      clock,
		buckets:    make(map[uint64]*memoryBucket),
		sweepEvery: defaultSweepEvery,
	}
}

func (m *memoryCache) Generation(_ context.Context, contractID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.buckets[contractID]; ok {
		return b.generation, nil
	}
	return m.epoch, nil
}

func (m *memoryCache) Get(_ context.Context, contractID uint64, generation int64, namespace string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[contractID]
	if !ok || b.generation != generation {
		return nil, false, nil
	}

	entry, ok := b.entries[namespace]
	if !ok {
		return nil, false, nil
	}
	if !m.clock.Now().Before(entry.expiresAt) {
		delete(b.entries, namespace)
		if len(b.entries) == 0 {
			delete(m.buckets, contractID)
		}
		return nil, false, nil
	}

	return entry.data, true, nil
}

func (m *memoryCache) Set(_ context.Context, contractID uint64, generation int64, namespace string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.writes++
	if m.sweepEvery > 0 && m.writes%m.sweepEvery == 0 {
		m.sweepExpired(now)
	}

	b, ok := m.buckets[contractID]
	if !ok {
		if generation != m.epoch {
			return nil
		}
		b = &memoryBucket{generation: generation, entries: make(map[string]memoryEntry)}
		m.buckets[contractID] = b
	}
	if b.generation != generation {
		return nil
	}

	b.entries[namespace] = memoryEntry{
		data:      data,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, contractID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets, contractID)
	m.epoch++
	return nil
}

// sweepExpired drops expired entries and the buckets left empty
func (m *memoryCache) sweepExpired(now time.Time) {
	for contractID, b := range m.buckets {
		for namespace, entry := range b.entries {
			if !now.Before(entry.expiresAt) {
				delete(b.entries, namespace)
			}
		}
		if len(b.entries) == 0 {
			delete(m.buckets, contractID)
		}
	}
}
