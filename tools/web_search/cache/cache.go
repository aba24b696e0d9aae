// Package cache provides the TTL-bounded store for search results. Two
// implementations exist: an in-process map guarded by a mutex (the default)
// and a Redis-backed variant for deployments that share results between
// processes. Both are constructed explicitly and injected into the search
// client so tests can use isolated instances.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// DefaultCapacity is the entry count at which the in-memory store purges
// expired entries before inserting. Eviction is lazy on purpose: a
// background sweeper would cost a timer for a cache this small.
const DefaultCapacity = 256

// Store is the cache interface shared by the in-memory and Redis backends.
// A nil results slice with ok=true is a valid cached value: empty search
// responses are cached too, so a failing query does not hammer the engine.
type Store interface {
	Get(ctx context.Context, key string) (results []models.Result, ok bool)
	Set(ctx context.Context, key string, results []models.Result, ttl time.Duration)
}

// Key normalises a query (case-fold, trim) and hashes it. Equivalent
// queries that differ only in case or surrounding whitespace share an entry.
func Key(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	results   []models.Result
	expiresAt time.Time
}

// Memory is the in-process store. Entries are immutable once inserted; a
// fresh Set for the same key replaces the entry rather than mutating it.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	now      func() time.Time
}

// NewMemory returns an empty in-memory store. capacity <= 0 selects
// DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		entries:  make(map[string]entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached results if the entry exists and has not expired.
func (m *Memory) Get(_ context.Context, key string) ([]models.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.results, true
}

// Set stores results under key for ttl. When the store is at capacity it
// first drops every expired entry; the insert happens regardless, so the
// store can exceed capacity transiently when nothing has expired yet.
func (m *Memory) Set(_ context.Context, key string, results []models.Result, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.capacity {
		m.purgeExpiredLocked()
	}
	m.entries[key] = entry{results: results, expiresAt: m.now().Add(ttl)}
}

// Len reports the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) purgeExpiredLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
