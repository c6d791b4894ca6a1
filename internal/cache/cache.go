package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"medfront.com/clinicdesk/internal/metrics"
)

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value    any
	storedAt time.Time
}

// Store is the per-key query cache. A key that already holds a value
// is served immediately while a background revalidation refreshes it
// (stale-while-revalidate); concurrent fetches of the same key
// collapse into a single flight. The last successful response for a
// key wins.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
	}
}

// Get returns the value for key. On a hit the cached value is
// returned at once and a deduplicated background refresh is started.
// On a miss the caller blocks on a single shared fetch.
func (s *Store) Get(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	s.mu.RLock()
	cached, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		metrics.RecordCacheHit(resourceLabel(key))
		log.Debug().
			Str("key", key).
			Dur("age", time.Since(cached.storedAt)).
			Msg("Cache hit, revalidating in background")

		// The revalidation must outlive the caller's request.
		go s.refresh(context.WithoutCancel(ctx), key, fetch)
		return cached.value, nil
	}

	metrics.RecordCacheMiss(resourceLabel(key))

	value, err, _ := s.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.store(key, value)
	return value, nil
}

// Peek returns the cached value without fetching or revalidating.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return cached.value, true
}

// Invalidate drops the given keys.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if _, ok := s.entries[key]; ok {
			delete(s.entries, key)
			metrics.RecordCacheInvalidation(resourceLabel(key), 1)
		}
	}
}

// InvalidatePrefix drops every key sharing prefix and returns how many
// entries were removed. Used after mutations to flush all cached list
// pages at once.
func (s *Store) InvalidatePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordCacheInvalidation(resourceLabel(prefix), removed)
	}
	return removed
}

// refresh revalidates one key in the background. Failures keep the
// stale value; the next mutation or refresh attempt will retry.
func (s *Store) refresh(ctx context.Context, key string, fetch FetchFunc) {
	value, err, shared := s.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		metrics.RecordCacheRevalidation(resourceLabel(key), "failed")
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("Background revalidation failed, keeping stale value")
		return
	}
	if !shared {
		metrics.RecordCacheRevalidation(resourceLabel(key), "success")
	}

	s.store(key, value)
}

func (s *Store) store(key string, value any) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, storedAt: time.Now()}
	s.mu.Unlock()
}

// resourceLabel keeps metric cardinality bounded: "patients:list:..."
// becomes "patients:list".
func resourceLabel(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) >= 2 {
		return parts[0] + ":" + parts[1]
	}
	return key
}
