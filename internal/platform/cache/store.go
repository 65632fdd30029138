package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

type entry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time
}

// Store is an in-memory TTL cache owned by a single route/service. Each
// consumer builds its own key from the query parameters that affect its
// response; keys are never shared across routes.
//
// Get reports a miss for both absent and expired entries: callers always
// refetch on miss and overwrite on refresh. There is no eviction beyond
// overwrite, so key growth is bounded by the distinct parameter
// combinations a route accepts.
type Store[V any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[V]
	ttl      time.Duration
	now      func() time.Time
	mirror   Mirror
	flight   resilience.SingleFlight
	disabled bool
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewMirroredStore attaches a best-effort persistent mirror consulted on
// memory misses and written through on Set. A nil mirror is allowed.
func NewMirroredStore[V any](ttl time.Duration, mirror Mirror) *Store[V] {
	s := NewStore[V](ttl)
	s.mirror = mirror
	return s
}

// NewDisabledStore reports every Get as a miss and drops every Set.
// GetOrLoad still collapses concurrent loads for the same key.
func NewDisabledStore[V any]() *Store[V] {
	s := NewStore[V](0)
	s.disabled = true
	return s
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" || s.disabled {
		return zero, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		if s.freshAt(e, now) {
			return e.value, true
		}
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	}

	if s.mirror == nil {
		return zero, false
	}
	return s.getFromMirror(key, now)
}

func (s *Store[V]) Set(ctx context.Context, key string, value V) {
	s.SetTTL(ctx, key, value, s.ttl)
}

// SetTTL stores value under key with an explicit TTL, overwriting any
// previous entry. ttl <= 0 means the entry never expires.
func (s *Store[V]) SetTTL(_ context.Context, key string, value V, ttl time.Duration) {
	if key == "" || s.disabled {
		return
	}

	now := s.now()
	e := entry[V]{value: value, storedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	if s.mirror != nil {
		if raw, err := encodeRecord(value, now, ttl); err == nil {
			s.mirror.Write(key, raw)
		}
	}
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	if s.mirror != nil {
		s.mirror.Remove(key)
	}
}

// GetOrLoad returns the cached value for key, loading it at most once
// across concurrent callers. Loader failures are returned as-is and are
// never cached, so a transient outage is not masked for a TTL window.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	out, ok := value.(V)
	if !ok {
		return zero, fmt.Errorf("unexpected cached value type %T", value)
	}
	return out, nil
}

func (s *Store[V]) freshAt(e entry[V], now time.Time) bool {
	return e.expiresAt.IsZero() || e.expiresAt.After(now)
}

func (s *Store[V]) getFromMirror(key string, now time.Time) (V, bool) {
	var zero V
	raw, ok := s.mirror.Read(key)
	if !ok {
		return zero, false
	}

	var rec record[V]
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		s.mirror.Remove(key)
		return zero, false
	}
	storedAt := time.UnixMilli(rec.StoredAtMs)
	if rec.TTLSeconds > 0 && now.Sub(storedAt) >= time.Duration(rec.TTLSeconds)*time.Second {
		s.mirror.Remove(key)
		return zero, false
	}

	e := entry[V]{value: rec.Value, storedAt: storedAt}
	if rec.TTLSeconds > 0 {
		e.expiresAt = storedAt.Add(time.Duration(rec.TTLSeconds) * time.Second)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	return rec.Value, true
}

// record is the mirror's on-disk shape.
type record[V any] struct {
	StoredAtMs int64 `json:"ts"`
	TTLSeconds int64 `json:"ttl"`
	Value      V     `json:"value"`
}

func encodeRecord[V any](value V, storedAt time.Time, ttl time.Duration) ([]byte, error) {
	return sonic.Marshal(record[V]{
		StoredAtMs: storedAt.UnixMilli(),
		TTLSeconds: int64(ttl / time.Second),
		Value:      value,
	})
}
