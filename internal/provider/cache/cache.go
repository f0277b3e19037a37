package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"assetfeed/internal/provider"
)

// Entry is one cached payload with the time it was stored.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt int64           `json:"storedAt"` // epoch millis
}

// Backend persists the whole cache snapshot as a single JSON document.
type Backend interface {
	// Load returns the last saved snapshot, or nil when none exists.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, b []byte) error
}

// Store is the in-memory cache mirrored to a Backend. Memory is
// authoritative: a failed Save is logged and the entry stays cached.
type Store struct {
	backend Backend
	now     func() time.Time
	log     *logrus.Entry

	mu    sync.RWMutex
	items map[string]Entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for TTL checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for load and persist failures.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

// New returns an empty Store. A nil backend keeps the cache memory-only.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		log:     logrus.NewEntry(logrus.StandardLogger()),
		items:   make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory map with the backend snapshot. Any failure
// leaves the cache empty; the error is logged and returned for reporting.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	b, err := s.backend.Load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("cache snapshot unreadable, starting empty")
		return fmt.Errorf("load cache: %w", err)
	}
	items := make(map[string]Entry)
	var corrupt error
	if len(b) > 0 {
		if err := json.Unmarshal(b, &items); err != nil {
			corrupt = fmt.Errorf("%w: %v", provider.ErrCacheCorrupt, err)
			s.log.WithError(corrupt).Warn("cache snapshot corrupt, starting empty")
			items = make(map[string]Entry)
		}
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	if corrupt != nil {
		return corrupt
	}
	s.log.WithField("entries", len(items)).Debug("cache loaded")
	return nil
}

// IsValid reports whether key holds an entry younger than ttl.
func (s *Store) IsValid(key string, ttl time.Duration) bool {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || e.StoredAt <= 0 {
		return false
	}
	age := s.now().UnixMilli() - e.StoredAt
	return age < ttl.Milliseconds()
}

// Get decodes the entry under key into v regardless of its age.
// It returns false when the key is absent or the payload does not decode.
func (s *Store) Get(key string, v any) bool {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || len(e.Payload) == 0 {
		return false
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("cache entry undecodable")
		return false
	}
	return true
}

// Put stores v under key stamped with the current time and rewrites the
// whole snapshot. Only an encoding failure is returned.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	s.mu.Lock()
	s.items[key] = Entry{Payload: payload, StoredAt: s.now().UnixMilli()}
	snapshot, err := json.Marshal(s.items)
	s.mu.Unlock()
	if err != nil {
		s.log.WithField("key", key).WithError(err).Error("encode cache snapshot")
		return nil
	}

	if s.backend == nil {
		return nil
	}
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("persist cache snapshot")
	}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// StoredAt returns when key was last written.
func (s *Store) StoredAt(key string) (time.Time, bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || e.StoredAt <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(e.StoredAt), true
}

// ChartKey is the price-series key, e.g. crypto-BTC-7 or stock-AAPL-30.
func ChartKey(kind provider.Kind, symbol string, days int) string {
	return fmt.Sprintf("%s-%s-%d", kind, symbol, days)
}

// DetailKey is the crypto detail key, e.g. crypto-detail-bitcoin.
func DetailKey(id string) string { return "crypto-detail-" + id }
