package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/cache"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func quietLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t, "crypto-BTC-7", cache.ChartKey(provider.KindCrypto, "BTC", 7))
	require.Equal(t, "stock-AAPL-30", cache.ChartKey(provider.KindStock, "AAPL", 30))
	require.Equal(t, "crypto-detail-bitcoin", cache.DetailKey("bitcoin"))
}

func TestIsValid_Boundary(t *testing.T) {
	t.Parallel()

	// Arrange: store an entry at t0
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	s := cache.New(nil, cache.WithClock(clk.Now), cache.WithLogger(quietLogger()))
	require.NoError(t, s.Put(t.Context(), "crypto-BTC-7", provider.Asset{Symbol: "BTC"}))

	// Assert: valid strictly before the TTL elapses
	clk.t = clk.t.Add(59_999 * time.Millisecond)
	require.True(t, s.IsValid("crypto-BTC-7", time.Minute))

	clk.t = clk.t.Add(time.Millisecond)
	require.False(t, s.IsValid("crypto-BTC-7", time.Minute))

	require.False(t, s.IsValid("missing", time.Minute))
}

func TestIsValid_StaleAfterNinetySeconds(t *testing.T) {
	t.Parallel()

	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	s := cache.New(nil, cache.WithClock(clk.Now), cache.WithLogger(quietLogger()))
	require.NoError(t, s.Put(t.Context(), "crypto-BTC-7", provider.Asset{Symbol: "BTC", Price: 1}))

	clk.t = clk.t.Add(90 * time.Second)

	require.False(t, s.IsValid("crypto-BTC-7", 60*time.Second))

	// Expired entries are still readable for stale fallback.
	var a provider.Asset
	require.True(t, s.Get("crypto-BTC-7", &a))
	require.Equal(t, 1.0, a.Price)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	want := provider.Asset{
		Symbol:     "BTC",
		Kind:       provider.KindCrypto,
		Price:      110.125,
		Change:     10,
		History:    []float64{100, 105.5, 110.125},
		Timestamps: []int64{1, 2, 3},
		FetchedAt:  1_700_000_000_000,
	}

	// Act: write through one store and load into another
	w := cache.New(cache.FileBackend{Path: path}, cache.WithClock(clk.Now), cache.WithLogger(quietLogger()))
	require.NoError(t, w.Put(t.Context(), "crypto-BTC-7", want))

	r := cache.New(cache.FileBackend{Path: path}, cache.WithClock(clk.Now), cache.WithLogger(quietLogger()))
	require.NoError(t, r.Load(t.Context()))

	// Assert
	var got provider.Asset
	require.True(t, r.Get("crypto-BTC-7", &got))
	require.Equal(t, want, got)
	require.True(t, r.IsValid("crypto-BTC-7", time.Minute))
	at, ok := r.StoredAt("crypto-BTC-7")
	require.True(t, ok)
	require.Equal(t, clk.t.UnixMilli(), at.UnixMilli())

	// Assert: the on-disk format is a key -> {payload, storedAt} object
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Contains(t, raw["crypto-BTC-7"], "payload")
	require.Contains(t, raw["crypto-BTC-7"], "storedAt")
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s := cache.New(cache.FileBackend{Path: filepath.Join(t.TempDir(), "none.json")}, cache.WithLogger(quietLogger()))

	require.NoError(t, s.Load(t.Context()))
	require.Zero(t, s.Len())
}

func TestLoad_CorruptSnapshotIsEmpty(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	logger, hook := test.NewNullLogger()
	s := cache.New(cache.FileBackend{Path: path}, cache.WithLogger(logrus.NewEntry(logger)))

	// Act
	err := s.Load(t.Context())

	// Assert
	require.ErrorIs(t, err, provider.ErrCacheCorrupt)
	require.Zero(t, s.Len())
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// The store remains usable and overwrites the corrupt file.
	require.NoError(t, s.Put(t.Context(), "stock-AAPL-30", provider.Asset{Symbol: "AAPL"}))
	r := cache.New(cache.FileBackend{Path: path}, cache.WithLogger(quietLogger()))
	require.NoError(t, r.Load(t.Context()))
	require.Equal(t, 1, r.Len())
}

type failingBackend struct{ saves int }

func (f *failingBackend) Load(context.Context) ([]byte, error) { return nil, nil }

func (f *failingBackend) Save(context.Context, []byte) error {
	f.saves++
	return errors.New("disk full")
}

func TestPut_PersistFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	backend := &failingBackend{}
	logger, hook := test.NewNullLogger()
	s := cache.New(backend, cache.WithLogger(logrus.NewEntry(logger)))

	require.NoError(t, s.Put(t.Context(), "crypto-detail-bitcoin", map[string]float64{"ath": 69000}))

	require.Equal(t, 1, backend.saves)
	require.True(t, s.IsValid("crypto-detail-bitcoin", 30*time.Minute))
	require.Len(t, hook.AllEntries(), 1)
}

func TestPut_RewritesWholeSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	s := cache.New(cache.FileBackend{Path: path}, cache.WithLogger(quietLogger()))
	require.NoError(t, s.Put(t.Context(), "a", 1))
	require.NoError(t, s.Put(t.Context(), "b", 2))
	require.NoError(t, s.Put(t.Context(), "a", 3))

	r := cache.New(cache.FileBackend{Path: path}, cache.WithLogger(quietLogger()))
	require.NoError(t, r.Load(t.Context()))

	var a, b int
	require.True(t, r.Get("a", &a))
	require.True(t, r.Get("b", &b))
	require.Equal(t, 3, a)
	require.Equal(t, 2, b)
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedisBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	kv := &fakeRedis{data: map[string]string{}}
	backend := cache.RedisBackend{Client: kv, Key: "assetfeed:cache"}

	// Empty key loads as an empty cache.
	s := cache.New(backend, cache.WithLogger(quietLogger()))
	require.NoError(t, s.Load(t.Context()))
	require.Zero(t, s.Len())

	require.NoError(t, s.Put(t.Context(), "stock-SPY-7", provider.Asset{Symbol: "SPY", Kind: provider.KindETF}))
	require.Contains(t, kv.data, "assetfeed:cache")

	r := cache.New(backend, cache.WithLogger(quietLogger()))
	require.NoError(t, r.Load(t.Context()))
	var got provider.Asset
	require.True(t, r.Get("stock-SPY-7", &got))
	require.Equal(t, provider.KindETF, got.Kind)
}
