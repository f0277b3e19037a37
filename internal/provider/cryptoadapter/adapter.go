package cryptoadapter

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/cache"
	"assetfeed/internal/provider/coingecko"
)

// Client is the subset of the CoinGecko client the adapter needs.
//
//go:generate mockgen -package=cryptoadapter_test -destination=mock_client_test.go -source=adapter.go Client
type Client interface {
	MarketChart(ctx context.Context, id string, days int) (*coingecko.MarketChart, error)
	Coin(ctx context.Context, id string) (*coingecko.Coin, error)
}

type Config struct {
	// ShortTTL bounds how long a price series is served from cache.
	ShortTTL time.Duration
	// LongTTL bounds how long coin detail is served from cache.
	LongTTL time.Duration
	// Currency is the quote currency, e.g. usd.
	Currency string
}

// Adapter turns CoinGecko responses into provider.Asset records, going
// through the cache first and falling back to it on failure.
type Adapter struct {
	cfg    Config
	client Client
	store  *cache.Store
	now    func() time.Time
	log    *logrus.Entry
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock replaces time.Now for fetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithLogger sets the adapter logger.
func WithLogger(l *logrus.Entry) Option {
	return func(a *Adapter) { a.log = l }
}

func New(cfg Config, client Client, store *cache.Store, opts ...Option) *Adapter {
	if cfg.ShortTTL <= 0 {
		cfg.ShortTTL = 60 * time.Second
	}
	if cfg.LongTTL <= 0 {
		cfg.LongTTL = 30 * time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	a := &Adapter{
		cfg:    cfg,
		client: client,
		store:  store,
		now:    time.Now,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch returns the asset for symbol using the provider id over days days.
// It never fails: provider errors degrade to a stale cache entry or a
// placeholder, reported through the Result status.
func (a *Adapter) Fetch(ctx context.Context, symbol, id string, days int) provider.Result {
	key := cache.ChartKey(provider.KindCrypto, symbol, days)
	log := a.log.WithFields(logrus.Fields{"symbol": symbol, "key": key})

	var cached provider.Asset
	if a.store.IsValid(key, a.cfg.ShortTTL) && a.store.Get(key, &cached) {
		log.Debug("serving from cache")
		return provider.Cached(cached)
	}

	chart, err := a.client.MarketChart(ctx, id, days)
	if err != nil {
		return a.fallback(log, key, symbol, err)
	}

	detail := a.detail(ctx, log, id)
	asset := AssetFrom(symbol, a.cfg.Currency, chart, detail, a.now())

	if err := a.store.Put(ctx, key, asset); err != nil {
		log.WithError(err).Warn("cache chart")
	}
	return provider.Fresh(asset)
}

func (a *Adapter) detail(ctx context.Context, log *logrus.Entry, id string) *Detail {
	key := cache.DetailKey(id)

	var d Detail
	if a.store.IsValid(key, a.cfg.LongTTL) && a.store.Get(key, &d) {
		return &d
	}

	coin, err := a.client.Coin(ctx, id)
	if err != nil {
		log.WithError(err).Info("coin detail unavailable")
		return nil
	}
	d = DetailFrom(coin, a.cfg.Currency)
	if err := a.store.Put(ctx, key, d); err != nil {
		log.WithError(err).Warn("cache coin detail")
	}
	return &d
}

func (a *Adapter) fallback(log *logrus.Entry, key, symbol string, err error) provider.Result {
	var prev provider.Asset
	if a.store.Get(key, &prev) {
		log.WithError(err).Warn("fetch failed, serving stale cache")
		return provider.Stale(prev, err)
	}
	log.WithError(err).Error("fetch failed, no cache")
	return provider.Failed(provider.Placeholder(symbol, provider.KindCrypto, a.now()), err)
}
