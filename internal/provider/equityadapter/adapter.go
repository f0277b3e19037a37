package equityadapter

import (
	"context"
	"time"

	"github.com/piquette/finance-go"
	"github.com/sirupsen/logrus"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/cache"
	"assetfeed/internal/provider/yahoo"
)

// Client is the subset of the Yahoo client the adapter needs.
//
//go:generate mockgen -package=equityadapter_test -destination=mock_client_test.go -source=adapter.go Client
type Client interface {
	Chart(ctx context.Context, symbol string, rng yahoo.Range, interval yahoo.Interval) (*yahoo.ChartResult, error)
	Quote(ctx context.Context, symbol string) (*finance.Equity, error)
}

type Config struct {
	// ShortTTL bounds how long a price series is served from cache.
	ShortTTL time.Duration
	// Quote enables the secondary quote lookup for fundamentals.
	Quote bool
}

// Adapter turns Yahoo chart and quote responses into provider.Asset records.
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

// RangeFor maps a lookback in days onto the chart window and sampling.
func RangeFor(days int) (yahoo.Range, yahoo.Interval) {
	switch {
	case days <= 1:
		return yahoo.Range1d, yahoo.Interval1h
	case days <= 7:
		return yahoo.Range7d, yahoo.Interval1d
	case days <= 30:
		return yahoo.Range1mo, yahoo.Interval1d
	default:
		return yahoo.Range3mo, yahoo.Interval1d
	}
}

// Fetch returns the asset for symbol over days days. Like the crypto
// adapter it never fails; see provider.Result for the outcome.
func (a *Adapter) Fetch(ctx context.Context, symbol string, days int) provider.Result {
	key := cache.ChartKey(provider.KindStock, symbol, days)
	log := a.log.WithFields(logrus.Fields{"symbol": symbol, "key": key})

	var cached provider.Asset
	if a.store.IsValid(key, a.cfg.ShortTTL) && a.store.Get(key, &cached) {
		log.Debug("serving from cache")
		return provider.Cached(cached)
	}

	rng, interval := RangeFor(days)
	chart, err := a.client.Chart(ctx, symbol, rng, interval)
	if err != nil {
		return a.fallback(log, key, symbol, err)
	}

	asset := AssetFrom(symbol, chart, a.now())
	if a.cfg.Quote {
		q, err := a.client.Quote(ctx, symbol)
		if err != nil {
			log.WithError(err).Debug("quote unavailable")
		} else {
			ApplyQuote(&asset, q)
		}
	}

	if err := a.store.Put(ctx, key, asset); err != nil {
		log.WithError(err).Warn("cache chart")
	}
	return provider.Fresh(asset)
}

func (a *Adapter) fallback(log *logrus.Entry, key, symbol string, err error) provider.Result {
	var prev provider.Asset
	if a.store.Get(key, &prev) {
		log.WithError(err).Warn("fetch failed, serving stale cache")
		return provider.Stale(prev, err)
	}
	log.WithError(err).Error("fetch failed, no cache")
	return provider.Failed(provider.Placeholder(symbol, provider.KindStock, a.now()), err)
}
