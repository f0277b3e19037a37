package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"assetfeed/internal/aggregate"
	"assetfeed/internal/api"
	"assetfeed/internal/config"
	"assetfeed/internal/httpx"
	"assetfeed/internal/logging"
	"assetfeed/internal/provider"
	"assetfeed/internal/provider/cache"
	"assetfeed/internal/provider/coingecko"
	"assetfeed/internal/provider/cryptoadapter"
	"assetfeed/internal/provider/equityadapter"
	"assetfeed/internal/provider/ratelimit"
	"assetfeed/internal/provider/retry"
	"assetfeed/internal/provider/yahoo"
	"assetfeed/internal/publish"
	"assetfeed/internal/refresh"
	"assetfeed/internal/stream"
)

// App holds the wired service graph.
type App struct {
	Config     config.Config
	Log        *logrus.Logger
	Store      *cache.Store
	Aggregator *aggregate.Aggregator
	Runner     *refresh.Runner
	Hub        *stream.Hub

	closers []func() error
}

// New builds every component from cfg and loads the cache snapshot.
// A corrupt or unreadable snapshot is logged and the service starts with
// an empty cache.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{Config: cfg, Log: logger}

	backend, err := a.backend(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = cache.New(backend, cache.WithLogger(logging.WithComponent(logger, "cache")))
	if err := a.Store.Load(ctx); err != nil {
		logger.WithError(err).Warn("starting with an empty cache")
	}

	base := httpx.New(cfg.Server.RequestTimeout())

	cryptoFetcher := retry.New(base,
		retry.Config{Retries: cfg.Crypto.Retries, BaseDelay: cfg.Crypto.BaseDelay(), MaxJitter: cfg.Crypto.Jitter()},
		retry.WithLimiter(ratelimit.New(cfg.Crypto.MinInterval())),
		retry.WithLogger(logging.WithComponent(logger, "coingecko")),
	)
	cg, err := coingecko.NewClient(cfg.Crypto.APIKey,
		coingecko.WithBaseURL(cfg.Crypto.BaseURL),
		coingecko.WithHTTPClient(cryptoFetcher),
		coingecko.WithCurrency(cfg.Crypto.Currency),
		coingecko.WithKeyHeader(cfg.Crypto.KeyHeader),
	)
	if err != nil {
		return nil, fmt.Errorf("coingecko client: %w", err)
	}

	equityFetcher := retry.New(base,
		retry.Config{Retries: cfg.Equity.Retries, BaseDelay: cfg.Equity.BaseDelay(), MaxJitter: cfg.Equity.Jitter()},
		retry.WithLogger(logging.WithComponent(logger, "yahoo")),
	)
	yh, err := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Equity.BaseURL),
		yahoo.WithHTTPClient(equityFetcher),
	)
	if err != nil {
		return nil, fmt.Errorf("yahoo client: %w", err)
	}

	crypto := cryptoadapter.New(
		cryptoadapter.Config{ShortTTL: cfg.Cache.ShortTTL(), LongTTL: cfg.Cache.LongTTL(), Currency: cg.Currency()},
		cg, a.Store,
		cryptoadapter.WithLogger(logging.WithComponent(logger, "crypto")),
	)
	equity := equityadapter.New(
		equityadapter.Config{ShortTTL: cfg.Cache.ShortTTL(), Quote: cfg.Equity.Quote},
		yh, a.Store,
		equityadapter.WithLogger(logging.WithComponent(logger, "equity")),
	)
	a.Aggregator = aggregate.New(crypto, equity, logging.WithComponent(logger, "aggregate"))

	a.Hub = stream.NewHub(logging.WithComponent(logger, "stream"))
	sinks := []refresh.Sink{a.Hub}
	if cfg.NATS.URL != "" {
		natsLog := logging.WithComponent(logger, "nats")
		nc, err := publish.Connect(cfg.NATS.URL, natsLog)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			nc.Close()
			return nil
		})
		sinks = append(sinks, publish.NewNATS(nc, cfg.NATS.Subject, natsLog))
	}

	a.Runner = refresh.New(refresh.Config{
		Interval:     cfg.Refresh.Interval(),
		Tickers:      cfg.Refresh.Tickers,
		CryptoIDs:    cfg.Refresh.CryptoIDs,
		LookbackDays: cfg.Refresh.LookbackDays,
	}, a.Aggregator,
		refresh.WithSinks(sinks...),
		refresh.WithLogger(logging.WithComponent(logger, "refresh")),
	)
	return a, nil
}

func (a *App) backend(ctx context.Context) (cache.Backend, error) {
	switch a.Config.Cache.Backend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, a.Config.Cache.RedisAddr, a.Config.Cache.RedisPassword, a.Config.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return cache.RedisBackend{Client: client, Key: a.Config.Cache.RedisKey}, nil
	default:
		return cache.FileBackend{Path: a.Config.Cache.Path}, nil
	}
}

// Handler returns the HTTP API with the websocket stream mounted.
func (a *App) Handler() http.Handler {
	return api.NewRouter(a.Runner, a.Hub, logging.WithComponent(a.Log, "api"))
}

// FetchAll runs one fetch over tickers outside the refresh loop.
func (a *App) FetchAll(ctx context.Context, tickers []string, ids map[string]string, days int) []provider.Result {
	return a.Aggregator.FetchResults(ctx, aggregate.NormalizeTickers(tickers), aggregate.NormalizeIDMap(ids), days)
}

// Close releases backend and broker connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
