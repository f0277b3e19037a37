package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port" env:"PORT, overwrite"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC, overwrite"`
}

type Log struct {
	Level  string `json:"level" yaml:"level" env:"LEVEL, overwrite"`
	Format string `json:"format" yaml:"format" env:"FORMAT, overwrite"` // text | json
	Output string `json:"output" yaml:"output" env:"OUTPUT, overwrite"` // stdout | stderr | file path
}

type Crypto struct {
	BaseURL       string `json:"base_url" yaml:"base_url" env:"BASE_URL, overwrite"`
	APIKey        string `json:"api_key" yaml:"api_key" env:"API_KEY, overwrite"`
	KeyHeader     string `json:"key_header" yaml:"key_header" env:"KEY_HEADER, overwrite"`
	Currency      string `json:"currency" yaml:"currency" env:"CURRENCY, overwrite"`
	MinIntervalMs int    `json:"min_interval_ms" yaml:"min_interval_ms" env:"MIN_INTERVAL_MS, overwrite"`
	Retries       int    `json:"retries" yaml:"retries" env:"RETRIES, overwrite"`
	BaseDelayMs   int    `json:"base_delay_ms" yaml:"base_delay_ms" env:"BASE_DELAY_MS, overwrite"`
	JitterMs      int    `json:"jitter_ms" yaml:"jitter_ms" env:"JITTER_MS, overwrite"`
}

type Equity struct {
	BaseURL     string `json:"base_url" yaml:"base_url" env:"BASE_URL, overwrite"`
	Retries     int    `json:"retries" yaml:"retries" env:"RETRIES, overwrite"`
	BaseDelayMs int    `json:"base_delay_ms" yaml:"base_delay_ms" env:"BASE_DELAY_MS, overwrite"`
	JitterMs    int    `json:"jitter_ms" yaml:"jitter_ms" env:"JITTER_MS, overwrite"`
	Quote       bool   `json:"quote" yaml:"quote" env:"QUOTE, overwrite"`
}

type Cache struct {
	Backend       string `json:"backend" yaml:"backend" env:"BACKEND, overwrite"` // file | redis
	Path          string `json:"path" yaml:"path" env:"PATH, overwrite"`
	ShortTTLSec   int    `json:"short_ttl_sec" yaml:"short_ttl_sec" env:"SHORT_TTL_SEC, overwrite"`
	LongTTLSec    int    `json:"long_ttl_sec" yaml:"long_ttl_sec" env:"LONG_TTL_SEC, overwrite"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" env:"REDIS_ADDR, overwrite"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" env:"REDIS_PASSWORD, overwrite"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" env:"REDIS_DB, overwrite"`
	RedisKey      string `json:"redis_key" yaml:"redis_key" env:"REDIS_KEY, overwrite"`
}

type Refresh struct {
	IntervalSec  int               `json:"interval_sec" yaml:"interval_sec" env:"INTERVAL_SEC, overwrite"`
	LookbackDays int               `json:"lookback_days" yaml:"lookback_days" env:"LOOKBACK_DAYS, overwrite"`
	Tickers      []string          `json:"tickers" yaml:"tickers" env:"TICKERS, overwrite"`
	CryptoIDs    map[string]string `json:"crypto_ids" yaml:"crypto_ids" env:"CRYPTO_IDS, overwrite"`
}

type NATS struct {
	URL     string `json:"url" yaml:"url" env:"URL, overwrite"`
	Subject string `json:"subject" yaml:"subject" env:"SUBJECT, overwrite"`
}

type Config struct {
	Server  Server  `json:"server" yaml:"server" env:", prefix=SERVER_"`
	Log     Log     `json:"log" yaml:"log" env:", prefix=LOG_"`
	Crypto  Crypto  `json:"crypto" yaml:"crypto" env:", prefix=CRYPTO_"`
	Equity  Equity  `json:"equity" yaml:"equity" env:", prefix=EQUITY_"`
	Cache   Cache   `json:"cache" yaml:"cache" env:", prefix=CACHE_"`
	Refresh Refresh `json:"refresh" yaml:"refresh" env:", prefix=REFRESH_"`
	NATS    NATS    `json:"nats" yaml:"nats" env:", prefix=NATS_"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Log:    Log{Level: "info", Format: "text", Output: "stdout"},
		Crypto: Crypto{
			BaseURL:       "https://api.coingecko.com/api/v3",
			KeyHeader:     "x-cg-demo-api-key",
			Currency:      "usd",
			MinIntervalMs: 5000,
			Retries:       3,
			BaseDelayMs:   1000,
			JitterMs:      300,
		},
		Equity: Equity{
			BaseURL:     "https://query1.finance.yahoo.com",
			Retries:     3,
			BaseDelayMs: 1000,
			JitterMs:    300,
			Quote:       true,
		},
		Cache: Cache{
			Backend:     "file",
			Path:        "cache.json",
			ShortTTLSec: 60,
			LongTTLSec:  1800,
			RedisAddr:   "localhost:6379",
			RedisKey:    "assetfeed:cache",
		},
		Refresh: Refresh{
			IntervalSec:  60,
			LookbackDays: 7,
			Tickers:      []string{"AAPL", "SPY", "BTC", "ETH"},
			CryptoIDs:    map[string]string{"BTC": "bitcoin", "ETH": "ethereum"},
		},
		NATS: NATS{Subject: "assetfeed.assets"},
	}
}

// Load reads config from path (JSON, or YAML by extension). If path is
// empty, config.json or config.yaml in the working directory is used when
// present. Environment variables override file values.
func Load(ctx context.Context, path string) (Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Cache.ShortTTLSec <= 0 {
		errs = append(errs, errors.New("cache.short_ttl_sec must be positive"))
	}
	if c.Cache.LongTTLSec <= 0 {
		errs = append(errs, errors.New("cache.long_ttl_sec must be positive"))
	}
	if c.Refresh.IntervalSec <= 0 {
		errs = append(errs, errors.New("refresh.interval_sec must be positive"))
	}
	if c.Refresh.LookbackDays <= 0 {
		errs = append(errs, errors.New("refresh.lookback_days must be positive"))
	}
	if c.Crypto.MinIntervalMs < 0 {
		errs = append(errs, errors.New("crypto.min_interval_ms must not be negative"))
	}
	if c.Crypto.Retries < 0 || c.Equity.Retries < 0 {
		errs = append(errs, errors.New("retries must not be negative"))
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path is required for the file backend"))
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func (s Server) RequestTimeout() time.Duration { return time.Duration(s.RequestTimeoutSec) * time.Second }

func (c Crypto) MinInterval() time.Duration { return time.Duration(c.MinIntervalMs) * time.Millisecond }
func (c Crypto) BaseDelay() time.Duration   { return time.Duration(c.BaseDelayMs) * time.Millisecond }
func (c Crypto) Jitter() time.Duration      { return time.Duration(c.JitterMs) * time.Millisecond }

func (e Equity) BaseDelay() time.Duration { return time.Duration(e.BaseDelayMs) * time.Millisecond }
func (e Equity) Jitter() time.Duration    { return time.Duration(e.JitterMs) * time.Millisecond }

func (c Cache) ShortTTL() time.Duration { return time.Duration(c.ShortTTLSec) * time.Second }
func (c Cache) LongTTL() time.Duration  { return time.Duration(c.LongTTLSec) * time.Second }

func (r Refresh) Interval() time.Duration { return time.Duration(r.IntervalSec) * time.Second }
