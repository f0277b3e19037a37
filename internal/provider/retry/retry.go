package retry

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/ratelimit"
)

// Acquirer gates an outbound attempt; *ratelimit.Limiter satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Config bounds the retry loop.
type Config struct {
	// Retries is the number of additional attempts after the first.
	Retries int
	// BaseDelay is doubled per retry: BaseDelay * 2^attempt.
	BaseDelay time.Duration
	// MaxJitter adds a uniform random delay in [0, MaxJitter).
	MaxJitter time.Duration
}

// DefaultConfig returns 3 retries, 1s base delay and up to 300ms jitter.
func DefaultConfig() Config {
	return Config{Retries: 3, BaseDelay: time.Second, MaxJitter: 300 * time.Millisecond}
}

// Fetcher is a provider.HTTPClient that retries 429, 5xx and transport
// failures with exponential backoff. Every attempt, including the first,
// is preceded by a limiter wait when a limiter is configured.
//
// Non-2xx responses are returned as *provider.StatusError with the body
// consumed and closed; callers only ever see 2xx responses.
type Fetcher struct {
	client  provider.HTTPClient
	cfg     Config
	limiter Acquirer
	jitter  func(max time.Duration) time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	log     *logrus.Entry
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter sets the limiter consulted before each attempt.
func WithLimiter(l Acquirer) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithJitter replaces the random jitter source.
func WithJitter(j func(max time.Duration) time.Duration) Option {
	return func(f *Fetcher) { f.jitter = j }
}

// WithSleeper replaces the context-aware backoff wait.
func WithSleeper(s func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = s }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *logrus.Entry) Option {
	return func(f *Fetcher) { f.log = l }
}

// New wraps client with the retry policy in cfg.
func New(client provider.HTTPClient, cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		cfg:    cfg,
		jitter: uniformJitter,
		sleep:  ratelimit.Sleep,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cfg.Retries < 0 {
		f.cfg.Retries = 0
	}
	return f
}

// Do performs req, retrying retryable failures. The last error is returned
// once retries are exhausted; terminal errors are returned immediately.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Acquire(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := f.attempt(req, attempt)
		if err == nil {
			return resp, nil
		}
		if !provider.Retryable(err) || attempt >= f.cfg.Retries {
			return nil, err
		}

		delay := f.Delay(attempt)
		f.log.WithFields(logrus.Fields{
			"url":     req.URL.Path,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).WithError(err).Warn("retrying request")
		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Delay returns the backoff before retry number attempt (0-based).
func (f *Fetcher) Delay(attempt int) time.Duration {
	d := f.cfg.BaseDelay << attempt
	if f.cfg.MaxJitter > 0 {
		d += f.jitter(f.cfg.MaxJitter)
	}
	return d
}

func (f *Fetcher) attempt(req *http.Request, n int) (*http.Response, error) {
	r := req
	if n > 0 {
		r = req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}
	}

	resp, err := f.client.Do(r)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &provider.NetworkError{Err: err}
	}
	if resp.Request == nil {
		resp.Request = r
	}
	if err := provider.CheckResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}
