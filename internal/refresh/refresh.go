package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"assetfeed/internal/aggregate"
	"assetfeed/internal/provider"
)

// Fetcher runs one full fetch over the configured tickers.
type Fetcher interface {
	FetchResults(ctx context.Context, tickers []string, idMap map[string]string, days int) []provider.Result
}

// Sink receives every completed snapshot.
type Sink interface {
	Publish(ctx context.Context, s Snapshot) error
}

// Snapshot is the outcome of one refresh cycle.
type Snapshot struct {
	CycleID      string           `json:"cycleId"`
	StartedAt    time.Time        `json:"startedAt"`
	FinishedAt   time.Time        `json:"finishedAt"`
	LookbackDays int              `json:"lookbackDays"`
	Assets       []provider.Asset `json:"assets"`
	Stats        Stats            `json:"stats"`
}

// Stats counts assets by how they were produced.
type Stats struct {
	Fresh  int `json:"fresh"`
	Cached int `json:"cached"`
	Stale  int `json:"stale"`
	Failed int `json:"failed"`
}

type Config struct {
	Interval     time.Duration
	Tickers      []string
	CryptoIDs    map[string]string
	LookbackDays int
}

// Runner owns the refresh cadence. Only one cycle runs at a time; the next
// scheduled cycle starts Interval after the previous one finished.
type Runner struct {
	cfg     Config
	fetcher Fetcher
	sinks   []Sink
	log     *logrus.Entry
	now     func() time.Time

	running atomic.Bool
	trigger chan struct{}

	mu     sync.RWMutex
	latest *Snapshot
}

// Option configures a Runner.
type Option func(*Runner)

// WithSinks adds snapshot consumers.
func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

// WithLogger sets the runner logger.
func WithLogger(l *logrus.Entry) Option {
	return func(r *Runner) { r.log = l }
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(cfg Config, fetcher Fetcher, opts ...Option) *Runner {
	cfg.Tickers = aggregate.NormalizeTickers(cfg.Tickers)
	cfg.CryptoIDs = aggregate.NormalizeIDMap(cfg.CryptoIDs)
	r := &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		log:     logrus.NewEntry(logrus.StandardLogger()),
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a cycle immediately and then every Interval after the
// previous cycle completed, until ctx is done. Trigger requests are served
// between scheduled cycles.
func (r *Runner) Run(ctx context.Context) error {
	r.RunOnce(ctx)

	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case <-r.trigger:
		}
		r.RunOnce(ctx)
		timer.Reset(r.cfg.Interval)
	}
}

// Trigger asks Run for an immediate cycle. It returns false when a cycle
// is already running or already requested.
func (r *Runner) Trigger() bool {
	if r.running.Load() {
		return false
	}
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a cycle is in progress.
func (r *Runner) Running() bool { return r.running.Load() }

// RunOnce performs one cycle synchronously. It returns false without doing
// anything when another cycle is in progress.
func (r *Runner) RunOnce(ctx context.Context) bool {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Info("refresh already in progress, skipping")
		return false
	}
	defer r.running.Store(false)

	id := uuid.NewString()
	log := r.log.WithField("cycle_id", id)
	started := r.now()
	log.WithField("tickers", len(r.cfg.Tickers)).Debug("refresh started")

	results := r.fetcher.FetchResults(ctx, r.cfg.Tickers, r.cfg.CryptoIDs, r.cfg.LookbackDays)

	snap := Snapshot{
		CycleID:      id,
		StartedAt:    started,
		FinishedAt:   r.now(),
		LookbackDays: r.cfg.LookbackDays,
		Assets:       make([]provider.Asset, len(results)),
	}
	for i, res := range results {
		snap.Assets[i] = res.Asset
		switch res.Status {
		case provider.StatusFresh:
			snap.Stats.Fresh++
		case provider.StatusCached:
			snap.Stats.Cached++
		case provider.StatusStale:
			snap.Stats.Stale++
		case provider.StatusFailed:
			snap.Stats.Failed++
		}
	}

	r.mu.Lock()
	r.latest = &snap
	r.mu.Unlock()

	log.WithFields(logrus.Fields{
		"fresh":    snap.Stats.Fresh,
		"cached":   snap.Stats.Cached,
		"stale":    snap.Stats.Stale,
		"failed":   snap.Stats.Failed,
		"duration": snap.FinishedAt.Sub(started).String(),
	}).Info("refresh completed")

	for _, s := range r.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			log.WithError(err).Warn("publish snapshot")
		}
	}
	return true
}

// Latest returns the most recent snapshot, if any cycle has completed.
func (r *Runner) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return Snapshot{}, false
	}
	return *r.latest, true
}
