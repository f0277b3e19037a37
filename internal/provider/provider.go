package provider

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the instrument class of an Asset.
type Kind string

const (
	KindCrypto Kind = "crypto"
	KindStock  Kind = "stock"
	KindETF    Kind = "etf"
)

// Asset is the normalized record produced for every requested ticker.
// Numeric fields a provider does not report stay at zero.
type Asset struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name,omitempty"`
	Kind              Kind      `json:"kind"`
	Currency          string    `json:"currency,omitempty"`
	Price             float64   `json:"price"`
	Change            float64   `json:"change"`
	Change24h         float64   `json:"change24h"`
	History           []float64 `json:"history"`
	Timestamps        []int64   `json:"timestamps,omitempty"`
	Open              float64   `json:"open"`
	High              float64   `json:"high"`
	Low               float64   `json:"low"`
	High52w           float64   `json:"high52w"`
	Low52w            float64   `json:"low52w"`
	ATH               float64   `json:"ath,omitempty"`
	ATL               float64   `json:"atl,omitempty"`
	MarketCap         float64   `json:"marketCap"`
	Volume            float64   `json:"volume"`
	AvgVolume         float64   `json:"avgVolume"`
	CirculatingSupply float64   `json:"circulatingSupply"`
	TotalSupply       float64   `json:"totalSupply"`
	Rank              int       `json:"rank,omitempty"`
	PE                float64   `json:"pe,omitempty"`
	FromCache         bool      `json:"fromCache"`
	Error             bool      `json:"error"`
	FetchedAt         int64     `json:"fetchedAt"`
}

// Clone returns a deep copy so cached slices are never shared with callers.
func (a Asset) Clone() Asset {
	out := a
	if a.History != nil {
		out.History = append([]float64(nil), a.History...)
	}
	if a.Timestamps != nil {
		out.Timestamps = append([]int64(nil), a.Timestamps...)
	}
	return out
}

// Normalize keeps history non-empty and drops timestamps that do not line
// up with it. Negative or non-finite prices and non-finite changes become 0.
func (a *Asset) Normalize() {
	if len(a.History) == 0 {
		a.History = []float64{0}
	}
	if len(a.Timestamps) != len(a.History) {
		a.Timestamps = nil
	}
	if a.Price < 0 || !Finite(a.Price) {
		a.Price = 0
	}
	if !Finite(a.Change) {
		a.Change = 0
	}
	if !Finite(a.Change24h) {
		a.Change24h = 0
	}
}

// Placeholder is the zero-valued record returned when neither a fetch nor
// the cache produced data for symbol.
func Placeholder(symbol string, kind Kind, now time.Time) Asset {
	return Asset{
		Symbol:    symbol,
		Kind:      kind,
		History:   []float64{0},
		Error:     true,
		FetchedAt: now.UnixMilli(),
	}
}

// Status tags how a Result was produced.
type Status int

const (
	// StatusFresh: fetched from the provider during this call.
	StatusFresh Status = iota
	// StatusCached: served from a cache entry still inside its TTL.
	StatusCached
	// StatusStale: the fetch failed and an expired cache entry was served.
	StatusStale
	// StatusFailed: the fetch failed and nothing was cached; Asset is a placeholder.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusCached:
		return "cached"
	case StatusStale:
		return "stale"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of fetching one asset.
type Result struct {
	Status Status
	Asset  Asset
	// Err is the failure behind a Stale or Failed result.
	Err error
}

// Fresh wraps a freshly fetched asset.
func Fresh(a Asset) Result { return Result{Status: StatusFresh, Asset: a} }

// Cached wraps a valid cache hit.
func Cached(a Asset) Result {
	a.FromCache = true
	return Result{Status: StatusCached, Asset: a}
}

// Stale wraps the last cached asset served after a failed fetch.
func Stale(a Asset, err error) Result {
	a.FromCache = true
	a.Error = true
	return Result{Status: StatusStale, Asset: a, Err: err}
}

// Failed wraps a placeholder after a failed fetch with no cache to fall back to.
func Failed(a Asset, err error) Result {
	a.FromCache = false
	a.Error = true
	return Result{Status: StatusFailed, Asset: a, Err: err}
}

// PercentChange returns (current-base)/base*100, or 0 when base is not
// positive or either input is not a finite number.
func PercentChange(current, base float64) float64 {
	if base <= 0 || !Finite(base) || !Finite(current) {
		return 0
	}
	cur := decimal.NewFromFloat(current)
	b := decimal.NewFromFloat(base)
	pct, _ := cur.Sub(b).Div(b).Mul(decimal.NewFromInt(100)).Float64()
	if !Finite(pct) {
		return 0
	}
	return pct
}

// MinMax returns the smallest and largest value of xs, or zeros when xs is empty.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Deref returns *p, or 0 for nil and non-finite values.
func Deref(p *float64) float64 {
	if p == nil || !Finite(*p) {
		return 0
	}
	return *p
}
