package aggregate

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"assetfeed/internal/provider"
)

// CryptoFetcher fetches one crypto asset by provider id.
type CryptoFetcher interface {
	Fetch(ctx context.Context, symbol, id string, days int) provider.Result
}

// EquityFetcher fetches one stock or ETF.
type EquityFetcher interface {
	Fetch(ctx context.Context, symbol string, days int) provider.Result
}

// Aggregator routes each ticker to the crypto or equity adapter.
type Aggregator struct {
	crypto CryptoFetcher
	equity EquityFetcher
	log    *logrus.Entry
}

func New(crypto CryptoFetcher, equity EquityFetcher, log *logrus.Entry) *Aggregator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Aggregator{crypto: crypto, equity: equity, log: log}
}

// FetchResults fetches every ticker strictly one after another. A ticker
// present in idMap is crypto, anything else is an equity. The output has
// the same length and order as tickers.
func (a *Aggregator) FetchResults(ctx context.Context, tickers []string, idMap map[string]string, days int) []provider.Result {
	out := make([]provider.Result, 0, len(tickers))
	for _, t := range tickers {
		start := time.Now()
		var res provider.Result
		if id, ok := idMap[t]; ok {
			res = a.crypto.Fetch(ctx, t, id, days)
		} else {
			res = a.equity.Fetch(ctx, t, days)
		}
		a.log.WithFields(logrus.Fields{
			"symbol":  t,
			"status":  res.Status.String(),
			"elapsed": time.Since(start).String(),
		}).Debug("asset fetched")
		out = append(out, res)
	}
	return out
}

// FetchAll is FetchResults without the status tags.
func (a *Aggregator) FetchAll(ctx context.Context, tickers []string, idMap map[string]string, days int) []provider.Asset {
	results := a.FetchResults(ctx, tickers, idMap, days)
	out := make([]provider.Asset, len(results))
	for i, r := range results {
		out[i] = r.Asset
	}
	return out
}

// Counts tallies results per status.
func Counts(results []provider.Result) map[provider.Status]int {
	c := make(map[provider.Status]int, 4)
	for _, r := range results {
		c[r.Status]++
	}
	return c
}

// NormalizeTicker trims and upper-cases a ticker.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeTickers normalizes tickers and drops empty and repeated ones,
// keeping first-seen order.
func NormalizeTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		n := NormalizeTicker(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NormalizeIDMap upper-cases the symbol keys and trims the provider ids.
func NormalizeIDMap(ids map[string]string) map[string]string {
	out := make(map[string]string, len(ids))
	for sym, id := range ids {
		id = strings.TrimSpace(id)
		if n := NormalizeTicker(sym); n != "" && id != "" {
			out[n] = id
		}
	}
	return out
}

// BySymbol indexes assets by normalized symbol. For repeated symbols the
// later entry wins.
func BySymbol(assets []provider.Asset) map[string]provider.Asset {
	m := make(map[string]provider.Asset, len(assets))
	for _, a := range assets {
		m[NormalizeTicker(a.Symbol)] = a
	}
	return m
}

// Symbols returns the sorted symbols of assets.
func Symbols(assets []provider.Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Symbol)
	}
	sort.Strings(out)
	return out
}
