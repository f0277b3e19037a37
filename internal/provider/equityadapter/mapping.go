package equityadapter

import (
	"time"

	"github.com/piquette/finance-go"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/yahoo"
)

// KindOf maps a Yahoo instrument type onto an asset kind.
func KindOf(instrumentType string) provider.Kind {
	if instrumentType == "ETF" {
		return provider.KindETF
	}
	return provider.KindStock
}

// AssetFrom builds the equity asset from a chart response.
func AssetFrom(symbol string, chart *yahoo.ChartResult, now time.Time) provider.Asset {
	meta := chart.Meta
	series := chart.Series()

	history := make([]float64, 0, len(series.Close))
	timestamps := make([]int64, 0, len(series.Close))
	aligned := len(chart.Timestamp) >= len(series.Close)
	for i, c := range series.Close {
		if c == nil || !provider.Finite(*c) {
			continue
		}
		history = append(history, *c)
		if aligned {
			timestamps = append(timestamps, chart.Timestamp[i]*1000)
		}
	}

	a := provider.Asset{
		Symbol:     symbol,
		Name:       meta.LongName,
		Kind:       KindOf(meta.InstrumentType),
		Currency:   meta.Currency,
		History:    history,
		Timestamps: timestamps,
		FetchedAt:  now.UnixMilli(),
	}
	if a.Name == "" {
		a.Name = meta.ShortName
	}

	var first, last float64
	if len(history) > 0 {
		first, last = history[0], history[len(history)-1]
	}

	a.Price = last
	if p := meta.RegularMarketPrice; p != nil && provider.Finite(*p) {
		a.Price = *p
	}

	prevClose := first
	switch {
	case valid(meta.PreviousClose):
		prevClose = *meta.PreviousClose
	case valid(meta.ChartPreviousClose):
		prevClose = *meta.ChartPreviousClose
	}
	a.Change = provider.PercentChange(a.Price, prevClose)
	a.Change24h = a.Change

	a.Open = prevClose
	if o, ok := lastValid(series.Open); ok {
		a.Open = o
	}

	a.Low, a.High = provider.MinMax(history)
	if valid(meta.RegularMarketDayHigh) {
		a.High = *meta.RegularMarketDayHigh
	}
	if valid(meta.RegularMarketDayLow) {
		a.Low = *meta.RegularMarketDayLow
	}
	a.High52w = provider.Deref(meta.FiftyTwoWeekHigh)
	a.Low52w = provider.Deref(meta.FiftyTwoWeekLow)

	if valid(meta.RegularMarketVolume) {
		a.Volume = *meta.RegularMarketVolume
	} else if v, ok := lastValid(series.Volume); ok {
		a.Volume = v
	}

	a.Normalize()
	return a
}

// ApplyQuote overrides chart-derived defaults with the quote's fundamentals.
// Zero quote fields leave the asset untouched.
func ApplyQuote(a *provider.Asset, q *finance.Equity) {
	if q == nil {
		return
	}
	if q.MarketCap > 0 {
		a.MarketCap = float64(q.MarketCap)
	}
	switch {
	case q.TrailingPE > 0 && provider.Finite(q.TrailingPE):
		a.PE = q.TrailingPE
	case q.ForwardPE > 0 && provider.Finite(q.ForwardPE):
		a.PE = q.ForwardPE
	}
	if q.AverageDailyVolume3Month > 0 {
		a.AvgVolume = float64(q.AverageDailyVolume3Month)
	}
	if q.FiftyTwoWeekHigh > 0 {
		a.High52w = q.FiftyTwoWeekHigh
	}
	if q.FiftyTwoWeekLow > 0 {
		a.Low52w = q.FiftyTwoWeekLow
	}
	if q.RegularMarketOpen > 0 {
		a.Open = q.RegularMarketOpen
	}
	if a.Name == "" {
		a.Name = q.LongName
	}
}

func valid(p *float64) bool { return p != nil && provider.Finite(*p) && *p > 0 }

func lastValid(xs []*float64) (float64, bool) {
	for i := len(xs) - 1; i >= 0; i-- {
		if xs[i] != nil && provider.Finite(*xs[i]) {
			return *xs[i], true
		}
	}
	return 0, false
}
