package cryptoadapter

import (
	"time"

	"assetfeed/internal/provider"
	"assetfeed/internal/provider/coingecko"
)

// Detail is the coin metadata kept in the long-TTL cache. Nil fields were
// not reported.
type Detail struct {
	Name              string   `json:"name,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Change24h         *float64 `json:"change24h,omitempty"`
	High24h           *float64 `json:"high24h,omitempty"`
	Low24h            *float64 `json:"low24h,omitempty"`
	ATH               *float64 `json:"ath,omitempty"`
	ATL               *float64 `json:"atl,omitempty"`
	MarketCap         *float64 `json:"marketCap,omitempty"`
	Volume            *float64 `json:"volume,omitempty"`
	CirculatingSupply *float64 `json:"circulatingSupply,omitempty"`
	TotalSupply       *float64 `json:"totalSupply,omitempty"`
	Rank              *int     `json:"rank,omitempty"`
}

// DetailFrom extracts the currency-specific figures of coin.
func DetailFrom(coin *coingecko.Coin, currency string) Detail {
	d := Detail{Name: coin.Name, Rank: coin.MarketCapRank}
	md := coin.MarketData
	if md == nil {
		return d
	}
	d.Price = finite(coingecko.In(md.CurrentPrice, currency))
	d.Change24h = finite(md.PriceChangePercentage24h)
	d.High24h = finite(coingecko.In(md.High24h, currency))
	d.Low24h = finite(coingecko.In(md.Low24h, currency))
	d.ATH = finite(coingecko.In(md.ATH, currency))
	d.ATL = finite(coingecko.In(md.ATL, currency))
	d.MarketCap = finite(coingecko.In(md.MarketCap, currency))
	d.Volume = finite(coingecko.In(md.TotalVolume, currency))
	d.CirculatingSupply = finite(md.CirculatingSupply)
	d.TotalSupply = finite(md.TotalSupply)
	if d.Rank == nil {
		d.Rank = md.MarketCapRank
	}
	return d
}

// Series returns the aligned price samples of chart, dropping points with
// a missing or non-finite timestamp or value.
func Series(points []coingecko.Point) (history []float64, timestamps []int64) {
	history = make([]float64, 0, len(points))
	timestamps = make([]int64, 0, len(points))
	for _, p := range points {
		if p.Time == nil || p.Value == nil || !provider.Finite(*p.Time) || !provider.Finite(*p.Value) {
			continue
		}
		history = append(history, *p.Value)
		timestamps = append(timestamps, int64(*p.Time))
	}
	return history, timestamps
}

// AssetFrom builds the crypto asset from a chart and optional detail.
func AssetFrom(symbol, currency string, chart *coingecko.MarketChart, d *Detail, now time.Time) provider.Asset {
	history, timestamps := Series(chart.Prices)
	a := provider.Asset{
		Symbol:     symbol,
		Kind:       provider.KindCrypto,
		Currency:   currency,
		History:    history,
		Timestamps: timestamps,
		FetchedAt:  now.UnixMilli(),
	}

	var first, last float64
	if len(history) > 0 {
		first, last = history[0], history[len(history)-1]
	}
	a.Price = last
	a.Open = first
	a.Low, a.High = provider.MinMax(history)
	a.MarketCap = lastValue(chart.MarketCaps)
	a.Volume = lastValue(chart.TotalVolumes)

	if d != nil {
		a.Name = d.Name
		if d.Price != nil {
			a.Price = *d.Price
		}
		if d.High24h != nil {
			a.High = *d.High24h
		}
		if d.Low24h != nil {
			a.Low = *d.Low24h
		}
		if d.MarketCap != nil {
			a.MarketCap = *d.MarketCap
		}
		if d.Volume != nil {
			a.Volume = *d.Volume
		}
		a.Change24h = provider.Deref(d.Change24h)
		a.ATH = provider.Deref(d.ATH)
		a.ATL = provider.Deref(d.ATL)
		a.CirculatingSupply = provider.Deref(d.CirculatingSupply)
		a.TotalSupply = provider.Deref(d.TotalSupply)
		if d.Rank != nil {
			a.Rank = *d.Rank
		}
	}

	a.Change = provider.PercentChange(a.Price, first)
	a.Normalize()
	return a
}

func lastValue(points []coingecko.Point) float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if v := points[i].Value; v != nil && provider.Finite(*v) {
			return *v
		}
	}
	return 0
}

func finite(p *float64) *float64 {
	if p == nil || !provider.Finite(*p) {
		return nil
	}
	return p
}
