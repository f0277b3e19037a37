package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"assetfeed/internal/provider"
)

// Range is a chart lookback window.
type Range string

const (
	Range1d  Range = "1d"
	Range7d  Range = "7d"
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
)

// Interval is the spacing between chart samples.
type Interval string

const (
	Interval1h Interval = "1h"
	Interval1d Interval = "1d"
)

// ErrNoResult is returned when the chart response carries no result.
var ErrNoResult = errors.New("chart response has no result")

// ChartResponse is the top-level container of /v8/finance/chart.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

// APIError is the error object Yahoo embeds in a response body.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Description }

// ChartResult is one symbol's series.
type ChartResult struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"` // epoch seconds
	Indicators Indicators `json:"indicators"`
}

// Meta is the instrument summary attached to a chart.
type Meta struct {
	Currency             string   `json:"currency"`
	Symbol               string   `json:"symbol"`
	InstrumentType       string   `json:"instrumentType"`
	LongName             string   `json:"longName"`
	ShortName            string   `json:"shortName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  *float64 `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
}

type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Quote holds per-sample OHLCV arrays aligned with ChartResult.Timestamp.
// Missing samples are null.
type Quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// Chart retrieves the price series for symbol.
func (c *Client) Chart(ctx context.Context, symbol string, rng Range, interval Interval) (*ChartResult, error) {
	query := maps.Clone(c.query)
	query.Set("range", string(rng))
	query.Set("interval", string(interval))

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	if err := provider.CheckResponse(res); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var body ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, body.Chart.Error)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoResult)
	}
	return &body.Chart.Result[0], nil
}

// Series returns the first quote block, or an empty one.
func (r *ChartResult) Series() Quote {
	if len(r.Indicators.Quote) == 0 {
		return Quote{}
	}
	return r.Indicators.Quote[0]
}
