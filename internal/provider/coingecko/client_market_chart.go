package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	"assetfeed/internal/provider"
)

// Point is one [timestamp, value] pair. Either side is nil when the
// provider sent null or a non-numeric value.
type Point struct {
	Time  *float64 // epoch millis
	Value *float64
}

// MarketChart is the historical series for one coin.
type MarketChart struct {
	Prices       []Point
	MarketCaps   []Point
	TotalVolumes []Point
}

// MarketChart retrieves the price series for id over the last days days.
func (c *Client) MarketChart(ctx context.Context, id string, days int) (*MarketChart, error) {
	query := maps.Clone(c.query)
	query.Set("vs_currency", c.currency)
	query.Set("days", strconv.Itoa(days))

	u := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(id), query.Encode())
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

	// {
	//   "prices": [[1711929600000, 69702.3], [1711933200000, null]],
	//   "market_caps": [[1711929600000, 1.37e12]],
	//   "total_volumes": [[1711929600000, 2.1e10]]
	// }
	var body struct {
		Prices       [][]any `json:"prices"`
		MarketCaps   [][]any `json:"market_caps"`
		TotalVolumes [][]any `json:"total_volumes"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding market chart response: %w", err)
	}

	return &MarketChart{
		Prices:       parsePoints(body.Prices),
		MarketCaps:   parsePoints(body.MarketCaps),
		TotalVolumes: parsePoints(body.TotalVolumes),
	}, nil
}

func parsePoints(raw [][]any) []Point {
	points := make([]Point, 0, len(raw))
	for _, pair := range raw {
		var p Point
		if len(pair) > 0 {
			p.Time = number(pair[0])
		}
		if len(pair) > 1 {
			p.Value = number(pair[1])
		}
		points = append(points, p)
	}
	return points
}

// number returns v as a float when it is a JSON number.
func number(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
