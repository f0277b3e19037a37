package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"assetfeed/internal/provider"
)

// Coin is the subset of /coins/{id} used for asset metadata.
type Coin struct {
	ID            string      `json:"id"`
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	MarketCapRank *int        `json:"market_cap_rank"`
	MarketData    *MarketData `json:"market_data"`
}

// MarketData holds per-currency figures keyed by lower-case currency code.
type MarketData struct {
	CurrentPrice             map[string]*float64 `json:"current_price"`
	ATH                      map[string]*float64 `json:"ath"`
	ATL                      map[string]*float64 `json:"atl"`
	MarketCap                map[string]*float64 `json:"market_cap"`
	TotalVolume              map[string]*float64 `json:"total_volume"`
	High24h                  map[string]*float64 `json:"high_24h"`
	Low24h                   map[string]*float64 `json:"low_24h"`
	PriceChangePercentage24h *float64            `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64            `json:"circulating_supply"`
	TotalSupply              *float64            `json:"total_supply"`
	MarketCapRank            *int                `json:"market_cap_rank"`
}

// In returns m[currency], or nil when absent.
func In(m map[string]*float64, currency string) *float64 {
	if m == nil {
		return nil
	}
	return m[currency]
}

// Coin retrieves market metadata for id.
func (c *Client) Coin(ctx context.Context, id string) (*Coin, error) {
	query := maps.Clone(c.query)
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")

	u := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, url.PathEscape(id), query.Encode())
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

	var coin Coin
	if err := json.NewDecoder(res.Body).Decode(&coin); err != nil {
		return nil, fmt.Errorf("decoding coin response: %w", err)
	}
	return &coin, nil
}
