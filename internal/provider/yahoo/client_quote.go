package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/piquette/finance-go"

	"assetfeed/internal/provider"
)

// ErrNoQuote is returned when the quote response does not list the symbol.
var ErrNoQuote = errors.New("quote response has no result")

// Quote retrieves the equity quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*finance.Equity, error) {
	query := maps.Clone(c.query)
	query.Set("symbols", symbol)

	u := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, query.Encode())
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

	var body struct {
		QuoteResponse struct {
			Result []finance.Equity `json:"result"`
			Error  *APIError        `json:"error"`
		} `json:"quoteResponse"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if body.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, body.QuoteResponse.Error)
	}
	for i := range body.QuoteResponse.Result {
		if body.QuoteResponse.Result[i].Symbol == symbol {
			return &body.QuoteResponse.Result[i], nil
		}
	}
	if len(body.QuoteResponse.Result) == 1 {
		return &body.QuoteResponse.Result[0], nil
	}
	return nil, fmt.Errorf("quote %s: %w", symbol, ErrNoQuote)
}
