package coingecko

import (
	"net/http"
	"net/url"

	"assetfeed/internal/provider"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"

	// DefaultKeyHeader carries the demo-plan API key.
	DefaultKeyHeader = "x-cg-demo-api-key"
)

// Client is a client for the CoinGecko API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient performs requests; usually a retrying, rate-limited fetcher.
	httpClient provider.HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// currency is the vs_currency all prices are quoted in.
	currency  string
	keyHeader string
}

// ClientOption is a configuration option for the CoinGecko client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient provider.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithCurrency sets the quote currency (default "usd").
func WithCurrency(currency string) ClientOption {
	return func(c *Client) {
		if currency != "" {
			c.currency = currency
		}
	}
}

// WithKeyHeader sets the header name the API key is sent in. Pro plans
// use x-cg-pro-api-key.
func WithKeyHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.keyHeader = name
		}
	}
}

// NewClient creates a new CoinGecko client. The key is optional; the
// public API works without one at a lower quota.
func NewClient(key string, options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		currency:   "usd",
		keyHeader:  DefaultKeyHeader,
	}
	for _, option := range options {
		option(client)
	}
	if key != "" {
		client.header.Set(client.keyHeader, key)
	}
	return client, nil
}

// Currency returns the vs_currency prices are quoted in.
func (c *Client) Currency() string { return c.currency }
