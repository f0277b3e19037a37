package yahoo

import (
	"net/http"
	"net/url"

	"assetfeed/internal/provider"
)

const baseURL = "https://query1.finance.yahoo.com"

// Client is a client for the Yahoo Finance chart and quote endpoints.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient performs requests.
	httpClient provider.HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// ClientOption is a configuration option for the Yahoo client.
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

// NewClient creates a new Yahoo Finance client.
func NewClient(options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	// Yahoo rejects requests without a browser-like user agent.
	client.header.Set("User-Agent", "Mozilla/5.0 (compatible; assetfeed/1.0)")
	for _, option := range options {
		option(client)
	}
	return client, nil
}
