package provider

import "net/http"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=retry_test -destination=retry/mock_http_client_test.go -source=httpclient.go HTTPClient
//go:generate mockgen -package=coingecko_test -destination=coingecko/mock_http_client_test.go -source=httpclient.go HTTPClient
//go:generate mockgen -package=yahoo_test -destination=yahoo/mock_http_client_test.go -source=httpclient.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
