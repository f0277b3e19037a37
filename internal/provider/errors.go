package provider

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error classes used by the retry loop and by callers deciding how to degrade.
var (
	// ErrNetwork: no response was received (dial, TLS, timeout, reset).
	ErrNetwork = errors.New("network error")
	// ErrRateLimited: the provider answered 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrServer: the provider answered 5xx.
	ErrServer = errors.New("server error")
	// ErrClient: the provider answered any other 4xx.
	ErrClient = errors.New("client error")
	// ErrCacheCorrupt: the durable cache snapshot could not be parsed.
	ErrCacheCorrupt = errors.New("cache snapshot corrupt")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s -> %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s -> %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Unwrap maps the status code onto its error class.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Code >= 500:
		return ErrServer
	case e.Code >= 400:
		return ErrClient
	}
	return nil
}

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 2 << 10

// CheckResponse returns nil for a 2xx response. Otherwise it consumes and
// closes the body and returns a *StatusError.
func CheckResponse(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	_ = res.Body.Close()
	se := &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(b))}
	if res.Request != nil {
		se.Method = res.Request.Method
		se.URL = res.Request.URL.Redacted()
	}
	return se
}

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer)
}
