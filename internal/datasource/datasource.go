// Package datasource provides data fetching from the upstream providers
// TickerLens aggregates: an Alpha Vantage-style quotes/fundamentals API, a
// NewsAPI-style article search API, and financial RSS feeds. Each client
// validates and coerces the provider's loosely-typed payloads at the
// boundary before anything downstream assumes a field exists.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Sentinel errors ---

// ErrNotConfigured is returned when a provider has no API key.
var ErrNotConfigured = errors.New("data provider not configured")

// ErrRateLimited is returned when the provider reports its request quota is
// exhausted. Callers should wait and resubmit; the pipeline never retries.
var ErrRateLimited = errors.New("rate limit reached, wait a minute and retry")

// ErrBadSymbol is returned when the provider reports the request needs a
// premium endpoint or the symbol does not exist.
var ErrBadSymbol = errors.New("symbol may require a premium endpoint or be invalid")

// ErrNoQuote is returned when the mandatory quote payload is missing or empty.
var ErrNoQuote = errors.New("no current quote data")

// ErrNoHistory is returned when the mandatory daily series is missing or empty.
var ErrNoHistory = errors.New("no historical data")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the
// response body. The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}
