// Package fetch provides the shared HTTP plumbing for the platform
// adapters: bounded reads, transient-error retry, and optional response
// caching.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// UserAgent is sent on every upstream request.
const UserAgent = "codetrail/1.0"

// maxBody bounds how much of any upstream response we read.
const maxBody = 1 << 20

// Cacher caches response bodies and collapses concurrent fetches of the
// same key. A nil Cacher disables caching.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// HTTPError represents a non-200 upstream response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// URLToKey converts a URL to a cache key using SHA-256.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// NewClient returns the http.Client the adapters share: short timeout,
// lenient TLS for corporate proxies.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // needed for corporate proxies
		},
	}
}

// Get fetches a URL with retry and, when cache is non-nil, response
// caching. HTTP errors are not cached; only successful bodies are.
func Get(ctx context.Context, cache Cacher, client *http.Client, url string, logger *slog.Logger) ([]byte, error) {
	fetchFn := func(ctx context.Context) ([]byte, error) {
		if logger != nil {
			logger.Debug("cache miss", "url", url)
		}
		return do(ctx, client, url, func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", UserAgent)
			return req, nil
		}, logger)
	}

	if cache == nil {
		return fetchFn(ctx)
	}
	return cache.GetSet(ctx, URLToKey(url), fetchFn, cache.TTL())
}

// PostJSON issues a JSON POST (used by the GraphQL adapter) with retry.
// POST responses are never cached: the body, not the URL, carries the query.
func PostJSON(ctx context.Context, client *http.Client, url string, payload []byte, logger *slog.Logger) ([]byte, error) {
	return do(ctx, client, url, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, logger)
}

func do(ctx context.Context, client *http.Client, url string, build func() (*http.Request, error), logger *slog.Logger) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			req, err := build()
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
			}
			return io.ReadAll(io.LimitReader(resp.Body, maxBody))
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			if logger != nil {
				logger.Debug("retrying request", "attempt", n+1, "url", url, "error", err)
			}
		}),
	)
}

// isRetryable returns true for transient errors. 4xx responses other
// than 429 are permanent.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
