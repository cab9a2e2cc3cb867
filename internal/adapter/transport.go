package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hoopsync/internal/cache"
	"hoopsync/internal/ratelimit"
)

// Transport is the shared rate-limited, retrying, cache-aware HTTP client
// every source adapter is built on (grounded on the teacher's
// client.Client.get retry/backoff loop, extended with the response cache
// from spec.md §4.3).
type Transport struct {
	httpClient *http.Client
	baseURL    string
	source     string
	limiter    ratelimit.Limiter
	cacheStore cache.Store
	maxRetries int
	retryDelay time.Duration
}

// NewTransport builds a Transport for one source.
func NewTransport(source, baseURL string, timeout time.Duration, maxRetries int, limiter ratelimit.Limiter, cacheStore cache.Store) *Transport {
	return &Transport{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		source:     source,
		limiter:    limiter,
		cacheStore: cacheStore,
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

// FetchResult carries the response body plus whether it changed since the
// last fetch of the same (endpoint, params) signature.
type FetchResult struct {
	Body    []byte
	Changed bool
	Hash    string
}

// Get performs a rate-limited, retried GET and runs the result through the
// response cache. Transient failures (timeout, 5xx) retry with exponential
// backoff up to maxRetries; 4xx failures are permanent and returned
// immediately as a structured error.
func (t *Transport) Get(ctx context.Context, endpoint string, params url.Values, ttl time.Duration, forceBypassCache bool) (FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := t.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().Str("source", t.source).Str("endpoint", endpoint).Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying adapter request")
			select {
			case <-ctx.Done():
				return FetchResult{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := t.limiter.Wait(ctx); err != nil {
			return FetchResult{}, fmt.Errorf("adapter %s: rate limit wait: %w", t.source, err)
		}

		body, status, err := t.doRequest(ctx, endpoint, params)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case status == http.StatusOK:
			cacheKey := cache.Key(t.source, endpoint, params.Encode())
			changed, hash, err := t.cacheStore.Changed(ctx, cacheKey, body, ttl, forceBypassCache)
			if err != nil {
				return FetchResult{}, fmt.Errorf("adapter %s: cache check: %w", t.source, err)
			}
			return FetchResult{Body: body, Changed: changed, Hash: hash}, nil
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = errors.Newf("adapter %s: retryable status %d from %s", t.source, status, endpoint)
			continue
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return FetchResult{}, errors.Newf("adapter %s: authentication failed (status %d)", t.source, status)
		default:
			return FetchResult{}, errors.Newf("adapter %s: permanent failure (status %d) from %s", t.source, status, endpoint)
		}
	}
	return FetchResult{}, fmt.Errorf("adapter %s: exhausted retries: %w", t.source, lastErr)
}

func (t *Transport) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	u := t.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hoopsync/1.0")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// WithHeader configures an Authorization-style header sent with every
// request, for sources that key requests by a bearer/API token.
func (t *Transport) WithHeader(key, value string) *Transport {
	t.httpClient.Transport = &headerTransport{base: http.DefaultTransport, key: key, value: value}
	return t
}

type headerTransport struct {
	base  http.RoundTripper
	key   string
	value string
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(h.key, h.value)
	return h.base.RoundTrip(req)
}
