// Package ratelimit throttles outbound requests to each external source,
// separately for its JSON API surface and any HTML scraping surface
// (spec.md §5). Grounded on scoracle's bdl.Client token-bucket wait and
// extended with an optional Redis-backed distributed variant for running
// more than one worker replica against the same source.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter is satisfied by both the local and distributed implementations.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Local wraps golang.org/x/time/rate for single-replica deployments.
type Local struct {
	limiter *rate.Limiter
}

// NewLocal creates a token-bucket limiter for requestsPerSecond with a burst
// equal to one second's worth of requests, fraction truncated, at least 1.
func NewLocal(requestsPerSecond float64) *Local {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Local{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (l *Local) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Distributed shares a rate budget for a source across every worker replica
// via Redis, using redis_rate's sliding-window algorithm.
type Distributed struct {
	limiter *redis_rate.Limiter
	key     string
	limit   redis_rate.Limit
}

// NewDistributed creates a Redis-backed limiter keyed by source name.
func NewDistributed(client *redis.Client, source string, requestsPerSecond float64) *Distributed {
	rps := int(requestsPerSecond)
	if rps < 1 {
		rps = 1
	}
	return &Distributed{
		limiter: redis_rate.NewLimiter(client),
		key:     "hoopsync:ratelimit:" + source,
		limit:   redis_rate.PerSecond(rps),
	}
}

func (d *Distributed) Wait(ctx context.Context) error {
	for {
		res, err := d.limiter.Allow(ctx, d.key, d.limit)
		if err != nil {
			return fmt.Errorf("rate limit check failed: %w", err)
		}
		if res.Allowed > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(res.RetryAfter):
		}
	}
}

// Registry holds two limiters per source (API and scrape surfaces) since
// the two transports observe different provider rate limits.
type Registry struct {
	api    map[string]Limiter
	scrape map[string]Limiter
}

func NewRegistry() *Registry {
	return &Registry{api: map[string]Limiter{}, scrape: map[string]Limiter{}}
}

func (r *Registry) RegisterAPI(source string, l Limiter)    { r.api[source] = l }
func (r *Registry) RegisterScrape(source string, l Limiter)  { r.scrape[source] = l }

// API returns the API-surface limiter for a source, or a permissive
// fallback if none was registered.
func (r *Registry) API(source string) Limiter {
	if l, ok := r.api[source]; ok {
		return l
	}
	return NewLocal(1)
}

// Scrape returns the scrape-surface limiter for a source.
func (r *Registry) Scrape(source string) Limiter {
	if l, ok := r.scrape[source]; ok {
		return l
	}
	return NewLocal(0.5)
}
