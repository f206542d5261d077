package store

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a Querier with a token-bucket limiter. The content
// store is the engine's only I/O-bound dependency, and extraction batches
// can otherwise hammer it with back-to-back queries.
type RateLimitedStore struct {
	inner   Querier
	limiter *rate.Limiter
}

// NewRateLimitedStore caps queries at requestsPerMinute with the given burst.
func NewRateLimitedStore(inner Querier, requestsPerMinute int, burst int) *RateLimitedStore {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedStore{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Query blocks until the limiter admits the request, then delegates.
func (s *RateLimitedStore) Query(ctx context.Context, text string, filters Filters) ([]Chunk, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return s.inner.Query(ctx, text, filters)
}
