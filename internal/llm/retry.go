package llm

import (
	"context"
	"log"
	"time"
)

// Retrier wraps a Provider with bounded exponential-backoff retries against
// transient failures. Fatal errors return immediately; once the attempt
// budget is exhausted the last error is returned to the caller, which treats
// it as a surfaced stage failure.
type Retrier struct {
	Provider   Provider
	MaxRetries int           // retry attempts after the first call
	BaseDelay  time.Duration // backoff is BaseDelay × 2^attempt
}

// Name returns the wrapped provider's identifier.
func (r *Retrier) Name() string { return r.Provider.Name() }

// Ping delegates to the wrapped provider.
func (r *Retrier) Ping(ctx context.Context) error { return r.Provider.Ping(ctx) }

// Generate calls the wrapped provider, retrying transient failures with
// exponential backoff.
func (r *Retrier) Generate(ctx context.Context, req Request) (string, error) {
	delay := r.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := delay * (1 << (attempt - 1))
			log.Printf("llm/retry: %s attempt %d/%d after %v: %v",
				r.Provider.Name(), attempt, r.MaxRetries, wait, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := r.Provider.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !IsTransient(err) {
			return "", err
		}
	}
	return "", lastErr
}
