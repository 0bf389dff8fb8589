package fallback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// RetryService wraps a FallbackService with exponential backoff on
// transient failures. The resolver still sees a single attempt.
type RetryService struct {
	inner      ports.FallbackService
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// WithRetry wraps s. maxRetries <= 0 uses 3.
func WithRetry(s ports.FallbackService, maxRetries int) *RetryService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryService{
		inner:      s,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   30 * time.Second,
	}
}

// Name reports the wrapped provider's name when it has one.
func (r *RetryService) Name() string {
	if n, ok := r.inner.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "fallback"
}

// Query calls the wrapped service until it succeeds, fails permanently, or
// runs out of retries.
func (r *RetryService) Query(ctx context.Context, question string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		answer, err := r.inner.Query(ctx, question)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if !isRetryable(ctx, err) || attempt == r.maxRetries {
			break
		}
		if err := r.backoff(ctx, attempt); err != nil {
			return "", lastErr
		}
	}
	if lastErr != nil && r.maxRetries > 0 && isRetryable(ctx, lastErr) {
		return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
	}
	return "", lastErr
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var te *TransportError
	return errors.As(err, &te)
}

func (r *RetryService) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
