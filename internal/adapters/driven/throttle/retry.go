package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/naiverag/internal/logger"
)

// Verdict classifies a failed attempt.
type Verdict int

const (
	// Permanent errors are returned immediately.
	Permanent Verdict = iota
	// Transient errors (network, 5xx) are retried with backoff.
	Transient
	// RateLimited errors are retried and also open the limiter's backoff window.
	RateLimited
)

// Classifier decides whether an error is worth retrying.
type Classifier func(err error) Verdict

// Policy bounds how a provider call is attempted.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the backoff before the second attempt; it doubles after each.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff.
	MaxDelay time.Duration
	// Timeout bounds each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
}

// DefaultPolicy is three attempts with 500ms, 1s backoff and a 30s
// per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// Caller runs provider calls under a policy and a shared rate limiter.
type Caller struct {
	policy   Policy
	limiter  *RateLimiter
	classify Classifier
}

// NewCaller creates a Caller. A nil limiter disables rate limiting and a
// nil classifier treats every error as permanent.
func NewCaller(policy Policy, limiter *RateLimiter, classify Classifier) *Caller {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if classify == nil {
		classify = func(error) Verdict { return Permanent }
	}
	return &Caller{policy: policy, limiter: limiter, classify: classify}
}

// Do runs fn until it succeeds, fails permanently, runs out of attempts,
// or ctx is done. op names the call in logs and errors.
func (c *Caller) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = c.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		// The caller gave up; do not report its cancellation as a provider fault.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		verdict := c.classify(err)
		if verdict == Permanent {
			return err
		}
		if attempt == c.policy.MaxAttempts {
			break
		}

		delay := c.backoff(attempt)
		if verdict == RateLimited && c.limiter != nil {
			// Other workers sharing the limiter back off too.
			c.limiter.RecordRateLimitError(delay)
		}
		logger.Debug("%s: attempt %d/%d failed (%v), retrying in %s",
			op, attempt, c.policy.MaxAttempts, err, delay)
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, c.policy.MaxAttempts, err)
}

func (c *Caller) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.policy.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()
	return fn(callCtx)
}

// backoff returns BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (c *Caller) backoff(attempt int) time.Duration {
	delay := c.policy.BaseDelay << (attempt - 1)
	if c.policy.MaxDelay > 0 && (delay > c.policy.MaxDelay || delay <= 0) {
		delay = c.policy.MaxDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTimeout reports whether err came from a per-attempt deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
