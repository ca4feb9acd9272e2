package arduinocloud

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig configures automatic retry behavior for transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, the first one included (default: 3).
	// Zero or less means a single attempt.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; later waits double (default: 1s).
	BaseDelay time.Duration
	// MaxDelay caps a single wait (default: 30s). Zero means no cap.
	MaxDelay time.Duration
	// Jitter adds up to Jitter*delay of random extra wait, clamped to [0, 1] (default: 0.5).
	Jitter float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      0.5,
	}
}

// Backoff calculates the wait before a retry.
// retry is 0 for the wait after the first failed attempt.
type Backoff interface {
	Delay(retry int) time.Duration
}

// BackoffFunc is an adapter that allows a function to be used as a Backoff.
type BackoffFunc func(retry int) time.Duration

// Delay implements Backoff.
func (f BackoffFunc) Delay(retry int) time.Duration {
	return f(retry)
}

// Constant returns a backoff that always waits the same duration.
func Constant(d time.Duration) Backoff {
	return BackoffFunc(func(int) time.Duration {
		return d
	})
}

// Exponential returns a backoff of base * 2^retry, capped at max when max > 0.
func Exponential(base, max time.Duration) Backoff {
	return BackoffFunc(func(retry int) time.Duration {
		if retry < 0 {
			retry = 0
		}
		var d time.Duration
		if retry > 62 || base > time.Duration(math.MaxInt64>>uint(retry)) {
			d = time.Duration(math.MaxInt64)
		} else {
			d = base << uint(retry)
		}
		if max > 0 && d > max {
			return max
		}
		return d
	})
}

// WithJitter wraps a backoff and adds random extra wait in [0, factor*delay).
// The factor is clamped to [0, 1]; jitter only ever lengthens a wait, so an
// exponential schedule stays non-decreasing.
func WithJitter(factor float64, b Backoff) Backoff {
	if factor > 1 {
		factor = 1
	}
	return BackoffFunc(func(retry int) time.Duration {
		d := b.Delay(retry)
		if factor <= 0 || d <= 0 {
			return d
		}
		extra := time.Duration(rand.Float64() * factor * float64(d))
		if d > time.Duration(math.MaxInt64)-extra {
			return time.Duration(math.MaxInt64)
		}
		return d + extra
	})
}

// capped wraps a backoff so that no single wait exceeds max.
func capped(max time.Duration, b Backoff) Backoff {
	if max <= 0 {
		return b
	}
	return BackoffFunc(func(retry int) time.Duration {
		if d := b.Delay(retry); d < max {
			return d
		}
		return max
	})
}

// RetryAttempt describes a failed attempt that is about to be retried.
type RetryAttempt struct {
	// Attempt is the 1-based number of the attempt that just failed.
	Attempt int
	// Reason is "transport" or "status <code>".
	Reason string
	// StatusCode is zero for transport failures.
	StatusCode int
	Err        error
	// Wait is how long the policy sleeps before the next attempt.
	Wait time.Duration
}

// RetryHook is called before each backoff wait.
type RetryHook func(ctx context.Context, attempt RetryAttempt)

// RetryCondition decides whether an outcome is worth another attempt and
// names the reason for logs and metrics.
type RetryCondition func(resp *http.Response, err error) (retry bool, reason string)

// DefaultRetryCondition retries transport failures and 404, 500 and 503
// responses. 404 is retried because newly created resources can take a
// moment to become visible; it is classified as NotFound only after the
// attempts run out.
func DefaultRetryCondition(resp *http.Response, err error) (bool, string) {
	if err != nil {
		return true, "transport"
	}
	if resp == nil {
		return false, ""
	}
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true, "status " + strconv.Itoa(resp.StatusCode)
	}
	return false, ""
}

// RetryPolicy runs an HTTP operation with retries. It holds no per-call
// state and is safe for concurrent use.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     Backoff
	Condition   RetryCondition
	OnRetry     RetryHook

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy builds a policy from cfg. A nil cfg uses DefaultRetryConfig.
func NewRetryPolicy(cfg *RetryConfig) *RetryPolicy {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     capped(cfg.MaxDelay, WithJitter(cfg.Jitter, Exponential(cfg.BaseDelay, cfg.MaxDelay))),
		Condition:   DefaultRetryCondition,
	}
}

// Execute calls op until it succeeds, fails with a non-retryable outcome, or
// the attempts run out. The last outcome is returned unchanged, including a
// non-2xx response whose body is still unread. Responses that are retried are
// drained and closed.
//
// Context cancellation is terminal: Execute returns ctx.Err() and does not
// count it as a retryable failure.
func (p *RetryPolicy) Execute(ctx context.Context, op func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Exponential(DefaultRetryConfig().BaseDelay, DefaultRetryConfig().MaxDelay)
	}
	condition := p.Condition
	if condition == nil {
		condition = DefaultRetryCondition
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := op(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
		}

		retry, reason := condition(resp, err)
		if !retry || attempt >= maxAttempts {
			return resp, err
		}

		wait := backoff.Delay(attempt - 1)
		if p.OnRetry != nil {
			info := RetryAttempt{Attempt: attempt, Reason: reason, Err: err, Wait: wait}
			if resp != nil {
				info.StatusCode = resp.StatusCode
			}
			p.OnRetry(ctx, info)
		}

		if resp != nil {
			drainAndClose(resp.Body)
		}

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// drainAndClose discards a bounded amount of the body so the connection can
// be reused, then closes it.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodySize))
	_ = body.Close()
}
