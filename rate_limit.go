package arduinocloud

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// maxRetryAfterWait caps how long WaitRetryAfter will block.
const maxRetryAfterWait = 5 * time.Minute

// parseRetryAfter parses the Retry-After header value.
// It handles both delta-seconds (e.g., "120") and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	// Try parsing as seconds first (most common)
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP-date (RFC 1123)
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		delta := time.Until(t)
		if delta > 0 {
			return delta
		}
	}

	return 0
}

// WaitRetryAfter waits for the Retry-After duration carried by a
// RateLimited or Unavailable error. It returns immediately if err carries no
// such hint. The wait is capped at five minutes and ends early when ctx is
// done.
//
// The client has already retried internally by the time an error reaches the
// caller; this is for applications that want to try again later.
//
// Example:
//
//	props, err := client.GetThingProperties(ctx, thingID)
//	if arduinocloud.IsRateLimited(err) {
//	    if err := arduinocloud.WaitRetryAfter(ctx, err); err != nil {
//	        return err // Context canceled
//	    }
//	    props, err = client.GetThingProperties(ctx, thingID)
//	}
func WaitRetryAfter(ctx context.Context, err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return nil
	}

	wait := apiErr.RetryAfter
	if wait > maxRetryAfterWait {
		wait = maxRetryAfterWait
	}

	return sleepContext(ctx, wait)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
