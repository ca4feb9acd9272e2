package arduinocloud

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// WithLogger configures a structured logger for the client.
// When set, the client logs token exchanges, cache problems, retries and
// failed API calls.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	client, _ := arduinocloud.NewClient(creds, arduinocloud.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// LoggingTransport wraps an http.RoundTripper and logs every HTTP attempt,
// including the ones the retry policy repeats.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper with logging.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()

	if t.Logger != nil {
		t.Logger.LogAttrs(req.Context(), slog.LevelDebug, "api_request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.Redacted()),
			slog.String("request_id", req.Header.Get(requestIDHeader)),
		)
	}

	resp, err := base.RoundTrip(req)
	duration := time.Since(start)

	if t.Logger == nil {
		return resp, err
	}

	if err != nil {
		t.Logger.LogAttrs(req.Context(), slog.LevelWarn, "api_transport_error",
			slog.String("method", req.Method),
			slog.String("url", req.URL.Redacted()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return resp, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.Logger.LogAttrs(req.Context(), level, "api_response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, err
}

// NewLoggingHTTPClient returns an HTTP client with the default timeout whose
// transport logs through logger. Pass it to WithHTTPClient.
func NewLoggingHTTPClient(logger *slog.Logger) *http.Client {
	hc := defaultHTTPClient()
	hc.Transport = &LoggingTransport{Base: hc.Transport, Logger: logger}
	return hc
}

// logRetry records a scheduled retry at warn level.
func (c *Client) logRetry(ctx context.Context, attempt RetryAttempt) {
	if c.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.Int("attempt", attempt.Attempt),
		slog.String("reason", attempt.Reason),
		slog.Duration("wait", attempt.Wait),
	}
	if attempt.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status", attempt.StatusCode))
	}
	if attempt.Err != nil {
		attrs = append(attrs, slog.String("error", attempt.Err.Error()))
	}

	c.logger.LogAttrs(ctx, slog.LevelWarn, "api_retry", attrs...)
}

// logAPIError records a call that ended with a non-2xx response.
func (c *Client) logAPIError(ctx context.Context, path, requestID string, err error) {
	if c.logger == nil {
		return
	}

	level := slog.LevelWarn
	attrs := []slog.Attr{
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.String("error", err.Error()),
	}
	if kind, ok := KindOf(err); ok {
		attrs = append(attrs, slog.String("kind", kind.String()))
		if kind == KindServerError || kind == KindUnavailable {
			level = slog.LevelError
		}
	}

	c.logger.LogAttrs(ctx, level, "api_error", attrs...)
}
