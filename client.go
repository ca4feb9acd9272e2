package arduinocloud

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the Arduino Cloud API base URL.
	DefaultBaseURL = "https://api2.arduino.cc"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Client is an Arduino IoT Cloud API client.
type Client struct {
	baseURL       string
	tokenURL      string
	audience      string
	httpClient    *http.Client
	retryConfig   *RetryConfig
	backoff       Backoff
	condition     RetryCondition
	retryHook     RetryHook
	tokenCache    TokenCache
	tokenLifetime time.Duration
	logger        *slog.Logger
	metrics       *Metrics
	now           func() time.Time

	retry  *RetryPolicy
	tokens *TokenStore
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTokenURL sets a custom token endpoint.
func WithTokenURL(url string) Option {
	return func(c *Client) {
		c.tokenURL = url
	}
}

// WithAudience sets the audience sent with the token request.
func WithAudience(audience string) Option {
	return func(c *Client) {
		c.audience = audience
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = defaultHTTPClient()
		}
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry budget and backoff schedule.
// A nil config disables retries.
func WithRetry(config *RetryConfig) Option {
	return func(c *Client) {
		if config == nil {
			config = &RetryConfig{MaxAttempts: 1}
		}
		c.retryConfig = config
	}
}

// WithBackoff replaces the backoff schedule derived from the RetryConfig.
//
// Example:
//
//	client, _ := arduinocloud.NewClient(creds,
//	    arduinocloud.WithBackoff(arduinocloud.Constant(2*time.Second)),
//	)
func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// WithRetryCondition replaces DefaultRetryCondition.
func WithRetryCondition(cond RetryCondition) Option {
	return func(c *Client) {
		c.condition = cond
	}
}

// WithRetryHook sets a callback invoked before every retry wait, for both
// resource calls and token exchanges.
func WithRetryHook(hook RetryHook) Option {
	return func(c *Client) {
		c.retryHook = hook
	}
}

// WithTokenCache sets the durable token cache. Without it tokens live only
// in memory.
func WithTokenCache(cache TokenCache) Option {
	return func(c *Client) {
		c.tokenCache = cache
	}
}

// WithTokenLifetime sets how long a fresh token is trusted when the token
// response carries no expires_in.
func WithTokenLifetime(d time.Duration) Option {
	return func(c *Client) {
		c.tokenLifetime = d
	}
}

// WithMetrics records request, retry and token metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new Arduino Cloud API client.
// Returns ErrEmptyClientID or ErrEmptyClientSecret if a credential is missing.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:       DefaultBaseURL,
		tokenURL:      DefaultTokenURL,
		audience:      DefaultAudience,
		retryConfig:   DefaultRetryConfig(),
		tokenLifetime: DefaultTokenLifetime,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = defaultHTTPClient()
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("arduinocloud: invalid base URL: %w", err)
	}
	if _, err := url.Parse(c.tokenURL); err != nil {
		return nil, fmt.Errorf("arduinocloud: invalid token URL: %w", err)
	}
	if c.tokenLifetime <= 0 {
		c.tokenLifetime = DefaultTokenLifetime
	}

	c.retry = NewRetryPolicy(c.retryConfig)
	if c.backoff != nil {
		c.retry.Backoff = c.backoff
	}
	if c.condition != nil {
		c.retry.Condition = c.condition
	}
	c.retry.OnRetry = c.onRetry

	c.tokens = &TokenStore{
		creds:      creds,
		tokenURL:   c.tokenURL,
		audience:   c.audience,
		lifetime:   c.tokenLifetime,
		httpClient: c.httpClient,
		retry:      c.retry,
		cache:      c.tokenCache,
		logger:     c.logger,
		metrics:    c.metrics,
		now:        c.now,
	}

	return c, nil
}

// NewTokenStore creates a standalone TokenStore with the token-related
// options of a Client (token URL, audience, HTTP client, retry, cache,
// lifetime, logger, metrics).
func NewTokenStore(creds Credentials, opts ...Option) (*TokenStore, error) {
	c, err := NewClient(creds, opts...)
	if err != nil {
		return nil, err
	}
	return c.tokens, nil
}

// defaultHTTPClient returns the default HTTP client configuration
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
}

// TokenStore returns the store that owns this client's access token.
func (c *Client) TokenStore() *TokenStore {
	return c.tokens
}

// onRetry logs and counts a retry, then calls the user hook.
func (c *Client) onRetry(ctx context.Context, attempt RetryAttempt) {
	c.metrics.retry(attempt.Reason)
	c.logRetry(ctx, attempt)
	if c.retryHook != nil {
		c.retryHook(ctx, attempt)
	}
}

// get performs an authenticated GET and returns the response body.
// endpoint names the operation for metrics; resourceID is attached to a
// NotFound error.
func (c *Client) get(ctx context.Context, endpoint, path, resourceID string) ([]byte, error) {
	start := time.Now()

	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	requestID := uuid.NewString()

	resp, err := c.retry.Execute(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set(requestIDHeader, requestID)
		return c.httpClient.Do(req)
	})
	if err != nil {
		c.metrics.observeRequest(endpoint, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("arduinocloud: GET %s canceled: %w", path, ctxErr)
		}
		return nil, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}

	c.metrics.observeRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := ClassifyResponse(resp, resourceID)
		c.logAPIError(ctx, path, requestID, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: reqURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, nil
}
