package arduinocloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTokenURL is the Arduino Cloud client-credentials token endpoint.
	DefaultTokenURL = "https://api2.arduino.cc/iot/v1/clients/token"

	// DefaultAudience is the audience requested for IoT API tokens.
	DefaultAudience = "https://api2.arduino.cc/iot"

	// DefaultTokenLifetime is how long a fresh token is trusted when the
	// token response does not say.
	DefaultTokenLifetime = 3600 * time.Second

	tokenFlightKey = "access_token"
)

// Token is an access token and the moment it stops being usable.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"tokenExpiration"`
}

// Valid reports whether the token is non-empty and unexpired at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// tokenResponse is the body returned by the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

// Credentials are the OAuth2 client credentials of an Arduino Cloud API key.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// String masks the secret so credentials can be printed safely.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %s, ClientSecret: %s}", c.ClientID, maskSecret(c.ClientSecret))
}

// validate checks that both credential fields are set.
func (c Credentials) validate() error {
	if c.ClientID == "" {
		return ErrEmptyClientID
	}
	if c.ClientSecret == "" {
		return ErrEmptyClientSecret
	}
	return nil
}

// TokenStore owns the current access token. It hands out the in-memory
// token while it is valid, falls back to the durable cache, and otherwise
// exchanges the credentials. Concurrent callers that find no valid token
// share a single exchange.
type TokenStore struct {
	creds      Credentials
	tokenURL   string
	audience   string
	lifetime   time.Duration
	httpClient *http.Client
	retry      *RetryPolicy
	cache      TokenCache
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time

	mu    sync.Mutex
	token Token

	flight singleflight.Group
}

// GetAccessToken returns a valid access token.
//
// Exchange failures are returned as *AuthError after the retry policy has
// run out of attempts. If ctx is done first, the context error is returned;
// an exchange already in flight keeps running for the other callers.
func (s *TokenStore) GetAccessToken(ctx context.Context) (string, error) {
	if token, ok := s.current(); ok {
		s.metrics.tokenCacheHit("memory")
		return token.AccessToken, nil
	}

	ch := s.flight.DoChan(tokenFlightKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("arduinocloud: waiting for access token: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(Token).AccessToken, nil
	}
}

// Current returns the in-memory token and whether it is still valid.
func (s *TokenStore) Current() (Token, bool) {
	return s.current()
}

func (s *TokenStore) current() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token.Valid(s.now())
}

// adopt replaces the in-memory token.
func (s *TokenStore) adopt(token Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// refresh runs inside the single flight.
func (s *TokenStore) refresh(ctx context.Context) (Token, error) {
	// Another flight may have finished between the caller's check and ours.
	if token, ok := s.current(); ok {
		return token, nil
	}

	if token, ok := s.loadCached(ctx); ok {
		s.adopt(token)
		s.metrics.tokenCacheHit("durable")
		s.log(ctx, slog.LevelDebug, "token_cache_hit",
			slog.Time("expires_at", token.ExpiresAt),
		)
		return token, nil
	}

	token, err := s.exchange(ctx)
	if err != nil {
		s.metrics.tokenExchange("error")
		s.log(ctx, slog.LevelError, "token_exchange",
			slog.String("client_id", s.creds.ClientID),
			slog.String("error", err.Error()),
		)
		return Token{}, err
	}

	s.adopt(token)
	s.metrics.tokenExchange("success")
	s.log(ctx, slog.LevelInfo, "token_exchange",
		slog.String("client_id", s.creds.ClientID),
		slog.String("access_token", maskSecret(token.AccessToken)),
		slog.Time("expires_at", token.ExpiresAt),
	)

	s.saveCached(ctx, token)
	return token, nil
}

// loadCached reads the durable cache. Errors are logged and treated as a miss.
func (s *TokenStore) loadCached(ctx context.Context) (Token, bool) {
	if s.cache == nil {
		return Token{}, false
	}

	cached, err := s.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrTokenCacheMiss) {
			s.log(ctx, slog.LevelWarn, "token_cache_error",
				slog.String("op", "load"),
				slog.String("error", err.Error()),
			)
		}
		return Token{}, false
	}

	if !cached.Valid(s.now()) {
		return Token{}, false
	}
	return *cached, true
}

// saveCached writes the durable cache. Errors are logged and ignored.
func (s *TokenStore) saveCached(ctx context.Context, token Token) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, &token); err != nil {
		s.log(ctx, slog.LevelWarn, "token_cache_error",
			slog.String("op", "save"),
			slog.String("error", err.Error()),
		)
	}
}

// exchange trades the client credentials for a new token.
func (s *TokenStore) exchange(ctx context.Context) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)
	form.Set("audience", s.audience)
	encoded := form.Encode()

	resp, err := s.retry.Execute(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return s.httpClient.Do(req)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Token{}, fmt.Errorf("arduinocloud: token request canceled: %w", ctxErr)
		}
		return Token{}, &AuthError{Err: &TransportError{Method: http.MethodPost, URL: s.tokenURL, Err: err}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, &AuthError{Err: ClassifyResponse(resp, "")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, &AuthError{Err: &TransportError{Method: http.MethodPost, URL: s.tokenURL, Err: err}}
	}

	tr, err := decodeResponse[tokenResponse](body, "token response")
	if err != nil {
		return Token{}, &AuthError{Err: err}
	}
	if tr.AccessToken == "" {
		return Token{}, &AuthError{Err: ErrEmptyAccessToken}
	}

	lifetime := s.lifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}

	return Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   s.now().Add(lifetime),
	}, nil
}

func (s *TokenStore) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}
