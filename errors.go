package arduinocloud

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the Arduino Cloud client.
// All errors are defined here for easy discovery and consistent organization.
var (
	// Credential errors
	ErrEmptyClientID     = errors.New("arduinocloud: client ID cannot be empty")
	ErrEmptyClientSecret = errors.New("arduinocloud: client secret cannot be empty")
	ErrEmptyAccessToken  = errors.New("arduinocloud: token response did not contain an access token")

	// Token cache errors
	ErrTokenCacheMiss = errors.New("arduinocloud: no token in cache")

	// Validation errors
	ErrEmptyThingID    = errors.New("arduinocloud: thing ID cannot be empty")
	ErrEmptyPropertyID = errors.New("arduinocloud: property ID cannot be empty")
	ErrEmptyDeviceID   = errors.New("arduinocloud: device ID cannot be empty")

	// Classified API errors. An *APIError matches exactly one of these with errors.Is.
	ErrNotFound         = errors.New("arduinocloud: resource not found")
	ErrServerError      = errors.New("arduinocloud: internal server error")
	ErrUnavailable      = errors.New("arduinocloud: service unavailable")
	ErrBadRequest       = errors.New("arduinocloud: bad request")
	ErrUnauthorized     = errors.New("arduinocloud: unauthorized")
	ErrForbidden        = errors.New("arduinocloud: forbidden")
	ErrTimeout          = errors.New("arduinocloud: request timeout")
	ErrConflict         = errors.New("arduinocloud: conflict")
	ErrGone             = errors.New("arduinocloud: resource gone")
	ErrUnsupportedMedia = errors.New("arduinocloud: unsupported media type")
	ErrRateLimited      = errors.New("arduinocloud: rate limited (too many requests)")
)

// ErrorKind identifies the class of a failed API response.
type ErrorKind int

// Error kinds produced by the response classifier.
const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindServerError
	KindUnavailable
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindTimeout
	KindConflict
	KindGone
	KindUnsupportedMedia
	KindRateLimited
)

var kindNames = map[ErrorKind]string{
	KindUnknown:          "unknown",
	KindNotFound:         "not_found",
	KindServerError:      "server_error",
	KindUnavailable:      "unavailable",
	KindBadRequest:       "bad_request",
	KindUnauthorized:     "unauthorized",
	KindForbidden:        "forbidden",
	KindTimeout:          "timeout",
	KindConflict:         "conflict",
	KindGone:             "gone",
	KindUnsupportedMedia: "unsupported_media",
	KindRateLimited:      "rate_limited",
}

var kindSentinels = map[ErrorKind]error{
	KindNotFound:         ErrNotFound,
	KindServerError:      ErrServerError,
	KindUnavailable:      ErrUnavailable,
	KindBadRequest:       ErrBadRequest,
	KindUnauthorized:     ErrUnauthorized,
	KindForbidden:        ErrForbidden,
	KindTimeout:          ErrTimeout,
	KindConflict:         ErrConflict,
	KindGone:             ErrGone,
	KindUnsupportedMedia: ErrUnsupportedMedia,
	KindRateLimited:      ErrRateLimited,
}

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// APIError represents an unsuccessful response from the Arduino Cloud API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	// Body is the raw response body text, kept for diagnostics only.
	Body string
	// ResourceID is set for NotFound errors when the caller knew which resource it asked for.
	ResourceID string
	RequestID  string
	// RetryAfter is the server-suggested wait from the Retry-After header, zero if absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("arduinocloud: API error %d (%s)", e.StatusCode, e.Kind)
	if e.ResourceID != "" {
		msg += ": resource " + e.ResourceID
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.RequestID != "" {
		msg += " (request_id: " + e.RequestID + ")"
	}
	return msg
}

// Is allows errors.Is() to match the sentinel error of the kind.
func (e *APIError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// TransportError is returned when the request never produced an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("arduinocloud: %s %s failed: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeserializationError is returned when a successful response body does not
// match the expected shape. It is never retried.
type DeserializationError struct {
	Resource string
	Body     string
	Err      error
}

// Error implements the error interface.
func (e *DeserializationError) Error() string {
	return fmt.Sprintf("arduinocloud: failed to parse %s: %v (body: %s)", e.Resource, e.Err, e.Body)
}

// Unwrap returns the JSON decoding error.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// AuthError is returned when the client credentials could not be exchanged
// for an access token.
type AuthError struct {
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return "arduinocloud: token exchange failed: " + e.Err.Error()
}

// Unwrap returns the cause, usually an *APIError or *TransportError.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of the first *APIError in err's chain.
// The second return value is false if err carries no classified API error.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindUnknown, false
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnavailable returns true if the service reported itself unavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsAuthError returns true if the error came from the token exchange.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsDeserialization returns true if a response body could not be decoded.
func IsDeserialization(err error) bool {
	var decErr *DeserializationError
	return errors.As(err, &decErr)
}

// IsCanceled returns true if the call was abandoned because its context
// was cancelled or its deadline passed.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsTimeout returns true if the error indicates a network timeout or a
// 408 response.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
