package arduinocloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "status only",
			err:  &APIError{Kind: KindServerError, StatusCode: 500},
			want: "arduinocloud: API error 500 (server_error)",
		},
		{
			name: "with resource and body",
			err:  &APIError{Kind: KindNotFound, StatusCode: 404, ResourceID: "thing-1", Body: "not found"},
			want: "arduinocloud: API error 404 (not_found): resource thing-1: not found",
		},
		{
			name: "with request id",
			err:  &APIError{Kind: KindUnknown, StatusCode: 451, RequestID: "req-1"},
			want: "arduinocloud: API error 451 (unknown) (request_id: req-1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &APIError{Kind: KindNotFound, StatusCode: 404})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrServerError)
	assert.True(t, IsNotFound(err))

	unknown := &APIError{Kind: KindUnknown, StatusCode: 418}
	for _, sentinel := range kindSentinels {
		assert.NotErrorIs(t, unknown, sentinel)
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(&AuthError{Err: &APIError{Kind: KindUnauthorized, StatusCode: 401}})
	assert.True(t, ok)
	assert.Equal(t, KindUnauthorized, kind)

	kind, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, kind)

	_, ok = KindOf(nil)
	assert.False(t, ok)
}

func TestWrappedErrors(t *testing.T) {
	t.Run("auth error", func(t *testing.T) {
		cause := &APIError{Kind: KindUnauthorized, StatusCode: 401}
		err := &AuthError{Err: cause}

		assert.True(t, IsAuthError(err))
		assert.True(t, IsUnauthorized(err))
		assert.Contains(t, err.Error(), "token exchange failed")
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &TransportError{Method: "GET", URL: "https://example.test/x", Err: cause}

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "arduinocloud: GET https://example.test/x failed: connection refused", err.Error())
	})

	t.Run("deserialization error", func(t *testing.T) {
		err := &DeserializationError{Resource: "thing", Body: "{", Err: errors.New("unexpected EOF")}

		assert.True(t, IsDeserialization(err))
		assert.False(t, IsAuthError(err))
		assert.Contains(t, err.Error(), "failed to parse thing")
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(&APIError{Kind: KindTimeout, StatusCode: 408}))
	assert.True(t, IsTimeout(&TransportError{Method: "GET", URL: "u", Err: timeoutErr{}}))
	assert.False(t, IsTimeout(errors.New("nope")))
}

func TestIsCanceled(t *testing.T) {
	assert.True(t, IsCanceled(fmt.Errorf("x: %w", context.Canceled)))
	assert.True(t, IsCanceled(context.DeadlineExceeded))
	assert.False(t, IsCanceled(&APIError{Kind: KindTimeout}))
}

func TestIsRateLimitedAndUnavailable(t *testing.T) {
	require.True(t, IsRateLimited(&APIError{Kind: KindRateLimited, StatusCode: 429}))
	require.True(t, IsUnavailable(&APIError{Kind: KindUnavailable, StatusCode: 503}))
	assert.False(t, IsRateLimited(&APIError{Kind: KindUnavailable, StatusCode: 503}))
}
