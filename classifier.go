package arduinocloud

import (
	"bytes"
	"io"
	"net/http"
)

// maxErrorBodySize caps how much of a failed response body is kept as detail.
const maxErrorBodySize = 64 << 10

var statusKinds = map[int]ErrorKind{
	http.StatusNotFound:             KindNotFound,
	http.StatusInternalServerError:  KindServerError,
	http.StatusServiceUnavailable:   KindUnavailable,
	http.StatusBadRequest:           KindBadRequest,
	http.StatusUnauthorized:         KindUnauthorized,
	http.StatusForbidden:            KindForbidden,
	http.StatusRequestTimeout:       KindTimeout,
	http.StatusConflict:             KindConflict,
	http.StatusGone:                 KindGone,
	http.StatusUnsupportedMediaType: KindUnsupportedMedia,
	http.StatusTooManyRequests:      KindRateLimited,
}

// KindForStatus maps an HTTP status code to its ErrorKind.
// Unmapped codes yield KindUnknown.
func KindForStatus(statusCode int) ErrorKind {
	if kind, ok := statusKinds[statusCode]; ok {
		return kind
	}
	return KindUnknown
}

// Classify builds the error for an unsuccessful response.
// The body is kept as text and is not parsed; the API does not guarantee
// an error schema. resourceID is only attached to NotFound errors.
func Classify(statusCode int, header http.Header, body []byte, resourceID string) *APIError {
	apiErr := &APIError{
		Kind:       KindForStatus(statusCode),
		StatusCode: statusCode,
		Body:       string(bytes.TrimSpace(body)),
	}
	if apiErr.Kind == KindNotFound {
		apiErr.ResourceID = resourceID
	}
	if header != nil {
		apiErr.RequestID = header.Get(requestIDHeader)
		if apiErr.Kind == KindRateLimited || apiErr.Kind == KindUnavailable {
			apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
		}
	}
	return apiErr
}

// ClassifyResponse reads the body of a non-2xx response and classifies it.
// The response body is consumed and closed. It must not be called for
// successful responses.
func ClassifyResponse(resp *http.Response, resourceID string) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		// A truncated body is still useful detail.
		body = append(body, []byte(" [body read error: "+err.Error()+"]")...)
	}

	apiErr := Classify(resp.StatusCode, resp.Header, body, resourceID)
	if apiErr.RequestID == "" && resp.Request != nil {
		apiErr.RequestID = resp.Request.Header.Get(requestIDHeader)
	}
	return apiErr
}
