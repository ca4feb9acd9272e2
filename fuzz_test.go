package arduinocloud

import (
	"encoding/json"
	"net/http"
	"testing"
)

// FuzzClassify fuzzes the response classifier.
// Run with: go test -fuzz=FuzzClassify
func FuzzClassify(f *testing.F) {
	f.Add(404, []byte("not found"), "123")
	f.Add(429, []byte(`{"error":"slow down"}`), "")
	f.Add(451, []byte{}, "x")
	f.Add(-1, []byte{0xff, 0xfe}, "")

	f.Fuzz(func(t *testing.T, status int, body []byte, retryAfter string) {
		h := http.Header{}
		h.Set("Retry-After", retryAfter)

		err := Classify(status, h, body, "resource")
		if err == nil {
			t.Fatal("Classify returned nil")
		}
		if err.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", err.StatusCode, status)
		}
		if err.Kind != KindForStatus(status) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindForStatus(status))
		}
		if err.RetryAfter < 0 {
			t.Errorf("negative RetryAfter %v", err.RetryAfter)
		}
		_ = err.Error()
	})
}

// FuzzTokenResponseParsing fuzzes token response decoding.
// Run with: go test -fuzz=FuzzTokenResponseParsing
func FuzzTokenResponseParsing(f *testing.F) {
	f.Add([]byte(`{"access_token":"abc","expires_in":300,"token_type":"Bearer"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"expires_in":"soon"}`))
	f.Add([]byte(`null`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic - errors are acceptable
		_, err := decodeResponse[tokenResponse](data, "token response")
		if err != nil && !IsDeserialization(err) {
			t.Errorf("unexpected error type %T", err)
		}
	})
}

// FuzzThingPropertyParsing fuzzes property JSON unmarshaling.
// Run with: go test -fuzz=FuzzThingPropertyParsing
func FuzzThingPropertyParsing(f *testing.F) {
	f.Add([]byte(`[{"id":"p1","name":"temp","last_value":21.5}]`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`[{"last_value":{"lat":1,"lon":2}}]`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var props []ThingProperty
		_ = json.Unmarshal(data, &props)
	})
}
