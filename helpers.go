package arduinocloud

import (
	"encoding/json"
	"strings"
)

// decodeResponse unmarshals JSON data into T, reporting failures as a
// *DeserializationError.
func decodeResponse[T any](data []byte, resourceName string) (T, error) {
	var resp T
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, &DeserializationError{
			Resource: resourceName,
			Body:     truncatePreview(data),
			Err:      err,
		}
	}
	return resp, nil
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// maskSecret keeps the first four characters of a credential for log
// correlation and hides the rest.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8)
}
