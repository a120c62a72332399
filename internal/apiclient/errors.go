package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for 401 responses. The session has already
	// been cleared and the navigator sent to the login view; do not retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRequestFailed matches every *RequestFailedError.
	ErrRequestFailed = errors.New("request failed")
)

// RequestFailedError is a non-2xx, non-401 response.
type RequestFailedError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// failureMessage picks the most useful message out of an error body:
// FastAPI style {"detail": ...}, then {"error": {"message": ...}}, then
// the status line.
func failureMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok && string(raw) != "null" {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				if s != "" {
					return s
				}
			} else {
				return string(raw)
			}
		}
		if raw, ok := payload["error"]; ok {
			var e struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
				return e.Message
			}
		}
	}
	return statusLine(status)
}

func statusLine(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
