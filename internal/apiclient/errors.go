package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// truncateAt bounds error text going into the activity feed.
const truncateAt = 50

// ConfigurationError means the client cannot make any call at all: the
// endpoint or key is missing. No network attempt is made.
type ConfigurationError struct {
	Missing string // "api_endpoint" or "api_key"
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not configured", e.Missing)
}

func (e *ConfigurationError) UserMessage() string {
	if e.Missing == "api_key" {
		return "API key not configured. Update your settings."
	}
	return "API endpoint not configured. Update your settings."
}

// NetworkError is a transport-level failure: unreachable host, DNS, TLS,
// or a CORS rejection when the API Gateway is misconfigured.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) UserMessage() string {
	return "Network error. Check your API endpoint and CORS settings."
}

// HTTPError is a non-2xx response. Message carries the best-effort
// explanation extracted from a JSON error body, else the truncated raw text.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) UserMessage() string {
	if e.StatusCode == http.StatusForbidden {
		return "Access denied. Check your API key."
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d.", e.StatusCode)
}

// DecodeError means the response body was not valid JSON.
type DecodeError struct {
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON response: %s", e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) UserMessage() string {
	return "Invalid response from server."
}

// UserMessage converts any client error into the transient notification text
// shown to the operator.
func UserMessage(err error) string {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.UserMessage()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.UserMessage()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.UserMessage()
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.UserMessage()
	}
	return err.Error()
}

// Truncate shortens s for the activity feed.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// extractErrorMessage pulls message/error fields out of a JSON error body.
// The upstream lambda answers errors as {"message": ..., "error": ...}.
func extractErrorMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("HTTP error! status: %d", status)
	if len(body) == 0 {
		return fallback
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Truncate(string(body), 100)
	}
	switch {
	case payload.Message != "" && payload.Error != "":
		return fmt.Sprintf("%s (Details: %s)", payload.Message, payload.Error)
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return fallback
	}
}
