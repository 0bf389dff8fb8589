package fallback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// StatusError is a non-200 reply from a provider.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case 429, 500, 502, 503, 504, 529:
		return true
	}
	return false
}

// TransportError is a failed round trip, with a short message for users.
type TransportError struct {
	Msg string
	Err error
}

func (e *TransportError) Error() string { return e.Msg }

func (e *TransportError) Unwrap() error { return e.Err }

func transportError(op string, err error) error {
	return &TransportError{Msg: op + ": " + friendlyTransportError(err), Err: err}
}

func serviceError(provider string, err error) error {
	return &entities.FallbackServiceError{Provider: provider, Err: err}
}

// parseErrorBody extracts a human-readable error from a provider reply.
func parseErrorBody(statusCode int, body []byte) string {
	var errResp struct {
		Error json.RawMessage `json:"error"`
		Msg   string          `json:"msg"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		var s string
		if json.Unmarshal(errResp.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
			Msg     string `json:"msg"`
		}
		if json.Unmarshal(errResp.Error, &obj) == nil {
			if obj.Message != "" {
				return obj.Message
			}
			if obj.Msg != "" {
				return obj.Msg
			}
		}
		if errResp.Msg != "" {
			return errResp.Msg
		}
	}

	switch statusCode {
	case 401:
		return "authentication failed, check your app id"
	case 403:
		return "access denied, your app id may not have the required permissions"
	case 404:
		return "model or endpoint not found"
	case 429:
		return "rate limited, too many requests, please wait"
	case 500:
		return "internal server error on the provider side"
	case 502, 503:
		return "provider service temporarily unavailable"
	}

	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// friendlyTransportError converts common network errors to short messages.
func friendlyTransportError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused (is the service running?)"
	case strings.Contains(msg, "no such host"):
		return "host not found (check the URL)"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "connection timed out"
	case strings.Contains(msg, "EOF"):
		return "connection closed unexpectedly"
	case strings.Contains(msg, "reset by peer"):
		return "connection reset by server"
	}
	return msg
}
