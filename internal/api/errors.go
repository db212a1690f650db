package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a client-side failure.
type ErrorKind int

const (
	// KindValidation means the request was rejected locally before any
	// network traffic.
	KindValidation ErrorKind = iota
	// KindNetwork means the transport failed before a response arrived.
	KindNetwork
	// KindServer means the server answered with a non-2xx status.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing the API boundary. Message is
// human-readable and safe to show to the user.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// NewValidationError reports a submission rejected before any I/O.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// newServerError extracts the server's `detail` message from a non-2xx
// body, falling back to a generic message when the body is not the
// expected shape.
func newServerError(statusCode int, body []byte, fallback string) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	msg := fallback
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		msg = payload.Detail
	}
	return &Error{Kind: KindServer, StatusCode: statusCode, Message: msg}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// UserMessage returns the human-readable message for display. Non-API
// errors pass through unchanged.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
