package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the dispatcher can decide whether to
// retry and callers can render a meaningful message.
type ErrorKind string

const (
	KindUnknownProvider   ErrorKind = "unknown_provider"
	KindMissingCredential ErrorKind = "missing_credential"
	KindConfig            ErrorKind = "config"             // invalid agent or provider configuration
	KindTransport         ErrorKind = "transport"          // connect, timeout, DNS, cancellation
	KindHTTP              ErrorKind = "http"               // non-2xx, or an error object in a 2xx body
	KindParse             ErrorKind = "parse"              // malformed response body
	KindStreamInterrupted ErrorKind = "stream_interrupted" // stream ended before its terminal signal
)

// Error is the single error type surfaced by the normalization and dispatch
// layers. StatusCode and Body are populated when an HTTP response was read.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	Body       string    `json:"body,omitempty"`
	Err        error     `json:"-"`
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrUnknownProvider   = &Error{Kind: KindUnknownProvider, Message: "unknown provider"}
	ErrMissingCredential = &Error{Kind: KindMissingCredential, Message: "missing credential"}
	ErrConfig            = &Error{Kind: KindConfig, Message: "invalid configuration"}
	ErrTransport         = &Error{Kind: KindTransport, Message: "transport error"}
	ErrHTTP              = &Error{Kind: KindHTTP, Message: "http error"}
	ErrParse             = &Error{Kind: KindParse, Message: "parse error"}
	ErrStreamInterrupted = &Error{Kind: KindStreamInterrupted, Message: "stream interrupted"}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrParse)
// works for every parse failure regardless of its message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Retryable reports whether the dispatcher may retry the call that produced e.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	return e.Kind == KindTransport || e.Kind == KindHTTP
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error of the given kind around cause.
func WrapError(kind ErrorKind, cause error, message string) *Error {
	if cause != nil && message == "" {
		message = cause.Error()
	} else if cause != nil {
		message = message + ": " + cause.Error()
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

// HTTPError builds a KindHTTP error preserving the status code and body.
func HTTPError(status int, body string) *Error {
	message := body
	if message == "" {
		message = fmt.Sprintf("unexpected HTTP status %d", status)
	}
	return &Error{Kind: KindHTTP, Message: message, StatusCode: status, Body: body}
}

// AsError extracts an *Error from err, wrapping foreign errors as transport
// failures. It returns nil for a nil err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr
	}
	return WrapError(KindTransport, err, "")
}
