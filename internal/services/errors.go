package services

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/shared"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	KindNetwork       ErrorKind = "network"       // transport failure, no response
	KindStatus        ErrorKind = "status"        // non-2xx response
	KindDecode        ErrorKind = "decode"        // 2xx response with an unreadable body
	KindCanceled      ErrorKind = "canceled"      // caller's context ended first
	KindAuthorization ErrorKind = "authorization" // rejected client-side before any call
)

// ErrorContext carries diagnostic details about a failed request.
type ErrorContext struct {
	Endpoint   string
	Method     string
	Path       string
	StatusCode int
	RequestID  string
	Cause      string
}

// RequestError is the failure half of [Result].
//
// Message is the human-readable text surfaced to state: for most kinds it is the
// endpoint's description ("Failed to fetch watchlist"), never the raw response body.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Context ErrorContext
	cause   error
}

func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap exposes the shared sentinel for the kind and the underlying cause to [errors.Is].
func (e *RequestError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func (e *RequestError) sentinel() error {
	switch e.Kind {
	case KindStatus:
		return shared.ErrAPIStatus
	case KindDecode:
		return shared.ErrDecodeResponse
	case KindCanceled:
		return shared.ErrRequestCanceled
	case KindAuthorization:
		return shared.ErrNotAuthorized
	default:
		return shared.ErrAPIRequest
	}
}

// IsAuthError reports whether the server rejected the caller's credentials.
func (e *RequestError) IsAuthError() bool {
	return e.Kind == KindAuthorization || e.Context.StatusCode == 401 || e.Context.StatusCode == 403
}

// Describe returns a log-friendly one-liner including the cause.
func (e *RequestError) Describe() string {
	if e.Context.Cause == "" {
		return fmt.Sprintf("%s (%s %s %s)", e.Message, e.Kind, e.Context.Method, e.Context.Path)
	}
	return fmt.Sprintf("%s (%s %s %s: %s)", e.Message, e.Kind, e.Context.Method, e.Context.Path, e.Context.Cause)
}

// NewAuthorizationError builds the client-side rejection for an operation the session may not perform.
func NewAuthorizationError(operation string) *RequestError {
	return &RequestError{
		Kind:    KindAuthorization,
		Message: "Admin access required",
		Context: ErrorContext{Endpoint: operation, Cause: "session user is not an admin"},
	}
}

// Result is the tagged outcome of one gateway call: OK with Value, or not OK with Err.
type Result[T any] struct {
	OK    bool
	Value T
	Err   *RequestError
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail wraps a failure.
func Fail[T any](err *RequestError) Result[T] {
	return Result[T]{Err: err}
}

// Unwrap converts the result into Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if !r.OK {
		return r.Value, r.Err
	}
	return r.Value, nil
}

// Map transforms the value of a successful result and passes failures through.
func Map[A, B any](r Result[A], fn func(A) B) Result[B] {
	if !r.OK {
		return Fail[B](r.Err)
	}
	return Ok(fn(r.Value))
}
