package conduit

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed taxonomy every wire or runtime failure maps to
// exactly one member of.
type ErrorKind int

const (
	ErrInvalidInput ErrorKind = iota
	ErrAuthenticationFailed
	ErrBilling
	ErrRateLimited
	ErrServerError
	ErrTimeout
	ErrNetworkError
	ErrModelNotCached
	ErrTokenLimitExceeded
	ErrUnsupportedPlatform
	ErrInsufficientMemory
	ErrGenerationFailed
	ErrCancelled
	ErrProviderUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrBilling:
		return "Billing"
	case ErrRateLimited:
		return "RateLimited"
	case ErrServerError:
		return "ServerError"
	case ErrTimeout:
		return "Timeout"
	case ErrNetworkError:
		return "NetworkError"
	case ErrModelNotCached:
		return "ModelNotCached"
	case ErrTokenLimitExceeded:
		return "TokenLimitExceeded"
	case ErrUnsupportedPlatform:
		return "UnsupportedPlatform"
	case ErrInsufficientMemory:
		return "InsufficientMemory"
	case ErrGenerationFailed:
		return "GenerationFailed"
	case ErrCancelled:
		return "Cancelled"
	case ErrProviderUnavailable:
		return "ProviderUnavailable"
	default:
		return "Unknown"
	}
}

// Error is the single error type every Conduit failure is expressed as.
// Credentials are never placed in any field of Error: the taxonomy carries
// status codes, messages, and identifiers only.
type Error struct {
	Kind ErrorKind

	Message    string
	StatusCode int
	RequestID  string
	RetryAfter time.Duration // only meaningful for ErrRateLimited
	Required   int64         // ErrInsufficientMemory / ErrTokenLimitExceeded
	Available  int64         // ErrInsufficientMemory
	Limit      int64         // ErrTokenLimitExceeded

	cause error
}

func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

func (e *Error) WithRequestID(id string) *Error {
	e.RequestID = id
	return e
}

func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// IsRetryable reports whether this error kind is worth retrying locally,
// per the taxonomy in the error handling design.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrNetworkError:
		return true
	default:
		return false
	}
}

// IsConduitError reports whether err (or something it wraps) is a *Error,
// returning it if so.
func IsConduitError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRetryable reports whether err is a *Error whose kind is retryable.
func IsRetryable(err error) bool {
	ce, ok := IsConduitError(err)
	return ok && ce.IsRetryable()
}

// InvalidInput builds an ErrInvalidInput error.
func InvalidInput(msg string) *Error { return New(ErrInvalidInput, msg) }

// AuthenticationFailed builds an ErrAuthenticationFailed error.
func AuthenticationFailed(msg string) *Error { return New(ErrAuthenticationFailed, msg) }

// RateLimited builds an ErrRateLimited error, optionally carrying the
// server's Retry-After hint.
func RateLimited(retryAfter time.Duration) *Error {
	return New(ErrRateLimited, "rate limited").WithRetryAfter(retryAfter)
}

// ServerError builds an ErrServerError error for a given HTTP status.
func ServerError(statusCode int, msg string) *Error {
	return New(ErrServerError, msg).WithStatus(statusCode)
}

// Timeout builds an ErrTimeout error.
func Timeout(d time.Duration) *Error {
	return New(ErrTimeout, fmt.Sprintf("timed out after %s", d))
}

// NetworkErrorKind builds an ErrNetworkError error wrapping the transport
// failure.
func NetworkErrorKind(err error) *Error {
	return New(ErrNetworkError, err.Error()).WithCause(err)
}

// ModelNotCached builds an ErrModelNotCached error.
func ModelNotCached(model string) *Error {
	return New(ErrModelNotCached, fmt.Sprintf("model %q is not cached locally", model))
}

// TokenLimitExceeded builds an ErrTokenLimitExceeded error.
func TokenLimitExceeded(count, limit int64) *Error {
	e := New(ErrTokenLimitExceeded, fmt.Sprintf("token count %d exceeds limit %d", count, limit))
	e.Required, e.Limit = count, limit
	return e
}

// UnsupportedPlatform builds an ErrUnsupportedPlatform error.
func UnsupportedPlatform(msg string) *Error { return New(ErrUnsupportedPlatform, msg) }

// InsufficientMemory builds an ErrInsufficientMemory error.
func InsufficientMemory(required, available int64) *Error {
	e := New(ErrInsufficientMemory, fmt.Sprintf("need %d bytes, have %d", required, available))
	e.Required, e.Available = required, available
	return e
}

// GenerationFailed builds an ErrGenerationFailed error wrapping the cause.
func GenerationFailed(err error) *Error {
	e := New(ErrGenerationFailed, err.Error())
	return e.WithCause(err)
}

// Cancelled builds an ErrCancelled error.
func Cancelled() *Error { return New(ErrCancelled, "operation cancelled") }

// ProviderUnavailable builds an ErrProviderUnavailable error, used for both
// `availability()` results and capability-gated rejections.
func ProviderUnavailable(msg string) *Error { return New(ErrProviderUnavailable, msg) }
