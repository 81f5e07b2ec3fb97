package resource

import "github.com/marmos91/dittohttp/internal/protocol/http1"

// ResolveError is a request-scoped resolution failure.
//
// Codes map onto the status code of the error page the caller sends.
type ResolveError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the filesystem or request path involved, if any
	Path string

	// Err is the underlying filesystem error, if any
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to a response status.
func (e *ResolveError) HTTPStatus() int {
	switch e.Code {
	case ErrBadRequest:
		return http1.StatusBadRequest
	case ErrForbidden:
		return http1.StatusForbidden
	case ErrNotFound:
		return http1.StatusNotFound
	case ErrPathTooLong:
		return http1.StatusRequestHeaderFieldsTooLarge
	default:
		return http1.StatusInternalServerError
	}
}

// ErrorCode is the category of a ResolveError.
type ErrorCode int

const (
	// ErrBadRequest: empty path, stray line ending, bad percent-escape.
	ErrBadRequest ErrorCode = iota

	// ErrForbidden: outside the root, or not readable.
	ErrForbidden

	// ErrNotFound: the path does not canonicalize.
	ErrNotFound

	// ErrPathTooLong: the path would overflow the platform path limit.
	ErrPathTooLong

	// ErrInternal: open, stat or read failures after resolution.
	ErrInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrBadRequest:
		return "bad request"
	case ErrForbidden:
		return "forbidden"
	case ErrNotFound:
		return "not found"
	case ErrPathTooLong:
		return "path too long"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func newError(code ErrorCode, message, path string, err error) *ResolveError {
	return &ResolveError{Code: code, Message: message, Path: path, Err: err}
}
