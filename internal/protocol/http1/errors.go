package http1

import (
	"errors"
	"fmt"
)

// ErrConnectionLost is returned by ReadRequest when the peer went away (or
// the socket failed) before anything worth answering arrived. The caller
// closes the connection without writing a response.
var ErrConnectionLost = errors.New("http1: connection lost before request")

// Kind classifies connection-local failures.
type Kind int

const (
	// KindProtocol covers malformed request lines, bad versions and
	// over-long paths.
	KindProtocol Kind = iota

	// KindAccess covers permission and resolution failures.
	KindAccess

	// KindTimeout means the request head did not arrive in time.
	KindTimeout

	// KindOversize means the request head did not fit the read buffer.
	KindOversize

	// KindResource covers allocation, open and stat failures mid-request.
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindAccess:
		return "access"
	case KindTimeout:
		return "timeout"
	case KindOversize:
		return "oversize"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Error is a failure that ends the connection with exactly one error
// response carrying Status.
type Error struct {
	Kind   Kind
	Status int

	// Op names the step that failed, e.g. "read" or "version".
	Op string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error (%d %s): %v", e.Op, e.Kind, e.Status, StatusText(e.Status), e.Err)
	}
	return fmt.Sprintf("%s: %s error (%d %s)", e.Op, e.Kind, e.Status, StatusText(e.Status))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the error maps to.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// StatusCoder is implemented by errors that know which response they map to.
type StatusCoder interface {
	HTTPStatus() int
}

// StatusOf maps err to the status code of the response it should produce.
// Errors that carry no status map to 500.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.HTTPStatus(); StatusText(code) != "" {
			return code
		}
	}
	return StatusInternalServerError
}

func newError(kind Kind, status int, op string, err error) *Error {
	return &Error{Kind: kind, Status: status, Op: op, Err: err}
}
