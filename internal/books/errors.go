package books

import (
	"errors"
	"fmt"
)

// ErrMissingBaseURL is returned by NewClient when no API base URL is configured.
var ErrMissingBaseURL = errors.New("books: base URL is not configured")

// ErrorKind classifies a failed client operation.
type ErrorKind int

const (
	// KindTransport covers connection failures, including exhausted retries.
	KindTransport ErrorKind = iota + 1
	// KindHTTP is a non-2xx response; StatusCode holds the status.
	KindHTTP
	// KindDecode means the response body did not match the expected shape.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport_error"
	case KindHTTP:
		return "http_error"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown_error"
	}
}

// Error is the single failure type returned by Client operations.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("books: %s: api returned status %d", e.Op, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("books: %s: decode response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("books: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// HTTP error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTP {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return KindTransport.String()
}
