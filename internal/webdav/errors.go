package webdav

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError represents a non-2xx WebDAV HTTP response.
type StatusError struct {
	StatusCode int
	Path       string
	Method     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsTemporary reports whether the status might clear on its own if retried.
func (e *StatusError) IsTemporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// NewStatusError builds a StatusError for the given response.
func NewStatusError(statusCode int, path, method string) *StatusError {
	return &StatusError{StatusCode: statusCode, Path: path, Method: method}
}

// AsStatusError unwraps err to a *StatusError, if it is one.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	ok := errors.As(err, &se)
	return se, ok
}

// TLSError marks a request that was aborted by certificate verification.
// It is fatal only to the single request that produced it.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls verification failed for %s: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// IsTemporaryNetworkError applies the socket-level heuristics used by the
// request-level backoff retry: connection resets, timeouts and the like are
// worth one more attempt. HTTP status errors are never retried here — a
// *StatusError means the server answered, so retrying the identical request
// is a pass-level concern (the next sync() invocation), not a request-level
// one; StatusError.IsTemporary is kept as a classification predicate for
// callers that need it (e.g. deciding log severity), not for this retry gate.
func IsTemporaryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsStatusError(err); ok {
		return false
	}
	if _, ok := err.(*TLSError); ok {
		return false // TLS rejection never clears by retrying
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused", "connection reset", "timeout",
		"network is unreachable", "temporary failure", "broken pipe",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
