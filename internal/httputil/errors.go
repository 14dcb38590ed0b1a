// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "fmt"

// TransientError reports a retryable HTTP status (429, 500, 502, 503, 504)
// that persisted after the retry budget was exhausted.
type TransientError struct {
	StatusCode int
	URL        string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("HTTP %d from %s after retries", e.StatusCode, e.URL)
}

// RequestError reports a request that failed outright: a network-level
// failure (connection error, timeout) or a non-retryable HTTP status.
// Exactly one of StatusCode and Err is set.
type RequestError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Unwrap returns the underlying network error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}
