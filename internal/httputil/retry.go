// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient HTTP statuses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxRetries = 5

// retryableStatus is the set of HTTP statuses treated as transient:
// rate limiting and upstream server failures.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Retryable reports whether an HTTP status code is worth retrying.
func Retryable(statusCode int) bool {
	return retryableStatus[statusCode]
}

// DoWithRetry executes an HTTP request and retries on transient statuses
// (429, 500, 502, 503, 504) with exponential backoff. The delay starts at
// RetryBaseDelay (0.5 s) and doubles each attempt: 0.5 s, 1 s, 2 s, 4 s, 8 s.
//
// Network-level failures (connection errors, timeouts) are retried the
// same way and surface as a *RequestError once the budget is spent.
//
// Only GET requests are retried; other methods pass through after the
// first attempt. When maxRetries is 0 the default (5) is used. On each
// transient status the response body is drained and closed before sleeping.
// If the context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last response is returned so the
// caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if req.Method != http.MethodGet || attempt >= maxRetries || ctx.Err() != nil {
				return nil, &RequestError{URL: req.URL.String(), Err: err}
			}
			if waitErr := backoffWait(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if req.Method != http.MethodGet || !Retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries — return the last transient response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if err := backoffWait(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

func backoffWait(ctx context.Context, attempt int) error {
	backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// CheckStatus maps a final response status to the error taxonomy: nil for
// 2xx, *TransientError for a retryable status that survived the retry
// budget, *RequestError for any other non-success status.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var u string
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.String()
	}
	if Retryable(resp.StatusCode) {
		return &TransientError{StatusCode: resp.StatusCode, URL: u}
	}
	return &RequestError{StatusCode: resp.StatusCode, URL: u}
}
