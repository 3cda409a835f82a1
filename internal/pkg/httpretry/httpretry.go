// Package httpretry wraps an HTTP client with retries, exponential
// backoff, and full jitter for calls to external providers.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// HTTPDoer executes HTTP requests. Both *http.Client and *RetryClient
// satisfy it, so retry wrapping is transparent to callers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures with exponential backoff.
type RetryClient struct {
	inner      HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient wraps inner with retry behavior. A nil inner gets a
// default client with a 30s timeout; maxRetries counts attempts after
// the first (default 3).
func NewRetryClient(inner HTTPDoer, maxRetries int) *RetryClient {
	if inner == nil {
		inner = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do runs the request, retrying on 429/5xx statuses and transient
// transport errors. Client errors and context cancellation never retry.
// The final attempt's response comes back as-is, body intact, so the
// caller can report the provider's actual answer.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		if attempt > 0 {
			if err := rewindBody(req); err != nil {
				return nil, err
			}
			if err := c.wait(req, attempt); err != nil {
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, err
			}
		}

		resp, err := c.inner.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		if !retryableStatus(resp.StatusCode) || attempt == c.maxRetries {
			return resp, nil
		}

		// Drain so the connection can be reused before the next try
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// rewindBody resets the request body ahead of a retry when the request
// supports it.
func rewindBody(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("httpretry: failed to reset request body: %w", err)
	}
	req.Body = body
	return nil
}

// wait sleeps the backoff delay for attempt, aborting early if the
// request context ends.
func (c *RetryClient) wait(req *http.Request, attempt int) error {
	delay := c.backoff(attempt)
	log.Printf("httpretry: retry attempt %d/%d for %s %s%s (waiting %s)",
		attempt, c.maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

// backoff returns random(100ms, min(maxDelay, baseDelay * 2^(attempt-1))).
func (c *RetryClient) backoff(attempt int) time.Duration {
	ceiling := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	if ceiling > float64(c.maxDelay) {
		ceiling = float64(c.maxDelay)
	}
	delay := time.Duration(rand.Float64() * ceiling)
	if delay < 100*time.Millisecond {
		delay = 100 * time.Millisecond
	}
	return delay
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
