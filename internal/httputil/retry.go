// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP retry and status handling shared by the
// embedding providers and the metadata fetcher.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the first backoff on HTTP 429 when a Policy leaves
// BaseDelay unset. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// Policy controls retries on HTTP 429 (Too Many Requests).
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero or less means 3.
	MaxRetries int

	// BaseDelay is the first backoff; it doubles on each retry. Zero means
	// RetryBaseDelay.
	BaseDelay time.Duration

	// Logger receives one line per retry. Nil disables logging.
	Logger *zap.SugaredLogger
}

// Backoff returns the wait before retry number attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}
	return base << attempt
}

// DoWithRetry executes req with the default policy and the given retry
// count.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return DoWithPolicy(ctx, client, req, Policy{MaxRetries: maxRetries})
}

// DoWithPolicy executes req and retries on HTTP 429 with exponential
// backoff. Each 429 body is drained and closed before waiting. If ctx ends
// during a wait, ctx.Err() is returned. Once retries are exhausted the last
// 429 response is returned for the caller to inspect. The request body, if
// any, must be replayable through req.GetBody.
func DoWithPolicy(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		wait := p.Backoff(attempt)
		if p.Logger != nil {
			p.Logger.Infow("rate limited, backing off",
				"host", req.URL.Host,
				"wait", wait,
				"attempt", attempt+1,
				"max_retries", maxRetries,
			)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

const maxErrorBody = 512

// CheckStatus returns a *StatusError carrying the start of the body when
// resp is not 2xx. The body is consumed in that case; the caller still
// closes it.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
