package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RetryConfig controls outbound retries.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// retryTransport replays idempotent requests that failed with a transport error or a 5xx.
type retryTransport struct {
	next   http.RoundTripper
	cfg    RetryConfig
	logger *slog.Logger
	sleep  func(time.Duration)
}

// NewClient builds an HTTP client whose GET requests are retried with exponential backoff.
func NewClient(timeout time.Duration, cfg RetryConfig, logger *slog.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: WithRetry(http.DefaultTransport, cfg, logger),
	}
}

// WithRetry wraps next. A MaxAttempts of one or less disables retries.
func WithRetry(next http.RoundTripper, cfg RetryConfig, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if cfg.MaxAttempts <= 1 {
		return next
	}
	return &retryTransport{
		next:   next,
		cfg:    cfg,
		logger: logger.With("component", "httpx.retry"),
		sleep:  time.Sleep,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.next.RoundTrip(req)
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 1; attempt <= t.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := t.cfg.BaseBackoff * time.Duration(1<<(attempt-2))
			if delay > 0 {
				t.sleep(delay)
			}
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
		}

		resp, err = t.next.RoundTrip(req)
		if !retryable(resp, err) || attempt == t.cfg.MaxAttempts {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
		}
		t.logger.Warn("transient failure, retrying request", "host", req.URL.Host, "path", req.URL.Path, "status", status, "attempt", attempt, "error", err)
	}
	return resp, err
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError
}
