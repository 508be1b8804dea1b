// Package httpclient provides an HTTP client with optional retry and
// backoff, used by the outbound gateways.
//
// The recommendation core performs no automatic retries: gateways build
// the client with WithMaxRetries(0). Retry support is carried for callers
// that opt in explicitly.
package httpclient

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryStrategy classifies how a response status should be retried.
type RetryStrategy int

const (
	// NoRetry returns the response to the caller as-is.
	NoRetry RetryStrategy = iota

	// ConservativeRetry backs off exponentially from the base delay.
	ConservativeRetry

	// SmartRetry honors the server's Retry-After header when present,
	// falling back to exponential backoff.
	SmartRetry
)

// RetryStrategyFunc maps a response status code to a retry strategy.
type RetryStrategyFunc func(int) RetryStrategy

// Client wraps http.Client with status-aware retry handling.
type Client struct {
	client       *http.Client
	maxRetries   int
	baseDelay    time.Duration
	strategyFunc RetryStrategyFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithMaxRetries sets the maximum number of retries. Zero disables retries.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		c.maxRetries = max
	}
}

// WithBaseDelay sets the base backoff delay.
func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = delay
	}
}

// WithRetryStrategy sets the status-to-strategy mapping.
func WithRetryStrategy(strategyFunc RetryStrategyFunc) Option {
	return func(c *Client) {
		c.strategyFunc = strategyFunc
	}
}

// New creates a Client. Defaults: 30s timeout, no retries.
func New(opts ...Option) *Client {
	client := &Client{
		client:       &http.Client{Timeout: 30 * time.Second},
		maxRetries:   0,
		baseDelay:    2 * time.Second,
		strategyFunc: DefaultRetryStrategy,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// DefaultRetryStrategy retries rate limits and transient server errors.
func DefaultRetryStrategy(statusCode int) RetryStrategy {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable:
		return SmartRetry
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return ConservativeRetry
	default:
		return NoRetry
	}
}

// Do executes the request, retrying per the configured strategy.
// Responses that are not retried (including all non-2xx when retries are
// disabled) are returned to the caller unmodified.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to recreate request body for retry: %w", err)
			}
			req.Body = body
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		strategy := c.strategyFunc(resp.StatusCode)
		if strategy == NoRetry || c.maxRetries == 0 {
			return resp, nil
		}

		lastResp = resp
		if attempt >= c.maxRetries {
			lastErr = &RetryableError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("max HTTP retries (%d) exceeded", c.maxRetries),
			}
			break
		}

		delay := c.calculateDelay(strategy, attempt, resp)
		resp.Body.Close()
		slog.Debug("Retrying HTTP request",
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"delay", delay,
		)
		time.Sleep(delay)
	}

	return lastResp, lastErr
}

func (c *Client) calculateDelay(strategy RetryStrategy, attempt int, resp *http.Response) time.Duration {
	if strategy == SmartRetry {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return time.Duration(float64(c.baseDelay) * math.Pow(2, float64(attempt)))
}
