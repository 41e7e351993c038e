package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

const (
	defaultBaseURL = "https://api.spacetraders.io/v2"
	defaultTimeout = 30 * time.Second
)

// Client is the shared HTTP gateway to the game API. It enforces the local
// token bucket (2 req/s and 30 req/min across the whole process), retries
// throttles and server errors, and treats a token reset mismatch as fatal.
type Client struct {
	httpClient *http.Client
	perSecond  *rate.Limiter
	perMinute  *rate.Limiter
	baseURL    string
	token      string
	retry      config.RetryConfig
	clock      shared.Clock

	// fatal handles error code 4113; the default writes to stderr and
	// exits non-zero. Injectable so tests can observe the call.
	fatal func(code int, message string)
}

// NewClient creates a client from configuration. A nil clock selects the
// real clock.
func NewClient(cfg *config.APIConfig, token string, clock shared.Clock) *Client {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		perSecond:  rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst),
		perMinute:  rate.NewLimiter(rate.Limit(float64(cfg.RateLimit.PerMinute)/60.0), cfg.RateLimit.PerMinute),
		baseURL:    baseURL,
		token:      token,
		retry:      cfg.Retry,
		clock:      clock,
		fatal: func(code int, message string) {
			fmt.Fprintf(os.Stderr, "%d: %s\n", code, message)
			os.Exit(1)
		},
	}
}

// SetFatalHandler overrides the token-reset-mismatch handler (tests only)
func (c *Client) SetFatalHandler(fn func(code int, message string)) {
	c.fatal = fn
}

// GetJSON issues a GET and returns the raw parsed body
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, params, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PostJSON issues a POST with a JSON body and returns the raw parsed body
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PatchJSON issues a PATCH with a JSON body and returns the raw parsed body
func (c *Client) PatchJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// wait blocks until both rate-limit windows admit one request
func (c *Client) wait(ctx context.Context) error {
	if err := c.perSecond.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if err := c.perMinute.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// addJitter spreads a duration by ±10% to avoid thundering herds
func addJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.9 + 0.2*rand.Float64()))
}

// backoff computes the delay before the n-th retry (n >= 1)
func (c *Client) backoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	seconds := c.retry.BackoffFactor * math.Pow(2, float64(n-1))
	return addJitter(time.Duration(seconds * float64(time.Second)))
}

// throttleDelay picks how long to wait after a 429. Server-signalled reset
// times win over Retry-After, which wins over exponential backoff.
func (c *Client) throttleDelay(h http.Header, n int) time.Duration {
	if h.Get("x-ratelimit-limit") != "" {
		if resetRaw := h.Get("x-ratelimit-reset"); resetRaw != "" {
			if resetVal, err := strconv.ParseFloat(resetRaw, 64); err == nil {
				waitS := resetVal
				if resetVal > 1e10 {
					// Absolute epoch timestamp rather than a delta
					waitS = resetVal - float64(c.clock.Now().Unix())
				}
				waitS = math.Max(0, math.Min(waitS, 60))
				if waitS > 0 {
					return addJitter(time.Duration(waitS * float64(time.Second)))
				}
			}
		}
		return addJitter(2 * time.Second)
	}
	if retryAfter := h.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return c.backoff(n)
}

// retryableStatus lists the statuses worth retrying
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

// do issues one logical request with rate limiting and retries. Network
// failures, 429s and retryable 5xx each count against their own attempt
// caps as well as the overall total.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	netAttempts := 0
	statusAttempts := 0

attempts:
	for attempt := 0; attempt <= c.retry.Total; attempt++ {
		if err := c.wait(ctx); err != nil {
			return err
		}

		var reqBody io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reqBody = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			netAttempts++
			lastErr = fmt.Errorf("network error: %w", err)
			if netAttempts > c.retry.Connect || attempt >= c.retry.Total {
				break attempts
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.clock.Sleep(c.backoff(netAttempts))
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			netAttempts++
			lastErr = fmt.Errorf("failed to read response: %w", readErr)
			if netAttempts > c.retry.Read || attempt >= c.retry.Total {
				break attempts
			}
			c.clock.Sleep(c.backoff(netAttempts))
			continue
		}

		// A token reset mismatch is fatal no matter the HTTP status
		apiErr := parseAPIError(respBody)
		if apiErr != nil && apiErr.Code == CodeTokenResetMismatch {
			c.fatal(apiErr.Code, apiErr.Message)
			return apiErr
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			statusAttempts++
			lastErr = fmt.Errorf("rate limited (429)")
			if statusAttempts > c.retry.Status || attempt >= c.retry.Total {
				break attempts
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.clock.Sleep(c.throttleDelay(resp.Header, statusAttempts))
			continue

		case resp.StatusCode >= 500 && retryableStatus(resp.StatusCode):
			statusAttempts++
			lastErr = fmt.Errorf("server error (%d)", resp.StatusCode)
			if statusAttempts > c.retry.Status || attempt >= c.retry.Total {
				if resp.StatusCode == http.StatusBadGateway {
					c.clock.Sleep(addJitter(3 * time.Second))
				}
				break attempts
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.clock.Sleep(c.backoff(statusAttempts))
			continue

		case resp.StatusCode >= 400:
			if apiErr != nil {
				return apiErr
			}
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
		}

		// 2xx with an embedded logical error still fails the call
		if apiErr != nil {
			return apiErr
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("max retries exceeded")
	}
	return &TransportError{Method: method, Path: path, Err: lastErr}
}
