package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

func clientConfig(baseURL string) *config.APIConfig {
	return &config.APIConfig{
		BaseURL: baseURL,
		RateLimit: config.RateLimitConfig{
			PerSecond: 100, PerMinute: 6000, Burst: 100,
		},
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			Total: 6, Connect: 3, Read: 3, Status: 6, BackoffFactor: 1.2,
		},
	}
}

func TestClientRateLimitsDispatch(t *testing.T) {
	var count atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		count.Add(1)
		fmt.Fprint(rw, `{"data":{}}`)
	}))
	defer ts.Close()

	cfg := clientConfig(ts.URL)
	cfg.RateLimit = config.RateLimitConfig{PerSecond: 2, PerMinute: 120, Burst: 2}
	client := api.NewClient(cfg, "token", nil)

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := client.GetJSON(context.Background(), "/my/agent", nil)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// Burst of 2, then one token each 500ms: 5 requests need >= ~1.5s
	assert.Equal(t, int32(5), count.Load())
	assert.GreaterOrEqual(t, elapsed, 1400*time.Millisecond)
}

func TestClientHonorsRateLimitReset(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if calls.Add(1) == 1 {
			rw.Header().Set("x-ratelimit-limit", "2")
			rw.Header().Set("x-ratelimit-reset", "3")
			rw.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(rw, `{"error":{"code":429,"message":"throttled"}}`)
			return
		}
		fmt.Fprint(rw, `{"data":{"ok":true}}`)
	}))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	client := api.NewClient(clientConfig(ts.URL), "token", clock)

	_, err := client.GetJSON(context.Background(), "/my/agent", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	// The reset delta is honored with ±10% jitter
	require.Len(t, clock.Slept, 1)
	assert.GreaterOrEqual(t, clock.Slept[0], 2700*time.Millisecond)
	assert.LessOrEqual(t, clock.Slept[0], 3300*time.Millisecond)
}

func TestClientFatalOnTokenResetMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(rw, `{"error":{"code":4113,"message":"token reset mismatch"}}`)
	}))
	defer ts.Close()

	client := api.NewClient(clientConfig(ts.URL), "token", nil)

	var gotCode int
	var gotMessage string
	client.SetFatalHandler(func(code int, message string) {
		gotCode = code
		gotMessage = message
	})

	_, err := client.GetJSON(context.Background(), "/my/agent", nil)
	require.Error(t, err)
	assert.True(t, api.IsCode(err, api.CodeTokenResetMismatch))
	assert.Equal(t, api.CodeTokenResetMismatch, gotCode)
	assert.Equal(t, "token reset mismatch", gotMessage)
}

func TestClientReturnsTypedLogicalErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(rw, `{"error":{"code":4203,"message":"insufficient fuel","data":{"required":38}}}`)
	}))
	defer ts.Close()

	client := api.NewClient(clientConfig(ts.URL), "token", nil)

	_, err := client.PostJSON(context.Background(), "/my/ships/X/navigate", map[string]string{})
	require.Error(t, err)
	assert.True(t, api.IsCode(err, api.CodeInsufficientFuel))
	assert.False(t, api.IsCode(err, api.CodeTokenResetMismatch))
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if calls.Add(1) <= 2 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(rw, `{"data":{"ok":true}}`)
	}))
	defer ts.Close()

	clock := shared.NewMockClock(time.Time{})
	client := api.NewClient(clientConfig(ts.URL), "token", clock)

	_, err := client.GetJSON(context.Background(), "/my/agent", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, clock.Slept, 2)
}

func TestClientExhaustsRetriesIntoTransportError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	clock := shared.NewMockClock(time.Time{})
	cfg := clientConfig(ts.URL)
	cfg.Retry = config.RetryConfig{Total: 2, Connect: 2, Read: 2, Status: 2, BackoffFactor: 0.01}
	client := api.NewClient(cfg, "token", clock)

	_, err := client.GetJSON(context.Background(), "/my/agent", nil)
	require.Error(t, err)

	var transportErr *api.TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Equal(t, int32(3), calls.Load())
}
