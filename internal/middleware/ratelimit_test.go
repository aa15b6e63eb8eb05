package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limitedRequest struct {
	remoteAddr string
	xff        string
	want       int
}

func TestRateLimiter_Keying(t *testing.T) {
	const proxy = "10.0.0.9:443"

	tests := []struct {
		name     string
		trustXFF bool
		requests []limitedRequest
	}{
		{
			name: "single client over burst",
			requests: []limitedRequest{
				{remoteAddr: "10.0.0.1:1000", want: http.StatusOK},
				{remoteAddr: "10.0.0.1:1000", want: http.StatusTooManyRequests},
			},
		},
		{
			name: "source port ignored",
			requests: []limitedRequest{
				{remoteAddr: "10.0.0.1:1000", want: http.StatusOK},
				{remoteAddr: "10.0.0.1:2000", want: http.StatusTooManyRequests},
			},
		},
		{
			name: "distinct addresses isolated",
			requests: []limitedRequest{
				{remoteAddr: "10.0.0.1:1000", want: http.StatusOK},
				{remoteAddr: "10.0.0.2:1000", want: http.StatusOK},
				{remoteAddr: "10.0.0.1:1000", want: http.StatusTooManyRequests},
			},
		},
		{
			name: "untrusted forwarded header cannot split a bucket",
			requests: []limitedRequest{
				{remoteAddr: proxy, xff: "203.0.113.1", want: http.StatusOK},
				{remoteAddr: proxy, xff: "203.0.113.2", want: http.StatusTooManyRequests},
				{remoteAddr: proxy, want: http.StatusTooManyRequests},
			},
		},
		{
			name:     "trusted forwarded header keys clients behind one proxy",
			trustXFF: true,
			requests: []limitedRequest{
				{remoteAddr: proxy, xff: "203.0.113.1", want: http.StatusOK},
				{remoteAddr: proxy, xff: "203.0.113.2", want: http.StatusOK},
				{remoteAddr: proxy, xff: "203.0.113.1", want: http.StatusTooManyRequests},
				{remoteAddr: proxy, want: http.StatusOK},
			},
		},
		{
			name:     "trusted chain keyed by first hop",
			trustXFF: true,
			requests: []limitedRequest{
				{remoteAddr: proxy, xff: "203.0.113.1, 70.41.3.18", want: http.StatusOK},
				{remoteAddr: "10.0.0.8:443", xff: "203.0.113.1, 150.172.238.178", want: http.StatusTooManyRequests},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			handler := RateLimiter(ctx, RateLimitConfig{
				RequestsPerSecond: 0.001,
				Burst:             1,
				TrustForwardedFor: tt.trustXFF,
			})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			for i, lr := range tt.requests {
				req := httptest.NewRequest(http.MethodGet, "/v1/catalog/tables", nil)
				req.RemoteAddr = lr.remoteAddr
				if lr.xff != "" {
					req.Header.Set("X-Forwarded-For", lr.xff)
				}
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				require.Equal(t, lr.want, rec.Code, "request %d", i)
			}
		})
	}
}

func TestRateLimiter_Responses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimiter(ctx, RateLimitConfig{RequestsPerSecond: 0.5, Burst: 3})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/ingest", nil)
		req.RemoteAddr = "192.0.2.7:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for range 3 {
		rec := serve()
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	}

	rec := serve()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "rate limit exceeded", body.Message)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trusted    bool
		want       string
	}{
		{name: "ipv4", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "ipv6", remoteAddr: "[::1]:12345", want: "::1"},
		{name: "no port", remoteAddr: "pipe", want: "pipe"},
		{name: "untrusted header", remoteAddr: "10.0.0.1:1234", xff: "203.0.113.50", want: "10.0.0.1"},
		{name: "trusted header", remoteAddr: "10.0.0.1:1234", xff: "203.0.113.50", trusted: true, want: "203.0.113.50"},
		{name: "trusted chain", remoteAddr: "10.0.0.1:1234", xff: " 203.0.113.50 , 70.41.3.18", trusted: true, want: "203.0.113.50"},
		{name: "trusted blank first hop", remoteAddr: "10.0.0.1:1234", xff: " , 70.41.3.18", trusted: true, want: "10.0.0.1"},
		{name: "trusted without header", remoteAddr: "10.0.0.1:1234", trusted: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}

func TestLimiterSet_SweepForgetsIdleClients(t *testing.T) {
	set := &limiterSet{cfg: RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clients: map[string]*clientLimiter{}}
	start := time.Now()
	set.get("10.0.0.1", start)
	set.get("10.0.0.2", start.Add(9*time.Minute))

	set.sweep(start.Add(11 * time.Minute))
	assert.Len(t, set.clients, 1)
	assert.Contains(t, set.clients, "10.0.0.2")
}

func TestLimiterSet_SweepUntilDone(t *testing.T) {
	set := &limiterSet{cfg: RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clients: map[string]*clientLimiter{}}
	start := time.Now()
	set.get("10.0.0.1", start)
	set.get("10.0.0.2", start.Add(5*time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		set.sweepUntilDone(ctx, ticks)
		close(done)
	}()

	// The loop handles ticks one at a time, so the second send returns only
	// after the first sweep has finished.
	ticks <- start.Add(11 * time.Minute)
	ticks <- start.Add(11 * time.Minute)

	set.mu.Lock()
	assert.Len(t, set.clients, 1)
	assert.Contains(t, set.clients, "10.0.0.2")
	set.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper still running after cancel")
	}

	select {
	case ticks <- start.Add(time.Hour):
		t.Fatal("sweeper accepted a tick after cancel")
	default:
	}
}
