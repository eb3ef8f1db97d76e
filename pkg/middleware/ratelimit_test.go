package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedHandler(rps, burst int) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimit(rps, burst, logger)(next)
}

func limitedRequest(t *testing.T, h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsBurstThenRejects(t *testing.T) {
	h := rateLimitedHandler(1, 3)

	for range 3 {
		rec := limitedRequest(t, h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := limitedRequest(t, h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_BucketsArePerClient(t *testing.T) {
	h := rateLimitedHandler(1, 1)

	require.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, limitedRequest(t, h, "10.0.0.1:5678").Code)

	// A different peer gets its own bucket.
	assert.Equal(t, http.StatusOK, limitedRequest(t, h, "10.0.0.2:1234").Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"socket peer with port", "192.0.2.7:4096", nil, "192.0.2.7"},
		{"socket peer without port", "192.0.2.7", nil, "192.0.2.7"},
		{"x-forwarded-for single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"x-forwarded-for chain keeps first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"x-forwarded-for garbage falls through", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestVisitorStore_EvictsIdleEntries(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)

	clock := time.Now()
	store.now = func() time.Time { return clock }

	store.limiterFor("10.0.0.1")
	store.limiterFor("10.0.0.2")
	require.Equal(t, 2, store.size())

	// Only the first peer comes back before the TTL lapses.
	clock = clock.Add(59 * time.Second)
	store.limiterFor("10.0.0.1")

	clock = clock.Add(2 * time.Second)
	store.evictIdle()

	assert.Equal(t, 1, store.size())
	_, survived := store.visitors["10.0.0.1"]
	assert.True(t, survived)
}

func TestVisitorStore_ReusesLimiterPerIP(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)

	first := store.limiterFor("10.0.0.1")
	second := store.limiterFor("10.0.0.1")

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.size())
}
