package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute int) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l, err := New(rdb, perMinute)
	require.NoError(t, err)
	return &Handler{Limiter: l}
}

func TestMiddlewareAllowsUnderLimit(t *testing.T) {
	h := newTestLimiter(t, 5)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	h.Middleware(next).ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "5", rr.Header().Get("X-RateLimit-Limit"))
}

func TestMiddlewareBlocksOverLimit(t *testing.T) {
	h := newTestLimiter(t, 2)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := h.Middleware(next)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", nil)
		req.RemoteAddr = "10.1.2.3:4444"
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestWriteOnlySparesReads(t *testing.T) {
	h := newTestLimiter(t, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := h.WriteOnly(next)

	// Reads never consume quota.
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.RemoteAddr = "10.1.2.3:4444"
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
	}

	// The first write consumes the single slot, the second is rejected.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
}
