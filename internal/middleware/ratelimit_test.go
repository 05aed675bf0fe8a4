// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerMinute(2, 2)})
	h := rl.Handler(okHandler())

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	denied := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.NotEmpty(t, denied.Header().Get("Retry-After"))
	assert.Equal(t, "2", denied.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, denied.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code,
		"other clients keep their own bucket")
}

func TestRateLimiterInvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	closed := NewRateLimiter(nil, RateLimitConfig{}).Handler(okHandler())
	rec := httptest.NewRecorder()
	closed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	open := NewRateLimiter(nil, RateLimitConfig{FailOpen: true}).Handler(okHandler())
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 203.0.113.9")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestKeyByUserAndEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/validate-promo-code", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t,
		"ratelimit:ip:192.0.2.10:endpoint:/api/validate-promo-code",
		KeyByUserAndEndpoint(req),
	)

	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	assert.Equal(t,
		"ratelimit:user:user-1:endpoint:/api/validate-promo-code",
		KeyByUserAndEndpoint(req.WithContext(ctx)),
	)
}
