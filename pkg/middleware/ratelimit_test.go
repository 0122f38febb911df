package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/marketplace/pkg/config"
	"github.com/wyfcoding/marketplace/pkg/ratelimit"
)

type fakeLimiter struct {
	keys    []string
	allowed bool
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ ratelimit.Limit) (*ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	return &ratelimit.Result{
		Allowed:    f.allowed,
		Remaining:  1,
		ResetAfter: time.Second,
		RetryAfter: time.Second,
	}, nil
}

func newRateLimitRouter(limiter ratelimit.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter, config.RateLimitConfig{Enabled: true, QPS: 10, Burst: 10}, "sid"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware_KeysOnSessionCookie(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	r := newRateLimitRouter(limiter)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sess-abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "ratelimit:session:sess-abc", limiter.keys[0])
}

func TestRateLimitMiddleware_FallsBackToClientIP(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	r := newRateLimitRouter(limiter)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "ratelimit:ip:203.0.113.7", limiter.keys[0])
}

func TestRateLimitMiddleware_RejectsWhenExhausted(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	r := newRateLimitRouter(limiter)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sess-abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
