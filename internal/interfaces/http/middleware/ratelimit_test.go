package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(1, 3, 0)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("client-a")
		assert.True(t, allowed, "request %d within burst", i)
	}
	allowed, info := limiter.Allow("client-a")
	assert.False(t, allowed)
	assert.Equal(t, 3, info.Limit)
	assert.Equal(t, 0, info.Remaining)
}

func TestTokenBucketLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(1, 1, 0)

	allowed, _ := limiter.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("client-a")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("client-b")
	assert.True(t, allowed)
	assert.Equal(t, 2, limiter.BucketCount())
}

func TestTokenBucketLimiter_Refills(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(100, 1, 0)

	allowed, _ := limiter.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("client-a")
	require.False(t, allowed)

	time.Sleep(50 * time.Millisecond)

	allowed, _ = limiter.Allow("client-a")
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(1000, 1, 10*time.Millisecond)
	defer limiter.Stop()

	limiter.Allow("client-a")
	require.Equal(t, 1, limiter.BucketCount())

	assert.Eventually(t, func() bool {
		return limiter.BucketCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(0.001, 2, 0)

	r := gin.New()
	r.Use(RateLimit(limiter, DefaultRateLimitConfig()))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "COMMON_007")

	// Exempt paths never consume tokens.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	t.Parallel()
	limiter := NewTokenBucketLimiter(0.001, 1, 0)
	cfg := DefaultRateLimitConfig()
	cfg.KeyFunc = func(c *gin.Context) string { return c.GetHeader("X-API-Key") }

	r := gin.New()
	r.Use(RateLimit(limiter, cfg))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("X-API-Key", key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("key-a"))
	assert.Equal(t, http.StatusTooManyRequests, do("key-a"))
	assert.Equal(t, http.StatusOK, do("key-b"))
}
