package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/reportvault/pkg/configs"
)

func limitedEngine(cfg configs.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set(userKey, u)
		}

		c.Next()
	})
	r.Use(RateLimitMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r
}

func hit(r *gin.Engine, user string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimit_Disabled(t *testing.T) {
	r := limitedEngine(configs.RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1})

	for range 5 {
		assert.Equal(t, http.StatusNoContent, hit(r, ""))
	}
}

func TestRateLimit_GlobalBurst(t *testing.T) {
	r := limitedEngine(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2, Key: "global"})

	assert.Equal(t, http.StatusNoContent, hit(r, "a"))
	assert.Equal(t, http.StatusNoContent, hit(r, "b"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "c"))
}

func TestRateLimit_PerUser(t *testing.T) {
	r := limitedEngine(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1, Key: "user"})

	assert.Equal(t, http.StatusNoContent, hit(r, "alice"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "alice"))
	assert.Equal(t, http.StatusNoContent, hit(r, "bob"))
}

func TestLimiterSet_SweepsIdleKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newLimiterSet(100, 100)
	set.now = func() time.Time { return now }

	set.allow("stale")

	now = now.Add(limiterIdleTTL + time.Second)
	for range sweepEvery {
		set.allow("fresh")
	}

	assert.Equal(t, 1, set.size())
}
