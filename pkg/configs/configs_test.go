package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_ShouldTrip(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureRate: 0.5, MinRequests: 10}

	assert.False(t, cfg.ShouldTrip(0, 0))
	assert.False(t, cfg.ShouldTrip(9, 9), "below MinRequests")
	assert.False(t, cfg.ShouldTrip(10, 4))
	assert.True(t, cfg.ShouldTrip(10, 5))
}

func TestServer_ShutdownTimeoutAndAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}

	assert.Equal(t, DefaultShutdownTimeout, s.GetShutdownTimeout())
	assert.Equal(t, "127.0.0.1:9000", s.Addr())

	s.ShutdownTimeout = 3 * time.Second
	assert.Equal(t, 3*time.Second, s.GetShutdownTimeout())
}

func TestRateLimit_Bulk(t *testing.T) {
	c := RateLimitConfig{Enabled: true, RPS: 50, Burst: 100, Key: "user", BulkRPS: 2, BulkBurst: 5}
	b := c.Bulk()

	assert.Equal(t, 2.0, b.RPS)
	assert.Equal(t, 5, b.Burst)
	assert.Equal(t, "user", b.Key)
	assert.Equal(t, 50.0, c.RPS, "original untouched")
}

func TestTracing_Ratio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		c := TracingConfig{SampleRate: in}
		assert.Equal(t, want, c.Ratio())
	}
}

func TestS3_ReportPrefix(t *testing.T) {
	for in, want := range map[string]string{"reports/": "reports/", "/a/b": "a/b/", "": ""} {
		c := S3Config{KeyPrefix: in}
		assert.Equal(t, want, c.ReportPrefix(), in)
	}
}

func TestMetrics_GORMRefreshSeconds(t *testing.T) {
	c := MetricsConfig{CollectInterval: 15 * time.Second}
	assert.Equal(t, uint32(15), c.GORMRefreshSeconds())

	c.CollectInterval = 0
	assert.Equal(t, uint32(1), c.GORMRefreshSeconds())
}

func TestAuth_IsAdminUser(t *testing.T) {
	c := AuthConfig{AdminUsers: []string{" Ops@Example.com ", ""}}

	assert.True(t, c.IsAdminUser("ops@example.com"))
	assert.False(t, c.IsAdminUser("amy@example.com"))
	assert.False(t, c.IsAdminUser(""))
	assert.False(t, (&AuthConfig{}).IsAdminUser("ops@example.com"))
}
