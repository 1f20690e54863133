package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/reportvault/pkg/configs"
)

const (
	// limiterIdleTTL 超过该时间未访问的键会在下次清扫时移除.
	limiterIdleTTL = 10 * time.Minute
	// sweepEvery 每处理这么多次请求清扫一次.
	sweepEvery = 1024
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按键分配令牌桶，闲置的键惰性回收.
type limiterSet struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	now   func() time.Time
	hits  int
	items map[string]*keyedLimiter
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		rps:   rate.Limit(rps),
		burst: burst,
		now:   time.Now,
		items: map[string]*keyedLimiter{},
	}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.hits++
	if s.hits%sweepEvery == 0 {
		for k, it := range s.items {
			if now.Sub(it.lastSeen) > limiterIdleTTL {
				delete(s.items, k)
			}
		}
	}

	it, ok := s.items[key]
	if !ok {
		it = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.items[key] = it
	}

	it.lastSeen = now

	return it.limiter.AllowN(now, 1)
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// RateLimitMiddleware 按配置限流，批量接口另用 cfg.Bulk() 挂载一份更严格的额度.
// Key 取值：global、ip、user、header:<name>；取不到键时退回客户端 IP.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyOf := rateLimitKey(strings.ToLower(strings.TrimSpace(cfg.Key)))
	set := newLimiterSet(cfg.RPS, cfg.Burst)

	return func(c *gin.Context) {
		if !set.allow(keyOf(c)) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "Too many requests, please try again later."})

			return
		}

		c.Next()
	}
}

func rateLimitKey(mode string) func(c *gin.Context) string {
	fallback := func(c *gin.Context, key string) string {
		if key != "" {
			return key
		}

		if ip := clientIP(c); ip != "" {
			return ip
		}

		return "unknown"
	}

	switch {
	case mode == "" || mode == "global":
		return func(*gin.Context) string { return "*" }
	case mode == "user":
		return func(c *gin.Context) string { return fallback(c, CurrentUser(c)) }
	case strings.HasPrefix(mode, "header:"):
		h := strings.TrimPrefix(mode, "header:")

		return func(c *gin.Context) string { return fallback(c, c.GetHeader(h)) }
	default:
		return func(c *gin.Context) string { return fallback(c, "") }
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return host
}
