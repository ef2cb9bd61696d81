package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterStore maps one rate limiter per caller key.
type limiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

var callerLimiters = &limiterStore{limiters: make(map[string]*rate.Limiter)}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		// 120 requests per minute per caller, burst of 120.
		limiter = rate.NewLimiter(rate.Every(time.Minute/120), 120)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits request throughput per caller. Authenticated
// requests are keyed by user ID so residents behind the same NAT do not
// share a bucket; anything else falls back to the client IP.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := CallerID(c)
		if !ok {
			key = clientIP(c)
		}
		if !callerLimiters.get(key).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("caller", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 && ips[0] != "" {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
