package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/logger"
)

// RateLimiter is a fixed-window counter, per client IP, per process. State
// lives in memory only and resets on restart; nothing is shared across
// instances.
type RateLimiter struct {
	log    *logger.Logger
	limit  int
	window time.Duration

	mu   sync.Mutex
	hits map[string]*windowCount

	now func() time.Time
}

type windowCount struct {
	start time.Time
	count int
}

func NewRateLimiter(log *logger.Logger, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		log:    log.With("middleware", "RateLimiter"),
		limit:  limit,
		window: window,
		hits:   map[string]*windowCount{},
		now:    time.Now,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			rl.log.Warn("Rate limit exceeded", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      false,
				"message": "Too many lesson creations, please slow down.",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	wc := rl.hits[key]
	if wc == nil || now.Sub(wc.start) >= rl.window {
		rl.hits[key] = &windowCount{start: now, count: 1}
		return true
	}
	if wc.count >= rl.limit {
		return false
	}
	wc.count++
	return true
}
