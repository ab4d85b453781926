package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/logger"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 30 * time.Minute
)

// clientLimiter stores the token bucket of one client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware throttles each client to a token bucket.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	refillRate int
	bucketSize int
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware. Idle clients are
// forgotten by a background loop that stops when ctx is cancelled.
func NewRateLimiterMiddleware(ctx context.Context, cfg *config.Config) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		refillRate: cfg.RateLimitRefillRate,
		bucketSize: cfg.RateLimitBucketSize,
	}
	go rm.cleanupClients(ctx)
	return rm
}

// getClientIdentifier keys clients by IP and, when present, the caller's API key.
func getClientIdentifier(c *gin.Context) string {
	if key := c.GetHeader("X-Api-Key"); key != "" {
		return c.ClientIP() + "|" + key
	}
	return c.ClientIP()
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rm.refillRate), rm.bucketSize)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (rm *RateLimiterMiddleware) cleanupClients(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.forgetIdle(time.Now())
		}
	}
}

func (rm *RateLimiterMiddleware) forgetIdle(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if now.Sub(client.lastSeen) > limiterIdleTimeout {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := getClientIdentifier(c)
		if !rm.getClientLimiter(clientKey).Allow() {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client", clientKey, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
