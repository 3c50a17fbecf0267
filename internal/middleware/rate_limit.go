package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/teamflow/crm-api/internal/config"
)

// RateLimitWrapper wraps the rate limiting functionality
type RateLimitWrapper struct {
	cfg *config.Config
}

// NewRateLimitMiddleware creates a new rate limit middleware wrapper
func NewRateLimitMiddleware(cfg *config.Config) *RateLimitWrapper {
	return &RateLimitWrapper{cfg: cfg}
}

// RateLimit returns the rate limiting middleware
func (rlw *RateLimitWrapper) RateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(rlw.cfg)
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return gin.HandlerFunc(func(c *gin.Context) {
			c.Next()
		})
	}

	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(cfg.RateLimit.RequestsPerMinute),
	}

	// In-memory store; a redis store would be needed for a multi-node
	// deployment.
	store := memory.NewStore()

	rateLimiter := limiter.New(store, rate)

	return ginlimiter.NewMiddleware(rateLimiter)
}
