package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-registration-flow/internal/container"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

// limit builds a per-route rate limiter from the container's Redis client.
// It is a pass-through when rate limiting is disabled.
func limit(max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	cfg := container.GetConfig()
	if cfg != nil && !cfg.RateLimitEnabled {
		return middleware.RateLimit(nil, max, window, key, nil)
	}
	var allow middleware.AllowFunc
	if cfg != nil && cfg.RateLimitAllowPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(container.GetRedis(), max, window, key, allow)
}
