package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// realIPHeaders are consulted in order; X-Forwarded-For contributes its left-most entry.
var realIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP sets the client IP used for rate limiting into the Gin context
// (key: "real_ip"), falling back to c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", realIP(c))
		c.Next()
	}
}

func realIP(c *gin.Context) string {
	for _, h := range realIPHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
