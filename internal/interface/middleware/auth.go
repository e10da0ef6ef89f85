package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuthenticated redirects to /login unless the session holds a user.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePendingPassword redirects to /register unless the session passed
// passphrase verification.
func RequirePendingPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).AwaitingPassword() {
			c.Redirect(http.StatusFound, "/register")
			c.Abort()
			return
		}
		c.Next()
	}
}
