package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "sid"

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetSession writes the session cookie. A zero exp makes it a browser-session cookie.
func (m *Manager) SetSession(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := 0
	if !exp.IsZero() {
		maxAge = maxAgeFrom(exp)
	}
	c.SetCookie(SessionCookieName, token, maxAge, "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 1 {
		return 1
	}
	return sec
}
