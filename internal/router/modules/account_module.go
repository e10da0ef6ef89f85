package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-registration-flow/internal/interface/http"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

// AccountModule wires login, logout and the session-gated dashboard.
type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	loginLimiter := limit(10, time.Minute, middleware.KeyByIPAndPath()) // 10 req/min per IP

	rg.GET("/login", m.Handler.ShowLogin)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/logout", m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuthenticated())
	{
		auth.GET("/dashboard", m.Handler.Dashboard)
	}
}
