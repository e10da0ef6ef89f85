package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-registration-flow/internal/interface/http"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

// RegistrationModule wires the register -> verify -> set password steps.
// Public: /register, /verify
// Pending password only: /setpassword
type RegistrationModule struct {
	Handler *handlers.RegistrationHandler
}

func NewRegistrationModule(h *handlers.RegistrationHandler) *RegistrationModule {
	return &RegistrationModule{Handler: h}
}

func (m *RegistrationModule) Register(rg *gin.RouterGroup) {
	registerLimiter := limit(10, time.Minute, middleware.KeyByIPAndPath()) // 10 req/min per IP
	verifyLimiter := limit(30, time.Minute, middleware.KeyByIPAndPath())   // 30 req/min per IP
	setPasswordLimiter := limit(10, time.Minute, middleware.KeyBySession())

	rg.GET("/register", m.Handler.ShowRegister)
	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.GET("/verify", m.Handler.ShowVerify)
	rg.POST("/verify", verifyLimiter, m.Handler.Verify)

	pending := rg.Group("/")
	pending.Use(middleware.RequirePendingPassword())
	{
		pending.GET("/setpassword", m.Handler.ShowSetPassword)
		pending.POST("/setpassword", setPasswordLimiter, m.Handler.SetPassword)
	}
}
