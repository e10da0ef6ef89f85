package router

import (
	"github.com/oksasatya/go-registration-flow/internal/application"
	"github.com/oksasatya/go-registration-flow/internal/container"
	handlers "github.com/oksasatya/go-registration-flow/internal/interface/http"
	"github.com/oksasatya/go-registration-flow/internal/interface/http/views"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
	"github.com/oksasatya/go-registration-flow/internal/router/modules"
)

func buildService() *application.Service {
	cfg := container.GetConfig()
	return application.NewService(
		container.GetUserRepository(),
		container.GetPendingRepository(),
		container.GetSender(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		cfg.PasswordCost,
		cfg.PendingRegistrationTTL,
	)
}

func buildSessions() *middleware.Sessions {
	return middleware.NewSessions(
		container.GetSessionStore(),
		container.GetJWT(),
		container.GetCookies(),
		container.GetConfig().SessionTTL,
		container.GetLogger(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Engine.SetHTMLTemplate(views.Templates())

	svc := buildService()
	sessions := buildSessions()
	logger := container.GetLogger()

	r.Use(sessions.Load())
	r.Add(modules.NewPageModule(handlers.NewPageHandler(container.GetRedis(), container.GetMongoDB(), container.GetPGPool())))
	r.Add(modules.NewRegistrationModule(handlers.NewRegistrationHandler(svc, sessions, logger)))
	r.Add(modules.NewAccountModule(handlers.NewAccountHandler(svc, sessions, logger)))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
