package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-registration-flow/internal/interface/http"
)

type PageModule struct {
	Handler *handlers.PageHandler
}

func NewPageModule(h *handlers.PageHandler) *PageModule {
	return &PageModule{Handler: h}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Home)
	rg.GET("/contact", m.Handler.Contact)
	rg.GET("/healthz", m.Handler.Health)
}
