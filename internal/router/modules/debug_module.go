package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP
	rl := limit(120, time.Minute, middleware.KeyByIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
