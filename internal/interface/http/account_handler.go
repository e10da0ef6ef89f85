package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/internal/application"
	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

const (
	MsgUserNotRegistered = "user not registered"
	MsgInvalidPassword   = "Invalid password"
)

// AccountHandler serves login, the dashboard and logout.
type AccountHandler struct {
	Svc      *application.Service
	Sessions *middleware.Sessions
	Logger   *logrus.Logger
}

func NewAccountHandler(svc *application.Service, sessions *middleware.Sessions, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Sessions: sessions, Logger: logger}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *AccountHandler) ShowLogin(c *gin.Context) {
	page(c, http.StatusOK, "login", gin.H{"title": "Login", "username": ""})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var f loginForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	u, err := h.Svc.Login(c.Request.Context(), f.Username, f.Password)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrUserNotRegistered):
		page(c, http.StatusUnauthorized, "login", gin.H{"title": "Login", "username": f.Username, "error": MsgUserNotRegistered})
		return
	case errors.Is(err, application.ErrInvalidPassword):
		page(c, http.StatusUnauthorized, "login", gin.H{"title": "Login", "username": f.Username, "error": MsgInvalidPassword})
		return
	default:
		internalError(c, h.Logger, err, "login failed")
		return
	}

	sess := middleware.CurrentSession(c)
	if err := h.Sessions.Renew(c, sess); err != nil {
		internalError(c, h.Logger, err, "rotate session failed")
		return
	}
	sess.Authenticate(entity.SessionUser{ID: u.ID, Username: u.Username, Email: u.Email})
	if err := h.Sessions.Save(c, sess); err != nil {
		internalError(c, h.Logger, err, "save session failed")
		return
	}
	h.Logger.WithFields(logrus.Fields{"user_id": u.ID, "request_id": c.GetString("request_id")}).Info("user logged in")
	c.Redirect(http.StatusFound, "/dashboard")
}

// Dashboard runs behind middleware.RequireAuthenticated.
func (h *AccountHandler) Dashboard(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	page(c, http.StatusOK, "dashboard", gin.H{"title": "Dashboard", "user": sess.User})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Destroy(c, middleware.CurrentSession(c)); err != nil {
		internalError(c, h.Logger, err, "logout failed")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
