package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/internal/application"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
)

const (
	MsgInvalidUsername      = "Username must be 1-30 characters long and can only contain letters, numbers, periods, and underscores."
	MsgMissingContact       = "Email and phone are required."
	MsgUsernameTaken        = "username taken"
	MsgEmailTaken           = "user already exists with this email."
	MsgPhoneTaken           = "user already exists with this number."
	MsgInvalidPassphrase    = "Invalid passphrase"
	MsgWeakPassword         = "Password must be 8-12 characters long and include at least one uppercase letter, one lowercase letter, one number, and one special character."
	MsgRegistrationNotFound = "registration not found, please register again."
	MsgAccountExists        = "an account already exists for this registration, please log in."
)

// RegistrationHandler serves the register, verify and set-password steps.
type RegistrationHandler struct {
	Svc      *application.Service
	Sessions *middleware.Sessions
	Logger   *logrus.Logger
}

func NewRegistrationHandler(svc *application.Service, sessions *middleware.Sessions, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{Svc: svc, Sessions: sessions, Logger: logger}
}

type registerForm struct {
	Email    string `form:"email"`
	Username string `form:"username" binding:"username"`
	Phone    string `form:"phone"`
}

type verifyForm struct {
	Email      string `form:"email"`
	Passphrase string `form:"passphrase"`
}

type setPasswordForm struct {
	Password string `form:"password" binding:"strongpwd"`
}

func (f registerForm) values() gin.H {
	return gin.H{"email": f.Email, "username": f.Username, "phone": f.Phone}
}

func (h *RegistrationHandler) ShowRegister(c *gin.Context) {
	page(c, http.StatusOK, "register", gin.H{"title": "Register"})
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	var f registerForm
	if err := c.ShouldBind(&f); err != nil {
		if !fieldFailed(err, "username") {
			c.String(http.StatusBadRequest, "Bad Request")
			return
		}
		h.renderRegister(c, http.StatusUnprocessableEntity, MsgInvalidUsername, f.values())
		return
	}

	err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    f.Email,
		Username: f.Username,
		Phone:    f.Phone,
	})
	switch {
	case err == nil:
	case errors.Is(err, application.ErrInvalidUsername):
		h.renderRegister(c, http.StatusUnprocessableEntity, MsgInvalidUsername, f.values())
		return
	case errors.Is(err, application.ErrMissingContact):
		h.renderRegister(c, http.StatusUnprocessableEntity, MsgMissingContact, f.values())
		return
	case errors.Is(err, application.ErrUsernameTaken):
		h.renderRegister(c, http.StatusConflict, MsgUsernameTaken, f.values())
		return
	case errors.Is(err, application.ErrEmailTaken):
		h.renderRegister(c, http.StatusConflict, MsgEmailTaken, f.values())
		return
	case errors.Is(err, application.ErrPhoneTaken):
		h.renderRegister(c, http.StatusConflict, MsgPhoneTaken, f.values())
		return
	default:
		internalError(c, h.Logger, err, "register failed")
		return
	}

	sess := middleware.CurrentSession(c)
	sess.Registering(f.Email)
	if err := h.Sessions.Save(c, sess); err != nil {
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("save registering session failed")
	}
	c.Redirect(http.StatusFound, "/verify?email="+url.QueryEscape(f.Email))
}

func (h *RegistrationHandler) renderRegister(c *gin.Context, status int, msg string, values gin.H) {
	values["title"] = "Register"
	values["error"] = msg
	page(c, status, "register", values)
}

func (h *RegistrationHandler) ShowVerify(c *gin.Context) {
	page(c, http.StatusOK, "verify", gin.H{"title": "Verify", "email": c.Query("email")})
}

func (h *RegistrationHandler) Verify(c *gin.Context) {
	var f verifyForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	p, err := h.Svc.Verify(c.Request.Context(), f.Email, f.Passphrase)
	if errors.Is(err, application.ErrInvalidPassphrase) {
		page(c, http.StatusUnauthorized, "verify", gin.H{"title": "Verify", "email": f.Email, "error": MsgInvalidPassphrase})
		return
	}
	if err != nil {
		internalError(c, h.Logger, err, "verify failed")
		return
	}

	sess := middleware.CurrentSession(c)
	sess.PendingPassword(p.Email, p.Username)
	if err := h.Sessions.Save(c, sess); err != nil {
		internalError(c, h.Logger, err, "save session failed")
		return
	}
	c.Redirect(http.StatusFound, "/setpassword")
}

// ShowSetPassword and SetPassword run behind middleware.RequirePendingPassword.
func (h *RegistrationHandler) ShowSetPassword(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	page(c, http.StatusOK, "setpassword", gin.H{"title": "Set password", "email": sess.Email, "username": sess.Username})
}

func (h *RegistrationHandler) SetPassword(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	weak := gin.H{"title": "Set password", "email": sess.Email, "username": sess.Username, "error": MsgWeakPassword}

	var f setPasswordForm
	if err := c.ShouldBind(&f); err != nil {
		if !fieldFailed(err, "password") {
			c.String(http.StatusBadRequest, "Bad Request")
			return
		}
		page(c, http.StatusUnprocessableEntity, "setpassword", weak)
		return
	}

	// the email comes from the verified session, never from the form
	_, err := h.Svc.SetPassword(c.Request.Context(), sess.Email, f.Password)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrWeakPassword):
		page(c, http.StatusUnprocessableEntity, "setpassword", weak)
		return
	case errors.Is(err, application.ErrRegistrationNotFound):
		sess.Reset()
		if err := h.Sessions.Save(c, sess); err != nil {
			internalError(c, h.Logger, err, "reset session failed")
			return
		}
		h.renderRegister(c, http.StatusNotFound, MsgRegistrationNotFound, gin.H{})
		return
	case errors.Is(err, application.ErrAccountExists):
		sess.Reset()
		if err := h.Sessions.Save(c, sess); err != nil {
			internalError(c, h.Logger, err, "reset session failed")
			return
		}
		page(c, http.StatusConflict, "login", gin.H{"title": "Login", "error": MsgAccountExists})
		return
	case errors.Is(err, application.ErrUsernameTaken), errors.Is(err, application.ErrPhoneTaken):
		values := gin.H{"email": sess.Email, "username": sess.Username}
		msg := MsgUsernameTaken
		if errors.Is(err, application.ErrPhoneTaken) {
			msg = MsgPhoneTaken
		}
		sess.Reset()
		if err := h.Sessions.Save(c, sess); err != nil {
			internalError(c, h.Logger, err, "reset session failed")
			return
		}
		h.renderRegister(c, http.StatusConflict, msg, values)
		return
	default:
		internalError(c, h.Logger, err, "set password failed")
		return
	}

	sess.Reset()
	if err := h.Sessions.Save(c, sess); err != nil {
		internalError(c, h.Logger, err, "save session failed")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
