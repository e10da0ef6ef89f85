package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
)

const CtxSessionKey = "session"

// Sessions resolves the sid cookie to a server-side session and persists
// session changes made by handlers.
type Sessions struct {
	Store   repository.SessionStore
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
	TTL     time.Duration
	Logger  *logrus.Logger
}

func NewSessions(store repository.SessionStore, jwt *helpers.JWTManager, cookies *helpers.Manager, ttl time.Duration, logger *logrus.Logger) *Sessions {
	return &Sessions{Store: store, JWT: jwt, Cookies: cookies, TTL: ttl, Logger: logger}
}

// Load puts the request's session into the Gin context. A missing, invalid or
// expired cookie yields an anonymous session without an id.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := entity.NewAnonymousSession()
		if token, err := c.Cookie(helpers.SessionCookieName); err == nil && token != "" {
			claims, err := s.JWT.ParseSessionToken(token)
			if err == nil {
				loaded, err := s.Store.Load(c.Request.Context(), claims.SessionID)
				switch {
				case err == nil:
					sess = loaded
				case errors.Is(err, repository.ErrNotFound):
				default:
					s.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("load session failed")
					c.String(http.StatusInternalServerError, "Internal Server Error")
					c.Abort()
					return
				}
			}
		}
		c.Set(CtxSessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session loaded by Load, or an anonymous one.
func CurrentSession(c *gin.Context) *entity.Session {
	if v, ok := c.Get(CtxSessionKey); ok {
		if sess, ok := v.(*entity.Session); ok {
			return sess
		}
	}
	sess := entity.NewAnonymousSession()
	c.Set(CtxSessionKey, sess)
	return sess
}

// Save persists sess, assigning an id on first save, and refreshes the cookie.
func (s *Sessions) Save(c *gin.Context, sess *entity.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if err := s.Store.Save(c.Request.Context(), sess, s.TTL); err != nil {
		return err
	}
	token, exp, err := s.JWT.GenerateSessionToken(sess.ID)
	if err != nil {
		return err
	}
	s.Cookies.SetSession(c, token, exp)
	return nil
}

// Destroy removes the session from the store and clears the cookie.
func (s *Sessions) Destroy(c *gin.Context, sess *entity.Session) error {
	if sess.ID != "" {
		if err := s.Store.Destroy(c.Request.Context(), sess.ID); err != nil {
			return err
		}
	}
	sess.ID = ""
	sess.Reset()
	s.Cookies.Clear(c)
	return nil
}

// Renew drops the stored session so the next Save issues a fresh id.
// Called on login to prevent session fixation.
func (s *Sessions) Renew(c *gin.Context, sess *entity.Session) error {
	if sess.ID == "" {
		return nil
	}
	if err := s.Store.Destroy(c.Request.Context(), sess.ID); err != nil {
		return err
	}
	sess.ID = ""
	return nil
}
