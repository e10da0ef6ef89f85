package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/pkg/validation"
)

// page renders an HTML view; data keys are the form fields plus "error".
func page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	c.HTML(status, name+".tmpl", data)
}

// internalError logs err and writes the opaque 500 response.
func internalError(c *gin.Context, logger *logrus.Logger, err error, msg string) {
	logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	}).Error(msg)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// fieldFailed reports whether err is a validation error on the named form field.
func fieldFailed(err error, field string) bool {
	_, ok := validation.ToDetails(err)[field]
	return ok
}
