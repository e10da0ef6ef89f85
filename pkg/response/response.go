// Package response shapes the JSON bodies of the machine-facing endpoints
// (health probe, rate-limit rejections). HTML pages do not use it.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
}

func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// Write sends r as JSON with its status code.
func (r APIResponse[T]) Write(ctx *gin.Context) {
	ctx.JSON(r.Status, r)
}

// Abort sends r as JSON and stops the handler chain.
func (r APIResponse[T]) Abort(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(r.Status, r)
}
