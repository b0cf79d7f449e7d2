package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/doubt-service/internal/utils"
)

// BaseHandler provides shared logging helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with optional key-value pairs
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.LoggerFromContext(c, h.logger)
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Info(msg, args...)
}

// LogError logs a handler error with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.LoggerFromContext(c, h.logger)
	args = append(args, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Error(msg, args...)
}

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the standard payload for operations without a body
type SuccessResponse struct {
	Message string `json:"message"`
}
