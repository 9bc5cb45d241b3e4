package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Success writes payload with "success": true merged in.
func Success(ctx *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(status, body)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Abort is Error for middleware: later handlers are skipped.
func Abort(ctx *gin.Context, status int, code int, message string) {
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Fail renders err. AppErrors keep their status and message; anything else is logged and becomes a 500.
func Fail(ctx *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	if appErr.Status >= http.StatusInternalServerError {
		Logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
	}
	Error(ctx, appErr.Status, appErr.Code, appErr.Message)
}
