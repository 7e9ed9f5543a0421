package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware returns a panic recovery middleware that logs the stack
// server-side and answers with a generic error page, never the panic detail.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("panic", recovered),
			slog.String("stack", string(debug.Stack())),
		)

		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Message":   "Something went wrong. Please try again.",
			"RequestID": GetRequestID(c),
		})
		c.Abort()
	})
}
