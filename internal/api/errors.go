// Package api provides the HTTP handlers and routing for the gallery.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/dropgallery/internal/api/middleware"
	"github.com/ericfisherdev/dropgallery/internal/domain"
)

// ErrorRenderer converts failures into uniform user-facing error pages while
// logging the detail server-side. Provider payloads, secrets and stack
// detail never reach the browser.
type ErrorRenderer struct {
	logger *slog.Logger
}

// NewErrorRenderer creates a new error renderer.
func NewErrorRenderer(logger *slog.Logger) *ErrorRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorRenderer{logger: logger}
}

// Render logs the error with request context and answers with the sanitized
// error page.
func (r *ErrorRenderer) Render(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	attrs := []any{
		slog.String("request_id", requestID),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	}

	var domainErr *domain.Error
	statusCode := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	if errors.As(err, &domainErr) {
		attrs = append(attrs,
			slog.String("error_type", string(domainErr.Type)),
			slog.String("error_code", domainErr.Code),
			slog.String("error_message", domainErr.Message),
		)
		if domainErr.Cause != nil {
			attrs = append(attrs, slog.String("underlying_error", domainErr.Cause.Error()))
		}
		statusCode, message = sanitizeForClient(domainErr)
	} else {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	r.logger.ErrorContext(c.Request.Context(), "request failed", attrs...)

	c.HTML(statusCode, "error.html", gin.H{
		"Message":   message,
		"RequestID": requestID,
	})
	c.Abort()
}

// sanitizeForClient maps a domain error to a status code and a fixed
// user-safe message. Domain messages stay in the logs.
func sanitizeForClient(err *domain.Error) (int, string) {
	switch err.Type {
	case domain.OAuthError:
		return http.StatusBadRequest, "Sign-in failed. Please try logging in again."
	case domain.GalleryError:
		return http.StatusBadGateway, "Could not load images. Please try again."
	case domain.SessionError:
		return http.StatusInternalServerError, "Your session could not be processed. Please try again."
	case domain.ValidationError:
		return http.StatusBadRequest, "The request could not be processed."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}
