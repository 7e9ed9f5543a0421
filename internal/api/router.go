package api

import (
	"html/template"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/dropgallery/internal/api/middleware"
)

// NewRouter wires middleware, templates and routes into a gin engine.
// Everything not claimed by the auth routes is a gallery navigation path.
func NewRouter(
	templates *template.Template,
	authHandler *AuthHandler,
	galleryHandler *GalleryHandler,
	logger *slog.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.DefaultLoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	router.SetHTMLTemplate(templates)

	router.GET("/login", authHandler.Login)
	router.GET("/oauthredirect", authHandler.OAuthRedirect)
	router.GET("/logout", authHandler.Logout)
	router.GET("/healthz", HealthHandler)

	// Catch-all: the wildcard match is the gallery path
	router.NoRoute(galleryHandler.Gallery)

	return router
}
