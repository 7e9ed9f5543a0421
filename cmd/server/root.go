package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/dropgallery/internal/api"
	"github.com/ericfisherdev/dropgallery/internal/config"
	"github.com/ericfisherdev/dropgallery/internal/dropbox"
	"github.com/ericfisherdev/dropgallery/internal/repository"
	"github.com/ericfisherdev/dropgallery/internal/services"
	"github.com/ericfisherdev/dropgallery/web"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dropgallery",
	Short: "Web photo gallery backed by a Dropbox app folder",
	Long: `dropgallery serves a browsable photo gallery out of a Dropbox app
folder. Users sign in with their Dropbox account over OAuth2; images are
served through short-lived temporary links so the access token never
reaches the browser.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gallery server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, env vars override)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.NewConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions, states, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}

	dropboxClient := dropbox.NewClient(dropbox.Config{
		Timeout:  cfg.GetProviderTimeout(),
		RetryMax: cfg.GetProviderRetries(),
	})

	sessionManager := services.NewSessionManager(sessions,
		services.DefaultSessionCookieConfig(cfg.IsProduction()))
	oauthService := services.NewOAuthService(services.OAuthConfig{
		ClientID:     cfg.GetDropboxAppKey(),
		ClientSecret: cfg.GetDropboxAppSecret(),
		RedirectURL:  cfg.GetOAuthRedirectURL(),
		StateTTL:     cfg.GetStateTTL(),
	}, states, dropboxClient, logger)
	galleryService := services.NewGalleryService(dropboxClient, cfg.GetMaxListingPages(), logger)

	errorRenderer := api.NewErrorRenderer(logger)
	authHandler := api.NewAuthHandler(oauthService, sessionManager, errorRenderer, logger)
	galleryHandler := api.NewGalleryHandler(galleryService, sessionManager, errorRenderer)

	router := api.NewRouter(web.Templates(), authHandler, galleryHandler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.GetServerPort(),
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// buildStores selects the session and state store backends. Redis keeps
// sessions across restarts and multiple instances; memory suits development.
func buildStores(ctx context.Context, cfg *config.AppConfig) (repository.SessionRepository, repository.OAuthStateRepository, error) {
	if !cfg.GetRedisEnabled() {
		return repository.NewMemorySessionRepository(),
			repository.NewMemoryOAuthStateRepository(nil), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return repository.NewRedisSessionRepository(client, cfg.GetSessionTTL()),
		repository.NewRedisOAuthStateRepository(client), nil
}
