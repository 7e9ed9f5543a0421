// Package config provides application configuration management.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the full application configuration. Values come from an
// optional config file, overridden by DROPGALLERY_* environment variables.
type AppConfig struct {
	serverPort   string
	environment  string
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	dropboxAppKey    string
	dropboxAppSecret string
	oauthRedirectURL string
	stateTTL         time.Duration

	sessionTTL      time.Duration
	providerTimeout time.Duration
	providerRetries int
	maxListingPages int

	redisEnabled  bool
	redisAddr     string
	redisPassword string
	redisDB       int
}

// NewConfig loads the configuration from the given file (optional) and the
// environment.
func NewConfig(cfgFile string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("dropbox.app_key", "")
	v.SetDefault("dropbox.app_secret", "")
	v.SetDefault("dropbox.redirect_url", "http://localhost:3000/oauthredirect")
	v.SetDefault("dropbox.timeout", "30s")
	v.SetDefault("dropbox.retries", 2)

	v.SetDefault("oauth.state_ttl", "600s")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("gallery.max_pages", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetEnvPrefix("DROPGALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &AppConfig{
		serverPort:       v.GetString("server.port"),
		environment:      v.GetString("server.environment"),
		readTimeout:      v.GetDuration("server.read_timeout"),
		writeTimeout:     v.GetDuration("server.write_timeout"),
		idleTimeout:      v.GetDuration("server.idle_timeout"),
		dropboxAppKey:    v.GetString("dropbox.app_key"),
		dropboxAppSecret: v.GetString("dropbox.app_secret"),
		oauthRedirectURL: v.GetString("dropbox.redirect_url"),
		providerTimeout:  v.GetDuration("dropbox.timeout"),
		providerRetries:  v.GetInt("dropbox.retries"),
		stateTTL:         v.GetDuration("oauth.state_ttl"),
		sessionTTL:       v.GetDuration("session.ttl"),
		maxListingPages:  v.GetInt("gallery.max_pages"),
		redisEnabled:     v.GetBool("redis.enabled"),
		redisAddr:        v.GetString("redis.addr"),
		redisPassword:    v.GetString("redis.password"),
		redisDB:          v.GetInt("redis.db"),
	}, nil
}

// GetServerPort returns the HTTP listen port.
func (c *AppConfig) GetServerPort() string { return c.serverPort }

// GetEnvironment returns the application environment.
func (c *AppConfig) GetEnvironment() string { return c.environment }

// IsProduction returns true when running in production.
func (c *AppConfig) IsProduction() bool { return c.environment == "production" }

// GetReadTimeout returns the server read timeout.
func (c *AppConfig) GetReadTimeout() time.Duration { return c.readTimeout }

// GetWriteTimeout returns the server write timeout.
func (c *AppConfig) GetWriteTimeout() time.Duration { return c.writeTimeout }

// GetIdleTimeout returns the server idle timeout.
func (c *AppConfig) GetIdleTimeout() time.Duration { return c.idleTimeout }

// GetDropboxAppKey returns the OAuth client ID.
func (c *AppConfig) GetDropboxAppKey() string { return c.dropboxAppKey }

// GetDropboxAppSecret returns the OAuth client secret.
func (c *AppConfig) GetDropboxAppSecret() string { return c.dropboxAppSecret }

// GetOAuthRedirectURL returns the registered OAuth callback URL.
func (c *AppConfig) GetOAuthRedirectURL() string { return c.oauthRedirectURL }

// GetStateTTL returns the anti-forgery state token lifetime.
func (c *AppConfig) GetStateTTL() time.Duration { return c.stateTTL }

// GetSessionTTL returns the server-side session lifetime.
func (c *AppConfig) GetSessionTTL() time.Duration { return c.sessionTTL }

// GetProviderTimeout returns the per-request timeout for provider calls.
func (c *AppConfig) GetProviderTimeout() time.Duration { return c.providerTimeout }

// GetProviderRetries returns the retry limit for provider calls.
func (c *AppConfig) GetProviderRetries() int { return c.providerRetries }

// GetMaxListingPages returns the cursor-following bound per gallery render.
func (c *AppConfig) GetMaxListingPages() int { return c.maxListingPages }

// GetRedisEnabled returns whether redis backs the session and state stores.
func (c *AppConfig) GetRedisEnabled() bool { return c.redisEnabled }

// GetRedisAddr returns the redis address.
func (c *AppConfig) GetRedisAddr() string { return c.redisAddr }

// GetRedisPassword returns the redis password.
func (c *AppConfig) GetRedisPassword() string { return c.redisPassword }

// GetRedisDB returns the redis database number.
func (c *AppConfig) GetRedisDB() int { return c.redisDB }

// Validate checks if the configuration is valid.
func (c *AppConfig) Validate() error {
	if c.serverPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.dropboxAppKey == "" {
		return fmt.Errorf("dropbox app key cannot be empty")
	}
	if c.dropboxAppSecret == "" {
		return fmt.Errorf("dropbox app secret cannot be empty")
	}
	if c.oauthRedirectURL == "" {
		return fmt.Errorf("oauth redirect URL cannot be empty")
	}
	if c.stateTTL <= 0 {
		return fmt.Errorf("oauth state TTL must be positive")
	}
	if c.environment != "development" && c.environment != "staging" && c.environment != "production" {
		return fmt.Errorf("environment must be one of: development, staging, production")
	}
	return nil
}
