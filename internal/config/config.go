// Package config loads runtime settings from the environment via viper.
// Every setting has a default except the secrets; the server refuses to
// start without a JWT secret.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Port   int
	DBPath string

	JWTSecret string
	TokenTTL  time.Duration

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	FrontendURL        string

	CacheSize int
	CacheTTL  time.Duration

	LogLevel string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/pollbox.db")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("cache_size", 512)
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("log_level", "info")

	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("db_path", "DB_PATH")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("token_ttl", "TOKEN_TTL")
	_ = v.BindEnv("github_client_id", "GITHUB_CLIENT_ID")
	_ = v.BindEnv("github_client_secret", "GITHUB_CLIENT_SECRET")
	_ = v.BindEnv("github_callback_url", "GITHUB_CALLBACK_URL")
	_ = v.BindEnv("frontend_url", "FRONTEND_URL")
	_ = v.BindEnv("cache_size", "CACHE_SIZE")
	_ = v.BindEnv("cache_ttl", "CACHE_TTL")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	cfg := &Config{
		Port:               v.GetInt("port"),
		DBPath:             v.GetString("db_path"),
		JWTSecret:          v.GetString("jwt_secret"),
		TokenTTL:           v.GetDuration("token_ttl"),
		GitHubClientID:     v.GetString("github_client_id"),
		GitHubClientSecret: v.GetString("github_client_secret"),
		GitHubCallbackURL:  v.GetString("github_callback_url"),
		FrontendURL:        v.GetString("frontend_url"),
		CacheSize:          v.GetInt("cache_size"),
		CacheTTL:           v.GetDuration("cache_ttl"),
		LogLevel:           v.GetString("log_level"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	return cfg, nil
}
