// file: internal/config/config.go
// version: 1.0.0
// guid: 7d2e5f60-8192-a3b4-c5d6-e7f809102132

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Exchange endpoint and the fixed client credentials used for every
	// token exchange. The cache itself never touches these.
	ExchangeEndpoint string
	ClientID         string
	ClientSecret     string

	// TokenTTL is how long exchanged tokens are cached.
	TokenTTL time.Duration
	// CleanupInterval drives the background sweep of expired entries.
	CleanupInterval time.Duration

	Host string
	Port string

	BasicAuthEnabled      bool
	BasicAuthUsername     string
	BasicAuthPassword     string
	BasicAuthPasswordHash string // bcrypt hash; takes precedence over the plain password

	RateLimitPerMinute int
	RateLimitBurst     int
	JSONBodyLimitMB    int

	// WatchCredentials reloads the credentials file and clears the cache
	// when the file changes on disk.
	WatchCredentials bool
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("token_ttl", "1h")
	viper.SetDefault("cleanup_interval", "10m")
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", "8080")
	viper.SetDefault("rate_limit_per_minute", 60)
	viper.SetDefault("rate_limit_burst", 10)
	viper.SetDefault("json_body_limit_mb", 1)

	AppConfig = Config{
		ExchangeEndpoint:      viper.GetString("exchange_endpoint"),
		ClientID:              viper.GetString("client_id"),
		ClientSecret:          viper.GetString("client_secret"),
		TokenTTL:              viper.GetDuration("token_ttl"),
		CleanupInterval:       viper.GetDuration("cleanup_interval"),
		Host:                  viper.GetString("host"),
		Port:                  viper.GetString("port"),
		BasicAuthEnabled:      viper.GetBool("basic_auth_enabled"),
		BasicAuthUsername:     viper.GetString("basic_auth_username"),
		BasicAuthPassword:     viper.GetString("basic_auth_password"),
		BasicAuthPasswordHash: viper.GetString("basic_auth_password_hash"),
		RateLimitPerMinute:    viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:        viper.GetInt("rate_limit_burst"),
		JSONBodyLimitMB:       viper.GetInt("json_body_limit_mb"),
		WatchCredentials:      viper.GetBool("watch_credentials"),
	}

	if AppConfig.TokenTTL <= 0 {
		AppConfig.TokenTTL = time.Hour
	}
	if AppConfig.CleanupInterval <= 0 {
		AppConfig.CleanupInterval = 10 * time.Minute
	}
}
