// Package config defines the process-wide configuration for the drought
// monitor. Configuration is loaded once at startup and immutable thereafter,
// following 12-Factor principles: OS environment first, then an optional
// .env file for local development. Any missing required value or invalid
// format fails startup immediately.
package config

import (
	"time"

	"droughtwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	Email    EmailConfig
	Alerts   AlertsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"20s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
}

// WeatherConfig holds the weather provider credentials and cache tuning.
type WeatherConfig struct {
	OpenWeatherAPIKey SecretString  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	BaseURL           string        `envconfig:"OPENWEATHER_BASE_URL"`
	RequestTimeout    time.Duration `envconfig:"WEATHER_REQUEST_TIMEOUT" default:"10s"`
	RiskCacheTTL      time.Duration `envconfig:"RISK_CACHE_TTL" default:"30m"`
}

// EmailConfig holds delivery provider credentials and sender identity.
type EmailConfig struct {
	SendGridAPIKey SecretString `envconfig:"SENDGRID_API_KEY" validate:"required"`
	FromAddress    string       `envconfig:"EMAIL_FROM_ADDRESS" default:"alerts@droughtwatch.example" validate:"email"`
	FromName       string       `envconfig:"EMAIL_FROM_NAME" default:"Drought Monitor"`
	RequestTimeout time.Duration `envconfig:"EMAIL_REQUEST_TIMEOUT" default:"10s"`
}

// AlertsConfig tunes the evaluation and dispatch pipeline.
type AlertsConfig struct {
	// RateLimitHours is the minimum spacing between notifications for one
	// (trigger, user) pair. Zero disables rate limiting.
	RateLimitHours int `envconfig:"ALERT_RATE_LIMIT_HOURS" default:"6" validate:"min=0"`
	// CycleConcurrency bounds how many users a full evaluation cycle
	// processes in parallel.
	CycleConcurrency int `envconfig:"ALERT_CYCLE_CONCURRENCY" default:"4" validate:"min=1"`
	// CycleInterval is how often the alert worker runs a full cycle.
	CycleInterval time.Duration `envconfig:"ALERT_CYCLE_INTERVAL" default:"1h"`
}

// RateLimitWindow converts the configured hours to a duration.
func (a AlertsConfig) RateLimitWindow() time.Duration {
	return time.Duration(a.RateLimitHours) * time.Hour
}
