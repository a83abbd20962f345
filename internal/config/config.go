// Package config provides centralized configuration management for the weather report service.
// It loads configuration from environment variables (optionally seeded from a .env file)
// with sensible defaults, supporting development and production deployments.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration settings for the weather report service.
// Provider credentials are not part of it: they are read per request through
// a CredentialLoader so a missing key fails the request instead of the process.
type Config struct {
	Server        ServerConfig
	Observability ObservabilityConfig
	External      ExternalConfig
	Credentials   CredentialsConfig
}

// ServerConfig contains HTTP server settings and timeouts.
type ServerConfig struct {
	Port         string
	Environment  string
	StaticDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ObservabilityConfig contains settings for distributed tracing and metrics.
type ObservabilityConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
}

// ExternalConfig contains settings for the upstream API integrations.
type ExternalConfig struct {
	WeatherBaseURL  string
	GeocodeBaseURL  string
	IPInfoBaseURL   string
	WeatherTimezone string
	WeatherUnits    string
	HTTPTimeout     time.Duration

	// ForwardClientIP asks the IP locator for the caller's address instead of the server's
	ForwardClientIP bool
}

// CredentialsConfig controls how provider keys are loaded.
type CredentialsConfig struct {
	// CacheTTL keeps successfully loaded keys for this long; zero disables caching
	CacheTTL time.Duration
}

// Load reads configuration from environment variables and returns a Config instance.
// A .env file in the working directory, when present, is loaded first without
// overriding variables that are already set.
//
// Returns:
//   - *Config: Configuration with values from environment or defaults
func Load() *Config {
	_ = godotenv.Load()

	environment := getEnv("ENVIRONMENT", "development")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  environment,
			StaticDir:    getEnv("STATIC_DIR", "static"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Observability: ObservabilityConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:    "weather-report",
			ServiceVersion: getEnv("VERSION", "1.0.0"),
			Environment:    environment,
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:     getEnvAsFloat("OTEL_SAMPLE_RATE", 0.1),
		},
		External: ExternalConfig{
			WeatherBaseURL:  getEnv("WEATHER_BASE_URL", "https://api.tomorrow.io"),
			GeocodeBaseURL:  getEnv("GEOCODE_BASE_URL", "https://maps.googleapis.com"),
			IPInfoBaseURL:   getEnv("IPINFO_BASE_URL", "https://ipinfo.io"),
			WeatherTimezone: getEnv("WEATHER_TIMEZONE", "America/Los_Angeles"),
			WeatherUnits:    "imperial",
			HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
			ForwardClientIP: getEnvAsBool("IPINFO_FORWARD_CLIENT_IP", false),
		},
		Credentials: CredentialsConfig{
			CacheTTL: getEnvAsDuration("CREDENTIALS_CACHE_TTL", 0),
		},
	}
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// getEnv retrieves an environment variable value with a fallback default.
//
// Parameters:
//   - key: Environment variable name
//   - defaultValue: Value to use if variable is not set
//
// Returns:
//   - string: Environment value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float with a fallback default.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}

	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean with a fallback default.
//
// Parameters:
//   - key: Environment variable name
//   - defaultValue: Value to use if variable is not set or invalid
//
// Returns:
//   - bool: Parsed boolean value or default
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration ("10s", "1m").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}

	return defaultValue
}
