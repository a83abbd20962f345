package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sean-rowe/weather-report/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "STATIC_DIR", "WEATHER_TIMEZONE", "HTTP_TIMEOUT", "IPINFO_FORWARD_CLIENT_IP", "CREDENTIALS_CACHE_TTL", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "static", cfg.Server.StaticDir)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "America/Los_Angeles", cfg.External.WeatherTimezone)
	assert.Equal(t, "imperial", cfg.External.WeatherUnits)
	assert.Equal(t, 10*time.Second, cfg.External.HTTPTimeout)
	assert.False(t, cfg.External.ForwardClientIP)
	assert.Zero(t, cfg.Credentials.CacheTTL)
	assert.True(t, cfg.Observability.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("IPINFO_FORWARD_CLIENT_IP", "true")
	t.Setenv("CREDENTIALS_CACHE_TTL", "1m")
	t.Setenv("OTEL_SAMPLE_RATE", "0.5")
	t.Setenv("WEATHER_BASE_URL", "http://localhost:9999")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 3*time.Second, cfg.External.HTTPTimeout)
	assert.True(t, cfg.External.ForwardClientIP)
	assert.Equal(t, time.Minute, cfg.Credentials.CacheTTL)
	assert.Equal(t, 0.5, cfg.Observability.SampleRate)
	assert.Equal(t, "http://localhost:9999", cfg.External.WeatherBaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("IPINFO_FORWARD_CLIENT_IP", "maybe")
	t.Setenv("OTEL_SAMPLE_RATE", "most")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.External.HTTPTimeout)
	assert.False(t, cfg.External.ForwardClientIP)
	assert.Equal(t, 0.1, cfg.Observability.SampleRate)
}

func loaderFor(env map[string]string) *EnvCredentialLoader {
	return &EnvCredentialLoader{lookup: func(key string) string { return env[key] }}
}

func TestEnvCredentialLoader_Load(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		creds, err := loaderFor(map[string]string{
			"APIKEY": "weather",
			"GEOAPI": " geo ",
			"IPINFO": "token",
		}).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, Credentials{WeatherAPIKey: "weather", GeocodeAPIKey: "geo", IPInfoToken: "token"}, creds)
	})

	t.Run("reports every missing variable", func(t *testing.T) {
		_, err := loaderFor(map[string]string{"GEOAPI": "geo", "IPINFO": "  "}).Load(context.Background())

		var weatherErr *domain.WeatherError

		require.ErrorAs(t, err, &weatherErr)
		assert.Equal(t, domain.CodeConfigurationMissing, weatherErr.Code)
		assert.Equal(t, "missing configuration: APIKEY (weather provider), IPINFO (IP locator)", weatherErr.Message)
	})

	t.Run("reads the environment on every call", func(t *testing.T) {
		t.Setenv("APIKEY", "")
		t.Setenv("GEOAPI", "geo")
		t.Setenv("IPINFO", "token")

		loader := NewEnvCredentialLoader()

		_, err := loader.Load(context.Background())
		require.Error(t, err)

		t.Setenv("APIKEY", "weather")

		creds, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "weather", creds.WeatherAPIKey)
	})
}
