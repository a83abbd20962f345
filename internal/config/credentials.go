package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sean-rowe/weather-report/internal/core/domain"
)

// Environment variables holding provider credentials.
const (
	WeatherAPIKeyEnv = "APIKEY"
	GeocodeAPIKeyEnv = "GEOAPI"
	IPInfoTokenEnv   = "IPINFO"
)

// Credentials are the three provider keys every request needs.
type Credentials struct {
	WeatherAPIKey string
	GeocodeAPIKey string
	IPInfoToken   string
}

// EnvCredentialLoader reads provider keys from the process environment on every call.
type EnvCredentialLoader struct {
	lookup func(string) string
}

// NewEnvCredentialLoader creates a loader backed by os.Getenv.
func NewEnvCredentialLoader() *EnvCredentialLoader {
	return &EnvCredentialLoader{lookup: os.Getenv}
}

// Load returns the provider keys or a CONFIGURATION_MISSING error naming every
// variable that is unset or empty.
//
// Parameters:
//   - ctx: Unused; present so decorators can trace the lookup
//
// Returns:
//   - Credentials: All three keys
//   - error: *domain.WeatherError with CodeConfigurationMissing
func (l *EnvCredentialLoader) Load(_ context.Context) (Credentials, error) {
	creds := Credentials{
		WeatherAPIKey: strings.TrimSpace(l.lookup(WeatherAPIKeyEnv)),
		GeocodeAPIKey: strings.TrimSpace(l.lookup(GeocodeAPIKeyEnv)),
		IPInfoToken:   strings.TrimSpace(l.lookup(IPInfoTokenEnv)),
	}

	var missing []string

	if creds.WeatherAPIKey == "" {
		missing = append(missing, WeatherAPIKeyEnv+" (weather provider)")
	}

	if creds.GeocodeAPIKey == "" {
		missing = append(missing, GeocodeAPIKeyEnv+" (geocoding provider)")
	}

	if creds.IPInfoToken == "" {
		missing = append(missing, IPInfoTokenEnv+" (IP locator)")
	}

	if len(missing) > 0 {
		return Credentials{}, domain.NewError(
			domain.CodeConfigurationMissing,
			fmt.Sprintf("missing configuration: %s", strings.Join(missing, ", ")),
			nil,
		)
	}

	return creds, nil
}
