// Package ports declares the boundaries between the weather report core and its adapters.
package ports

import (
	"context"

	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

// WeatherService is consumed by the primary (HTTP and CLI) adapters.
type WeatherService interface {
	Locate(ctx context.Context, clientIP string) (domain.Coordinates, error)
	Report(ctx context.Context, query domain.LocationQuery) (*domain.WeatherReport, error)
	ReportForAddress(ctx context.Context, addr domain.Address) (*domain.WeatherReport, error)
	DetailedDay(ctx context.Context, date string, coords domain.Coordinates) (*domain.ForecastDay, error)
	Meteogram(ctx context.Context, coords domain.Coordinates) ([]domain.HourlyPoint, error)
}

// PlacesService backs the address form autocomplete.
type PlacesService interface {
	Autocomplete(ctx context.Context, input string) ([]domain.PlacePrediction, error)
	Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
}

// CredentialLoader supplies provider keys at the start of each request.
type CredentialLoader interface {
	Load(ctx context.Context) (config.Credentials, error)
}

// IPLocator resolves coordinates from an IP address. An empty clientIP locates
// the address the request to the provider originates from.
type IPLocator interface {
	Locate(ctx context.Context, clientIP, token string) (domain.Coordinates, error)
}

// Geocoder resolves a street address to its best-match coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, addr domain.Address, apiKey string) (domain.Coordinates, error)
}

// WeatherProvider fetches raw timelines for a location.
type WeatherProvider interface {
	Timelines(ctx context.Context, req domain.TimelineRequest, apiKey string) (*domain.TimelinesPayload, error)
}

// PlacesProvider proxies place autocomplete and place details lookups.
type PlacesProvider interface {
	Autocomplete(ctx context.Context, input, apiKey string) ([]domain.PlacePrediction, error)
	Details(ctx context.Context, placeID, apiKey string) (*domain.PlaceDetails, error)
}
