package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

// MockCredentialLoader is a mock implementation of the CredentialLoader interface.
type MockCredentialLoader struct {
	mock.Mock
}

// Load mocks the credential loader Load method.
func (m *MockCredentialLoader) Load(ctx context.Context) (config.Credentials, error) {
	args := m.Called(ctx)

	return args.Get(0).(config.Credentials), args.Error(1)
}

// MockIPLocator is a mock implementation of the IPLocator interface.
type MockIPLocator struct {
	mock.Mock
}

// Locate mocks the IP locator Locate method.
func (m *MockIPLocator) Locate(ctx context.Context, clientIP, token string) (domain.Coordinates, error) {
	args := m.Called(ctx, clientIP, token)

	return args.Get(0).(domain.Coordinates), args.Error(1)
}

// MockGeocoder is a mock implementation of the Geocoder interface.
type MockGeocoder struct {
	mock.Mock
}

// Geocode mocks the geocoder Geocode method.
func (m *MockGeocoder) Geocode(ctx context.Context, addr domain.Address, apiKey string) (domain.Coordinates, error) {
	args := m.Called(ctx, addr, apiKey)

	return args.Get(0).(domain.Coordinates), args.Error(1)
}

// MockWeatherProvider is a mock implementation of the WeatherProvider interface.
type MockWeatherProvider struct {
	mock.Mock
}

// Timelines mocks the weather provider Timelines method.
//
// Parameters:
//   - ctx: Context for the request
//   - req: Timeline request
//   - apiKey: Weather API key
//
// Returns:
//   - *domain.TimelinesPayload: Mocked payload
//   - error: Mocked error if configured
func (m *MockWeatherProvider) Timelines(ctx context.Context, req domain.TimelineRequest, apiKey string) (*domain.TimelinesPayload, error) {
	args := m.Called(ctx, req, apiKey)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.TimelinesPayload), args.Error(1)
}

// MockPlacesProvider is a mock implementation of the PlacesProvider interface.
type MockPlacesProvider struct {
	mock.Mock
}

// Autocomplete mocks the places provider Autocomplete method.
func (m *MockPlacesProvider) Autocomplete(ctx context.Context, input, apiKey string) ([]domain.PlacePrediction, error) {
	args := m.Called(ctx, input, apiKey)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.PlacePrediction), args.Error(1)
}

// Details mocks the places provider Details method.
func (m *MockPlacesProvider) Details(ctx context.Context, placeID, apiKey string) (*domain.PlaceDetails, error) {
	args := m.Called(ctx, placeID, apiKey)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PlaceDetails), args.Error(1)
}
