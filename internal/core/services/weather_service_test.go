// Package services contain unit tests for the weather report service.
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

var testCredentials = config.Credentials{
	WeatherAPIKey: "weather-key",
	GeocodeAPIKey: "geo-key",
	IPInfoToken:   "ip-token",
}

type serviceMocks struct {
	credentials *MockCredentialLoader
	locator     *MockIPLocator
	geocoder    *MockGeocoder
	provider    *MockWeatherProvider
}

func newTestService(t *testing.T) (*weatherService, serviceMocks) {
	t.Helper()

	mocks := serviceMocks{
		credentials: new(MockCredentialLoader),
		locator:     new(MockIPLocator),
		geocoder:    new(MockGeocoder),
		provider:    new(MockWeatherProvider),
	}

	t.Cleanup(func() {
		mocks.credentials.AssertExpectations(t)
		mocks.locator.AssertExpectations(t)
		mocks.geocoder.AssertExpectations(t)
		mocks.provider.AssertExpectations(t)
	})

	service := NewWeatherService(mocks.credentials, mocks.locator, mocks.geocoder, mocks.provider, zap.NewNop()).(*weatherService)

	return service, mocks
}

func reportPayload() *domain.TimelinesPayload {
	return &domain.TimelinesPayload{Data: domain.TimelinesData{Timelines: []domain.Timeline{
		{
			Timestep: domain.TimestepDaily,
			Intervals: []domain.Interval{
				{StartTime: "2024-06-01T06:00:00-07:00", Values: map[string]interface{}{"temperatureMax": 75.0}},
				{StartTime: "2024-06-02T06:00:00-07:00", Values: map[string]interface{}{"temperatureMax": 78.0}},
			},
		},
		{
			Timestep: domain.TimestepHourly,
			Intervals: []domain.Interval{
				{StartTime: "2024-06-01T06:00:00-07:00", Values: map[string]interface{}{"temperature": 61.0}},
			},
		},
		{
			Timestep: domain.TimestepCurrent,
			Intervals: []domain.Interval{
				{StartTime: "2024-06-01T06:10:00-07:00", Values: map[string]interface{}{"temperature": 62.0}},
			},
		},
	}}}
}

func reportRequest(coords domain.Coordinates) domain.TimelineRequest {
	return domain.TimelineRequest{
		Coordinates: coords,
		Fields:      domain.ReportFields,
		Timesteps:   domain.ReportTimesteps,
	}
}

// TestWeatherService_ReportForAddress tests the address pipeline with various scenarios.
func TestWeatherService_ReportForAddress(t *testing.T) {
	addr := domain.Address{Street: "1600 Amphitheatre Pkwy", City: "Mountain View", State: "CA"}
	coords := domain.Coordinates{Latitude: 37.422, Longitude: -122.084}

	t.Run("successful report", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.geocoder.On("Geocode", mock.Anything, addr, "geo-key").Return(coords, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").Return(reportPayload(), nil)

		report, err := service.ReportForAddress(context.Background(), addr)

		require.NoError(t, err)
		assert.Equal(t, coords, report.Coordinates)
		assert.Len(t, report.Forecast, 2)
		assert.Len(t, report.Hourly, 1)
		require.NotNil(t, report.Current)
		assert.Equal(t, 62.0, report.Current.Temperature)
		assert.Equal(t, 37.422, report.Current.Latitude)
	})

	t.Run("missing city never reaches upstream", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.ReportForAddress(context.Background(), domain.Address{Street: "1 Main St", State: "CA"})

		assert.Equal(t, domain.CodeValidationFailed, domain.ErrorCode(err))
	})

	t.Run("blank street never reaches upstream", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.ReportForAddress(context.Background(), domain.Address{Street: "  ", City: "Austin", State: "TX"})

		assert.Equal(t, domain.CodeValidationFailed, domain.ErrorCode(err))
	})

	t.Run("missing credentials", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).
			Return(config.Credentials{}, domain.NewError(domain.CodeConfigurationMissing, "missing configuration: APIKEY (weather provider)", nil))

		_, err := service.ReportForAddress(context.Background(), addr)

		assert.Equal(t, domain.CodeConfigurationMissing, domain.ErrorCode(err))
	})

	t.Run("geocoding failure keeps its code", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.geocoder.On("Geocode", mock.Anything, addr, "geo-key").
			Return(domain.Coordinates{}, domain.NewError(domain.CodeGeocodingFailed, "Geocoding error: ZERO_RESULTS", nil))

		_, err := service.ReportForAddress(context.Background(), addr)

		assert.Equal(t, domain.CodeGeocodingFailed, domain.ErrorCode(err))
	})

	t.Run("untyped geocoder error becomes transport failure", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.geocoder.On("Geocode", mock.Anything, addr, "geo-key").Return(domain.Coordinates{}, errors.New("connection reset"))

		_, err := service.ReportForAddress(context.Background(), addr)

		assert.Equal(t, domain.CodeUpstreamTransport, domain.ErrorCode(err))
	})

	t.Run("weather provider failure", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.geocoder.On("Geocode", mock.Anything, addr, "geo-key").Return(coords, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").
			Return(nil, domain.NewError(domain.CodeUpstreamData, "No timelines found in API response.", nil))

		_, err := service.ReportForAddress(context.Background(), addr)

		assert.Equal(t, domain.CodeUpstreamData, domain.ErrorCode(err))
	})
}

func TestWeatherService_Report(t *testing.T) {
	coords := domain.Coordinates{Latitude: 47.6062, Longitude: -122.3321}

	t.Run("auto detect uses the IP locator", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.locator.On("Locate", mock.Anything, "203.0.113.7", "ip-token").Return(coords, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").Return(reportPayload(), nil)

		report, err := service.Report(context.Background(), domain.LocationQuery{AutoDetect: true, ClientIP: "203.0.113.7"})

		require.NoError(t, err)
		assert.Equal(t, coords, report.Coordinates)
	})

	t.Run("locator failure is location unavailable", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.locator.On("Locate", mock.Anything, "", "ip-token").
			Return(domain.Coordinates{}, domain.NewError(domain.CodeUpstreamTransport, "ipinfo returned status 429", nil))

		_, err := service.Report(context.Background(), domain.LocationQuery{AutoDetect: true})

		assert.Equal(t, domain.CodeLocationUnavailable, domain.ErrorCode(err))
	})

	t.Run("address query delegates to the geocoder", func(t *testing.T) {
		service, mocks := newTestService(t)
		addr := domain.Address{Street: "400 Broad St", City: "Seattle", State: "WA"}

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.geocoder.On("Geocode", mock.Anything, addr, "geo-key").Return(coords, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").Return(reportPayload(), nil)

		_, err := service.Report(context.Background(), domain.LocationQuery{Address: addr})

		require.NoError(t, err)
	})
}

func TestWeatherService_DetailedDay(t *testing.T) {
	coords := domain.Coordinates{Latitude: 37.422, Longitude: -122.084}

	t.Run("matching date", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").Return(reportPayload(), nil)

		day, err := service.DetailedDay(context.Background(), "2024-06-02", coords)

		require.NoError(t, err)
		assert.Equal(t, "2024-06-02", day.Date)
		assert.Equal(t, 78.0, day.TemperatureMax)
	})

	t.Run("unknown date", func(t *testing.T) {
		service, mocks := newTestService(t)

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.provider.On("Timelines", mock.Anything, reportRequest(coords), "weather-key").Return(reportPayload(), nil)

		_, err := service.DetailedDay(context.Background(), "2030-01-01", coords)

		var weatherErr *domain.WeatherError

		require.ErrorAs(t, err, &weatherErr)
		assert.Equal(t, domain.CodeNotFound, weatherErr.Code)
		assert.Equal(t, "No weather data found for date: 2030-01-01", weatherErr.Message)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.DetailedDay(context.Background(), "2024-06-01", domain.Coordinates{Latitude: 91})

		assert.Equal(t, domain.CodeValidationFailed, domain.ErrorCode(err))
	})
}

func TestWeatherService_Meteogram(t *testing.T) {
	coords := domain.Coordinates{Latitude: 40.7128, Longitude: -74.006}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	request := domain.TimelineRequest{
		Coordinates: coords,
		Fields:      domain.MeteogramFields,
		Timesteps:   []string{domain.TimestepHourly},
		StartTime:   now,
		EndTime:     now.Add(5 * 24 * time.Hour),
	}

	t.Run("five day window", func(t *testing.T) {
		service, mocks := newTestService(t)
		service.now = func() time.Time { return now }

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.provider.On("Timelines", mock.Anything, request, "weather-key").Return(reportPayload(), nil)

		hourly, err := service.Meteogram(context.Background(), coords)

		require.NoError(t, err)
		assert.Len(t, hourly, 1)
	})

	t.Run("no usable hours", func(t *testing.T) {
		service, mocks := newTestService(t)
		service.now = func() time.Time { return now }

		payload := &domain.TimelinesPayload{Data: domain.TimelinesData{Timelines: []domain.Timeline{{
			Timestep:  domain.TimestepHourly,
			Intervals: []domain.Interval{{StartTime: "garbage"}},
		}}}}

		mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
		mocks.provider.On("Timelines", mock.Anything, request, "weather-key").Return(payload, nil)

		_, err := service.Meteogram(context.Background(), coords)

		assert.Equal(t, domain.CodeUpstreamData, domain.ErrorCode(err))
	})
}

func TestWeatherService_Locate(t *testing.T) {
	service, mocks := newTestService(t)
	coords := domain.Coordinates{Latitude: 30.2672, Longitude: -97.7431}

	mocks.credentials.On("Load", mock.Anything).Return(testCredentials, nil)
	mocks.locator.On("Locate", mock.Anything, "", "ip-token").Return(coords, nil)

	got, err := service.Locate(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, coords, got)
}
