// Package services implements the weather report use cases: resolving a location,
// fetching its timelines and shaping them into the records the browser client renders.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
)

type weatherService struct {
	credentials ports.CredentialLoader
	locator     ports.IPLocator
	geocoder    ports.Geocoder
	provider    ports.WeatherProvider
	logger      *zap.Logger
	now         func() time.Time
}

// NewWeatherService creates the report service. Every operation loads credentials
// first and then runs its upstream calls strictly in sequence.
//
// Parameters:
//   - credentials: Source of the three provider keys
//   - locator: IP-based location lookup
//   - geocoder: Street address geocoder
//   - provider: Weather timeline provider
//   - logger: Zap logger
//
// Returns:
//   - ports.WeatherService: Service implementation
func NewWeatherService(
	credentials ports.CredentialLoader,
	locator ports.IPLocator,
	geocoder ports.Geocoder,
	provider ports.WeatherProvider,
	logger *zap.Logger,
) ports.WeatherService {
	return &weatherService{
		credentials: credentials,
		locator:     locator,
		geocoder:    geocoder,
		provider:    provider,
		logger:      logger,
		now:         time.Now,
	}
}

// Locate resolves the coordinates of clientIP, or of the service itself when
// clientIP is empty.
func (s *weatherService) Locate(ctx context.Context, clientIP string) (domain.Coordinates, error) {
	creds, err := s.loadCredentials(ctx)

	if err != nil {
		return domain.Coordinates{}, err
	}

	return s.locate(ctx, creds, clientIP)
}

// Report resolves the query's location and builds the combined report.
func (s *weatherService) Report(ctx context.Context, query domain.LocationQuery) (*domain.WeatherReport, error) {
	if !query.AutoDetect {
		return s.ReportForAddress(ctx, query.Address)
	}

	creds, err := s.loadCredentials(ctx)

	if err != nil {
		return nil, err
	}

	coords, err := s.locate(ctx, creds, query.ClientIP)

	if err != nil {
		return nil, err
	}

	return s.buildReport(ctx, creds, coords)
}

// ReportForAddress geocodes addr and builds the combined report for it.
func (s *weatherService) ReportForAddress(ctx context.Context, addr domain.Address) (*domain.WeatherReport, error) {
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	creds, err := s.loadCredentials(ctx)

	if err != nil {
		return nil, err
	}

	coords, err := s.geocoder.Geocode(ctx, addr, creds.GeocodeAPIKey)

	if err != nil {
		s.logger.Error("failed to geocode address",
			zap.String("address", addr.FullAddress()),
			zap.Error(err))

		return nil, ensureTyped(err, domain.CodeUpstreamTransport, "Error during geocoding")
	}

	return s.buildReport(ctx, creds, coords)
}

// DetailedDay returns the forecast record whose date equals date exactly.
func (s *weatherService) DetailedDay(ctx context.Context, date string, coords domain.Coordinates) (*domain.ForecastDay, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	creds, err := s.loadCredentials(ctx)

	if err != nil {
		return nil, err
	}

	payload, err := s.fetch(ctx, creds, domain.TimelineRequest{
		Coordinates: coords,
		Fields:      domain.ReportFields,
		Timesteps:   domain.ReportTimesteps,
	})

	if err != nil {
		return nil, err
	}

	for _, day := range ShapeForecast(payload) {
		if day.Date == date {
			s.logger.Debug("detailed weather found", zap.String("date", date))

			return &day, nil
		}
	}

	s.logger.Error("no weather data found for date", zap.String("date", date))

	return nil, domain.NewError(
		domain.CodeNotFound,
		fmt.Sprintf("No weather data found for date: %s", date),
		nil,
	)
}

// Meteogram returns the hourly series for the next five days.
func (s *weatherService) Meteogram(ctx context.Context, coords domain.Coordinates) ([]domain.HourlyPoint, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	creds, err := s.loadCredentials(ctx)

	if err != nil {
		return nil, err
	}

	start := s.now().UTC()

	payload, err := s.fetch(ctx, creds, domain.TimelineRequest{
		Coordinates: coords,
		Fields:      domain.MeteogramFields,
		Timesteps:   []string{domain.TimestepHourly},
		StartTime:   start,
		EndTime:     start.Add(domain.MeteogramDuration),
	})

	if err != nil {
		return nil, err
	}

	hourly := ShapeHourly(payload, s.logger)

	if len(hourly) == 0 {
		return nil, domain.NewError(domain.CodeUpstreamData, "No valid hourly data after processing", nil)
	}

	return hourly, nil
}

func (s *weatherService) loadCredentials(ctx context.Context) (config.Credentials, error) {
	creds, err := s.credentials.Load(ctx)

	if err != nil {
		s.logger.Error("failed to load provider credentials", zap.Error(err))

		return config.Credentials{}, ensureTyped(err, domain.CodeConfigurationMissing, "Provider credentials unavailable")
	}

	return creds, nil
}

func (s *weatherService) locate(ctx context.Context, creds config.Credentials, clientIP string) (domain.Coordinates, error) {
	coords, err := s.locator.Locate(ctx, clientIP, creds.IPInfoToken)

	if err != nil {
		s.logger.Error("failed to determine location",
			zap.String("client_ip", clientIP),
			zap.Error(err))

		return domain.Coordinates{}, domain.NewError(domain.CodeLocationUnavailable, "Could not determine location.", err)
	}

	return coords, nil
}

func (s *weatherService) fetch(ctx context.Context, creds config.Credentials, req domain.TimelineRequest) (*domain.TimelinesPayload, error) {
	payload, err := s.provider.Timelines(ctx, req, creds.WeatherAPIKey)

	if err != nil {
		s.logger.Error("failed to fetch weather data",
			zap.Float64("latitude", req.Coordinates.Latitude),
			zap.Float64("longitude", req.Coordinates.Longitude),
			zap.Error(err))

		return nil, ensureTyped(err, domain.CodeUpstreamTransport, "Error fetching weather data")
	}

	return payload, nil
}

func (s *weatherService) buildReport(ctx context.Context, creds config.Credentials, coords domain.Coordinates) (*domain.WeatherReport, error) {
	payload, err := s.fetch(ctx, creds, domain.TimelineRequest{
		Coordinates: coords,
		Fields:      domain.ReportFields,
		Timesteps:   domain.ReportTimesteps,
	})

	if err != nil {
		return nil, err
	}

	report := &domain.WeatherReport{
		Coordinates: coords,
		Current:     ExtractCurrent(payload, coords),
		Forecast:    ShapeForecast(payload),
		Hourly:      ShapeHourly(payload, s.logger),
	}

	s.logger.Info("weather report built",
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude),
		zap.Int("forecast_days", len(report.Forecast)),
		zap.Int("hourly_entries", len(report.Hourly)))

	return report, nil
}

func validateAddress(addr domain.Address) error {
	if strings.TrimSpace(addr.Street) == "" || strings.TrimSpace(addr.City) == "" || strings.TrimSpace(addr.State) == "" {
		return domain.NewError(domain.CodeValidationFailed, "All address fields (street, city, state) are required.", nil)
	}

	return nil
}

func validateCoordinates(coords domain.Coordinates) error {
	if err := coords.Validate(); err != nil {
		return domain.NewError(domain.CodeValidationFailed, "The provided coordinates are invalid", err)
	}

	return nil
}

// ensureTyped leaves WeatherErrors untouched and wraps anything else under code.
func ensureTyped(err error, code, message string) error {
	if domain.ErrorCode(err) != "" {
		return err
	}

	return domain.NewError(code, message, err)
}
