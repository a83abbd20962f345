package app

import (
	"context"
	"time"

	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
	"github.com/sean-rowe/weather-report/internal/infrastructure/circuitbreaker"
	"github.com/sean-rowe/weather-report/internal/observability"
)

// guard runs one upstream call through a breaker and records its duration.
type guard struct {
	cb        *circuitbreaker.CircuitBreakerWrapper
	telemetry *observability.Telemetry
}

func (g guard) run(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := g.cb.Execute(ctx, operation, fn)

	g.telemetry.RecordUpstreamCall(ctx, g.cb.Name(), operation, time.Since(start), err)

	return err
}

// CircuitBreakerLocator wraps an IP locator with circuit breaker protection.
type CircuitBreakerLocator struct {
	next ports.IPLocator
	guard
}

// Locate resolves the coordinates of clientIP through the breaker.
func (c *CircuitBreakerLocator) Locate(ctx context.Context, clientIP, token string) (domain.Coordinates, error) {
	var result domain.Coordinates

	err := c.run(ctx, "locate", func() error {
		var err error
		result, err = c.next.Locate(ctx, clientIP, token)

		return err
	})

	return result, err
}

// CircuitBreakerGeocoder wraps a geocoder with circuit breaker protection.
type CircuitBreakerGeocoder struct {
	next ports.Geocoder
	guard
}

// Geocode resolves addr through the breaker.
func (c *CircuitBreakerGeocoder) Geocode(ctx context.Context, addr domain.Address, apiKey string) (domain.Coordinates, error) {
	var result domain.Coordinates

	err := c.run(ctx, "geocode", func() error {
		var err error
		result, err = c.next.Geocode(ctx, addr, apiKey)

		return err
	})

	return result, err
}

// CircuitBreakerWeatherProvider wraps the timeline provider with circuit breaker protection.
type CircuitBreakerWeatherProvider struct {
	next ports.WeatherProvider
	guard
}

// Timelines fetches timelines through the breaker.
func (c *CircuitBreakerWeatherProvider) Timelines(ctx context.Context, req domain.TimelineRequest, apiKey string) (*domain.TimelinesPayload, error) {
	var result *domain.TimelinesPayload

	err := c.run(ctx, "timelines", func() error {
		var err error
		result, err = c.next.Timelines(ctx, req, apiKey)

		return err
	})

	return result, err
}

// CircuitBreakerPlacesProvider wraps the places provider with circuit breaker protection.
type CircuitBreakerPlacesProvider struct {
	next ports.PlacesProvider
	guard
}

// Autocomplete fetches predictions through the breaker.
func (c *CircuitBreakerPlacesProvider) Autocomplete(ctx context.Context, input, apiKey string) ([]domain.PlacePrediction, error) {
	var result []domain.PlacePrediction

	err := c.run(ctx, "autocomplete", func() error {
		var err error
		result, err = c.next.Autocomplete(ctx, input, apiKey)

		return err
	})

	return result, err
}

// Details fetches place details through the breaker.
func (c *CircuitBreakerPlacesProvider) Details(ctx context.Context, placeID, apiKey string) (*domain.PlaceDetails, error) {
	var result *domain.PlaceDetails

	err := c.run(ctx, "details", func() error {
		var err error
		result, err = c.next.Details(ctx, placeID, apiKey)

		return err
	})

	return result, err
}
