package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
)

type placesService struct {
	credentials ports.CredentialLoader
	provider    ports.PlacesProvider
	logger      *zap.Logger
}

// NewPlacesService creates the address form autocomplete service.
func NewPlacesService(credentials ports.CredentialLoader, provider ports.PlacesProvider, logger *zap.Logger) ports.PlacesService {
	return &placesService{
		credentials: credentials,
		provider:    provider,
		logger:      logger,
	}
}

// Autocomplete returns city predictions for input. Blank input short-circuits to
// an empty list without contacting the provider.
func (s *placesService) Autocomplete(ctx context.Context, input string) ([]domain.PlacePrediction, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return []domain.PlacePrediction{}, nil
	}

	creds, err := s.credentials.Load(ctx)

	if err != nil {
		return nil, ensureTyped(err, domain.CodeConfigurationMissing, "Provider credentials unavailable")
	}

	predictions, err := s.provider.Autocomplete(ctx, input, creds.GeocodeAPIKey)

	if err != nil {
		s.logger.Error("place autocomplete failed", zap.String("input", input), zap.Error(err))

		return nil, ensureTyped(err, domain.CodeUpstreamTransport, "Place autocomplete failed")
	}

	return predictions, nil
}

// Details resolves the city, state and location of placeID.
func (s *placesService) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, domain.NewError(domain.CodeValidationFailed, "Place ID is required", nil)
	}

	creds, err := s.credentials.Load(ctx)

	if err != nil {
		return nil, ensureTyped(err, domain.CodeConfigurationMissing, "Provider credentials unavailable")
	}

	details, err := s.provider.Details(ctx, placeID, creds.GeocodeAPIKey)

	if err != nil {
		s.logger.Error("place details failed", zap.String("place_id", placeID), zap.Error(err))

		return nil, ensureTyped(err, domain.CodeUpstreamTransport, "Place details lookup failed")
	}

	return details, nil
}
