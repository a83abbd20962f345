// Package googlemaps implements the address geocoder and the place lookups
// against the Google Maps web services.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/adapters/secondary/httpclient"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

const (
	providerName = "google maps"

	geocodePath      = "/maps/api/geocode/json"
	autocompletePath = "/maps/api/place/autocomplete/json"
	detailsPath      = "/maps/api/place/details/json"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client talks to the geocoding and places endpoints with one shared resty client.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a Google Maps client.
//
// Parameters:
//   - baseURL: Maps base URL (typically https://maps.googleapis.com)
//   - timeout: Upper bound for a single call
//   - logger: Zap logger
//
// Returns:
//   - *Client: Configured client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:    providerName,
			BaseURL: baseURL,
			Timeout: timeout,
		}, logger),
		logger: logger,
	}
}

// latLng mirrors a geometry.location object.
type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		Geometry struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves addr to the coordinates of the first result.
//
// Parameters:
//   - ctx: Context for cancellation
//   - addr: Street, city and state
//   - apiKey: Geocoding API key
//
// Returns:
//   - domain.Coordinates: results[0].geometry.location
//   - error: UPSTREAM_TRANSPORT on network or status failures, GEOCODING_FAILED when the
//     provider status is not OK or no result matched, UPSTREAM_DATA on a malformed body
func (c *Client) Geocode(ctx context.Context, addr domain.Address, apiKey string) (domain.Coordinates, error) {
	fullAddress := addr.FullAddress()

	c.logger.Debug("geocoding request",
		zap.String("path", geocodePath),
		zap.String("address", fullAddress))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": fullAddress,
			"key":     apiKey,
		}).
		Get(geocodePath)

	if err != nil {
		return domain.Coordinates{}, httpclient.TransportError(providerName, resp, err)
	}

	c.logger.Debug("geocoding response",
		zap.Int("status", resp.StatusCode()),
		zap.String("body", resp.String()))

	if !resp.IsSuccess() {
		return domain.Coordinates{}, httpclient.TransportError(providerName, resp, nil)
	}

	var body geocodeResponse

	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.Coordinates{}, &domain.WeatherError{
			Code:    domain.CodeUpstreamData,
			Message: "Malformed geocoding response",
			Status:  resp.StatusCode(),
			Body:    resp.String(),
			Cause:   err,
		}
	}

	if body.Status != statusOK || len(body.Results) == 0 {
		return domain.Coordinates{}, &domain.WeatherError{
			Code:    domain.CodeGeocodingFailed,
			Message: fmt.Sprintf("Geocoding error: %s", body.Status),
			Status:  resp.StatusCode(),
			Body:    body.ErrorMessage,
		}
	}

	location := body.Results[0].Geometry.Location

	return domain.Coordinates{Latitude: location.Lat, Longitude: location.Lng}, nil
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Predictions  []struct {
		Description          string `json:"description"`
		PlaceID              string `json:"place_id"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

// Autocomplete returns US city predictions for input.
//
// Returns:
//   - []domain.PlacePrediction: Predictions, empty for ZERO_RESULTS
//   - error: GEOCODING_FAILED for any other non-OK provider status
func (c *Client) Autocomplete(ctx context.Context, input, apiKey string) ([]domain.PlacePrediction, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"input":      input,
			"types":      "(cities)",
			"components": "country:us",
			"key":        apiKey,
		}).
		Get(autocompletePath)

	if err != nil || !resp.IsSuccess() {
		return nil, httpclient.TransportError(providerName, resp, err)
	}

	var body autocompleteResponse

	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &domain.WeatherError{
			Code:    domain.CodeUpstreamData,
			Message: "Malformed autocomplete response",
			Status:  resp.StatusCode(),
			Body:    resp.String(),
			Cause:   err,
		}
	}

	predictions := make([]domain.PlacePrediction, 0, len(body.Predictions))

	switch body.Status {
	case statusOK:
	case statusZeroResults:
		return predictions, nil
	default:
		return nil, &domain.WeatherError{
			Code:    domain.CodeGeocodingFailed,
			Message: body.Status,
			Status:  resp.StatusCode(),
			Body:    body.ErrorMessage,
		}
	}

	for _, p := range body.Predictions {
		predictions = append(predictions, domain.PlacePrediction{
			Description:   p.Description,
			PlaceID:       p.PlaceID,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}

	return predictions, nil
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Result       struct {
		AddressComponents []addressComponent `json:"address_components"`
		Geometry          *struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

// Details resolves the locality, state and location of placeID.
//
// Returns:
//   - *domain.PlaceDetails: City and state may be empty when the place has no such component
//   - error: GEOCODING_FAILED when the provider status is not OK
func (c *Client) Details(ctx context.Context, placeID, apiKey string) (*domain.PlaceDetails, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": placeID,
			"fields":   "address_component,geometry",
			"key":      apiKey,
		}).
		Get(detailsPath)

	if err != nil || !resp.IsSuccess() {
		return nil, httpclient.TransportError(providerName, resp, err)
	}

	var body detailsResponse

	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &domain.WeatherError{
			Code:    domain.CodeUpstreamData,
			Message: "Malformed place details response",
			Status:  resp.StatusCode(),
			Body:    resp.String(),
			Cause:   err,
		}
	}

	if body.Status != statusOK {
		return nil, &domain.WeatherError{
			Code:    domain.CodeGeocodingFailed,
			Message: body.Status,
			Status:  resp.StatusCode(),
			Body:    body.ErrorMessage,
		}
	}

	details := &domain.PlaceDetails{}

	if city := findComponent(body.Result.AddressComponents, "locality"); city != nil {
		details.City = city.LongName
	}

	if state := findComponent(body.Result.AddressComponents, "administrative_area_level_1"); state != nil {
		details.State = state.LongName

		if details.State == "" {
			details.State = state.ShortName
		}
	}

	if body.Result.Geometry != nil {
		details.Location = &domain.PlacePoint{
			Lat: body.Result.Geometry.Location.Lat,
			Lng: body.Result.Geometry.Location.Lng,
		}
	}

	return details, nil
}

func findComponent(components []addressComponent, componentType string) *addressComponent {
	for i := range components {
		for _, t := range components[i].Types {
			if t == componentType {
				return &components[i]
			}
		}
	}

	return nil
}
