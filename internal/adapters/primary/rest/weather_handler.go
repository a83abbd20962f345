// Package rest implements HTTP handlers for the weather report endpoints.
// This package serves as the primary adapter, translating HTTP requests
// into domain operations and formatting responses for the browser client.
package rest

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
	"github.com/sean-rowe/weather-report/internal/middleware"
)

var validate = validator.New()

const (
	msgAddressRequired     = "All address fields are required."
	msgFullAddressRequired = "All address fields (street, city, state) are required."
	msgDetailedParams      = "Missing required parameters: date, lat, lon"
	msgMeteogramParams     = "Missing required parameters: lat, lon"
	msgInvalidCoordinates  = "The provided coordinates are invalid"
)

// handleRequestStatus is the status mapping of /handle_request.
var handleRequestStatus = map[string]int{
	domain.CodeGeocodingFailed:   http.StatusBadRequest,
	domain.CodeUpstreamTransport: http.StatusBadGateway,
}

// WeatherHandler handles HTTP requests for weather-related operations.
// It acts as the primary adapter between HTTP transport and business logic,
// managing request parsing, validation, and response formatting.
type WeatherHandler struct {
	// service provides access to weather business operations
	service ports.WeatherService

	// forwardClientIP sends the caller's public IP to the locator
	forwardClientIP bool

	// logger records request processing events and errors
	logger *zap.Logger
}

// NewWeatherHandler creates a new HTTP handler for weather operations.
//
// Parameters:
//   - service: WeatherService interface for business logic operations
//   - forwardClientIP: Locate the requesting client instead of the server
//   - logger: Zap logger for request logging and error tracking
//
// Returns:
//   - *WeatherHandler: Configured handler instance
func NewWeatherHandler(service ports.WeatherService, forwardClientIP bool, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		service:         service,
		forwardClientIP: forwardClientIP,
		logger:          logger,
	}
}

// LocationResponse carries coordinates as decimal strings.
type LocationResponse struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// WeatherResponse is the combined report. WeatherData is an empty object when the
// provider returned no current conditions.
type WeatherResponse struct {
	WeatherData  interface{}          `json:"weather_data"`
	ForecastData []domain.ForecastDay `json:"forecast_data"`
	HourlyData   []domain.HourlyPoint `json:"hourly_data"`
}

// DetailedWeatherResponse wraps the forecast record of one day.
type DetailedWeatherResponse struct {
	DetailedWeather *domain.ForecastDay `json:"detailed_weather"`
}

// MeteogramResponse wraps the five-day hourly series.
type MeteogramResponse struct {
	HourlyData []domain.HourlyPoint `json:"hourly_data"`
}

type addressQuery struct {
	Street string `validate:"required"`
	City   string `validate:"required"`
	State  string `validate:"required"`
}

// newAddressQuery reads the address fields with surrounding blanks removed, so a
// blank field fails the required check.
func newAddressQuery(query url.Values) addressQuery {
	return addressQuery{
		Street: strings.TrimSpace(query.Get("street")),
		City:   strings.TrimSpace(query.Get("city")),
		State:  strings.TrimSpace(query.Get("state")),
	}
}

func (q addressQuery) toAddress() domain.Address {
	return domain.Address{Street: q.Street, City: q.City, State: q.State}
}

type detailedQuery struct {
	Date string `validate:"required"`
	Lat  string `validate:"required,latitude"`
	Lon  string `validate:"required,longitude"`
}

type coordinatesQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

// GetLocation handles GET /get_location.
//
// Response codes:
//   - 200: {lat, lon} as strings
//   - 500: Credentials missing or location unavailable
func (h *WeatherHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	coords, err := h.service.Locate(r.Context(), h.clientIP(r))

	if err != nil {
		handleServiceError(w, r, h.logger, err, nil)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, LocationResponse{
		Lat: coords.LatitudeString(),
		Lon: coords.LongitudeString(),
	})
}

// GetWeather handles GET /get_weather.
//
// Parameters:
//   - w: HTTP response writer
//   - r: HTTP request with auto_detect, or street, city and state
//
// Response codes:
//   - 200: WeatherResponse JSON
//   - 400: Missing address fields
//   - 500: Any other failure
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	locationQuery := domain.LocationQuery{
		AutoDetect: strings.EqualFold(query.Get("auto_detect"), "true"),
	}

	if locationQuery.AutoDetect {
		locationQuery.ClientIP = h.clientIP(r)
	} else {
		address := newAddressQuery(query)

		if err := validate.Struct(address); err != nil {
			respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, msgAddressRequired)

			return
		}

		locationQuery.Address = address.toAddress()
	}

	report, err := h.service.Report(r.Context(), locationQuery)

	if err != nil {
		handleServiceError(w, r, h.logger, err, nil)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, NewWeatherResponse(report))
}

// GetDetailedWeather handles GET /get_detailed_weather.
//
// Response codes:
//   - 200: DetailedWeatherResponse JSON
//   - 400: Missing or invalid date, lat or lon
//   - 404: Date not among the forecast days
//   - 500: Any other failure
func (h *WeatherHandler) GetDetailedWeather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := detailedQuery{
		Date: query.Get("date"),
		Lat:  query.Get("lat"),
		Lon:  query.Get("lon"),
	}

	if err := validate.Struct(params); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, validationMessage(err, msgDetailedParams))

		return
	}

	coords, err := parseCoordinates(params.Lat, params.Lon)

	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, msgInvalidCoordinates)

		return
	}

	day, err := h.service.DetailedDay(r.Context(), params.Date, coords)

	if err != nil {
		handleServiceError(w, r, h.logger, err, nil)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, DetailedWeatherResponse{DetailedWeather: day})
}

// HandleRequest handles GET /handle_request, the address-only report endpoint.
//
// Response codes:
//   - 200: WeatherResponse JSON
//   - 400: Missing address fields or geocoding failure
//   - 502: Upstream transport failure
//   - 500: Any other failure
func (h *WeatherHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	address := newAddressQuery(query)

	if err := validate.Struct(address); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, msgFullAddressRequired)

		return
	}

	report, err := h.service.ReportForAddress(r.Context(), address.toAddress())

	if err != nil {
		handleServiceError(w, r, h.logger, err, handleRequestStatus)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, NewWeatherResponse(report))
}

// GetMeteogramData handles GET /get_meteogram_data.
//
// Response codes:
//   - 200: MeteogramResponse JSON
//   - 400: Missing or invalid lat or lon
//   - 500: Any other failure
func (h *WeatherHandler) GetMeteogramData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := coordinatesQuery{
		Lat: query.Get("lat"),
		Lon: query.Get("lon"),
	}

	if err := validate.Struct(params); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, validationMessage(err, msgMeteogramParams))

		return
	}

	coords, err := parseCoordinates(params.Lat, params.Lon)

	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, domain.CodeValidationFailed, msgInvalidCoordinates)

		return
	}

	hourly, err := h.service.Meteogram(r.Context(), coords)

	if err != nil {
		handleServiceError(w, r, h.logger, err, nil)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, MeteogramResponse{HourlyData: hourly})
}

func (h *WeatherHandler) clientIP(r *http.Request) string {
	if !h.forwardClientIP {
		return ""
	}

	return middleware.PublicClientIP(r)
}

// NewWeatherResponse builds the combined response body for report.
func NewWeatherResponse(report *domain.WeatherReport) WeatherResponse {
	response := WeatherResponse{
		WeatherData:  struct{}{},
		ForecastData: report.Forecast,
		HourlyData:   report.Hourly,
	}

	if report.Current != nil {
		response.WeatherData = report.Current
	}

	return response
}

// validationMessage returns missing when a required field is absent and the
// invalid-coordinates message otherwise.
func validationMessage(err error, missing string) string {
	var fieldErrors validator.ValidationErrors

	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			if fe.Tag() == "required" {
				return missing
			}
		}
	}

	return msgInvalidCoordinates
}

func parseCoordinates(lat, lon string) (domain.Coordinates, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)

	if err != nil {
		return domain.Coordinates{}, err
	}

	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)

	if err != nil {
		return domain.Coordinates{}, err
	}

	coords := domain.Coordinates{Latitude: latitude, Longitude: longitude}

	return coords, coords.Validate()
}
