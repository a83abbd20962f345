package rest

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
)

var placeDetailsStatus = map[string]int{
	domain.CodeGeocodingFailed:   http.StatusBadRequest,
	domain.CodeUpstreamTransport: http.StatusBadGateway,
}

// PlacesHandler serves the city autocomplete used by the address form.
type PlacesHandler struct {
	service ports.PlacesService
	logger  *zap.Logger
}

// NewPlacesHandler creates the places handler.
func NewPlacesHandler(service ports.PlacesService, logger *zap.Logger) *PlacesHandler {
	return &PlacesHandler{
		service: service,
		logger:  logger,
	}
}

// AutocompleteResponse lists predictions. Error is set when the provider refused the
// lookup; the list is then empty.
type AutocompleteResponse struct {
	Predictions []domain.PlacePrediction `json:"predictions"`
	Error       string                   `json:"error,omitempty"`
}

// Autocomplete handles GET /places/autocomplete.
func (h *PlacesHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.service.Autocomplete(r.Context(), r.URL.Query().Get("input"))

	if err != nil {
		if domain.ErrorCode(err) != domain.CodeGeocodingFailed {
			handleServiceError(w, r, h.logger, err, nil)

			return
		}

		h.logger.Warn("places autocomplete refused", zap.Error(err))

		respondWithJSON(w, h.logger, http.StatusOK, AutocompleteResponse{
			Predictions: []domain.PlacePrediction{},
			Error:       errorMessage(err),
		})

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, AutocompleteResponse{Predictions: predictions})
}

// Details handles GET /places/details. The place ID is read from place_id or placeId.
func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	placeID := query.Get("place_id")

	if placeID == "" {
		placeID = query.Get("placeId")
	}

	details, err := h.service.Details(r.Context(), placeID)

	if err != nil {
		handleServiceError(w, r, h.logger, err, placeDetailsStatus)

		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, details)
}

// errorMessage returns the provider status carried by a GEOCODING_FAILED error.
func errorMessage(err error) string {
	var e *domain.WeatherError

	if errors.As(err, &e) {
		return e.Message
	}

	return err.Error()
}
