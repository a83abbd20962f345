package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/middleware"
)

// ErrorResponse represents a standardized error response structure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// defaultStatus maps error codes to HTTP status codes. Endpoints pass overrides
// for the codes they treat differently.
var defaultStatus = map[string]int{
	domain.CodeConfigurationMissing: http.StatusInternalServerError,
	domain.CodeUpstreamTransport:    http.StatusInternalServerError,
	domain.CodeUpstreamData:         http.StatusInternalServerError,
	domain.CodeGeocodingFailed:      http.StatusInternalServerError,
	domain.CodeLocationUnavailable:  http.StatusInternalServerError,
	domain.CodeValidationFailed:     http.StatusBadRequest,
	domain.CodeNotFound:             http.StatusNotFound,
}

// statusFor returns the HTTP status for err, consulting overrides first.
func statusFor(err error, overrides map[string]int) int {
	code := domain.ErrorCode(err)

	if status, ok := overrides[code]; ok {
		return status
	}

	if status, ok := defaultStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// respondWithJSON sends a JSON response with the specified status code.
//
// Parameters:
//   - w: HTTP response writer
//   - status: HTTP status code to return
//   - payload: Data to encode as JSON response body
func respondWithJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondWithError sends a standardized error response.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	respondWithJSON(w, logger, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps a service error to its HTTP response. Upstream status and
// body are logged and never sent to the client.
//
// Parameters:
//   - w: HTTP response writer
//   - r: HTTP request for context extraction
//   - logger: Zap logger
//   - err: Error from the service layer
//   - overrides: Endpoint-specific status per error code, may be nil
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, overrides map[string]int) {
	status := statusFor(err, overrides)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	}

	var e *domain.WeatherError

	if !errors.As(err, &e) {
		logger.Error("unexpected error", fields...)
		respondWithError(w, logger, status, "INTERNAL_ERROR", "An unexpected error occurred")

		return
	}

	if upstream := upstreamDetail(err); upstream != nil {
		fields = append(fields,
			zap.Int("upstream_status", upstream.Status),
			zap.String("upstream_body", upstream.Body))
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}

	respondWithError(w, logger, status, e.Code, e.Message)
}

// upstreamDetail returns the innermost WeatherError in the chain that carries an
// upstream response.
func upstreamDetail(err error) *domain.WeatherError {
	var found *domain.WeatherError

	for err != nil {
		var e *domain.WeatherError

		if !errors.As(err, &e) {
			break
		}

		if e.Status != 0 || e.Body != "" {
			found = e
		}

		err = e.Cause
	}

	return found
}
