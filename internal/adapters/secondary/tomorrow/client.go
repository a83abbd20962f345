// Package tomorrow implements the weather timeline provider against the Tomorrow.io v4 API.
// This package serves as a secondary adapter, translating a domain timeline request into
// a /v4/timelines call and returning the raw payload for the shapers.
package tomorrow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/adapters/secondary/httpclient"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

const (
	providerName  = "tomorrow.io"
	timelinesPath = "/v4/timelines"
)

// Config holds the fixed request settings.
type Config struct {
	BaseURL  string
	Timezone string
	Units    string
	Timeout  time.Duration
}

// Client implements the WeatherProvider port for Tomorrow.io.
type Client struct {
	// http is the resty client bound to the provider base URL
	http *resty.Client

	// timezone and units are sent with every request
	timezone string
	units    string

	// logger records API failures
	logger *zap.Logger
}

// NewClient creates a new Tomorrow.io client with the specified configuration.
//
// Parameters:
//   - cfg: Base URL, timezone, units and timeout
//   - logger: Zap logger for API interaction logging
//
// Returns:
//   - *Client: Configured client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:    providerName,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}, logger),
		timezone: cfg.Timezone,
		units:    cfg.Units,
		logger:   logger,
	}
}

// Timelines fetches every requested timestep in a single call.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - req: Coordinates, fields, timesteps and optional window
//   - apiKey: Tomorrow.io API key
//
// Returns:
//   - *domain.TimelinesPayload: Raw payload with at least one timeline whose first
//     entry has intervals
//   - error: UPSTREAM_TRANSPORT for network or status failures, UPSTREAM_DATA when the
//     body is malformed or holds no timelines or intervals
func (c *Client) Timelines(ctx context.Context, req domain.TimelineRequest, apiKey string) (*domain.TimelinesPayload, error) {
	params := map[string]string{
		"apikey":    apiKey,
		"location":  req.Coordinates.String(),
		"fields":    strings.Join(req.Fields, ","),
		"timesteps": strings.Join(req.Timesteps, ","),
		"units":     c.units,
		"timezone":  c.timezone,
	}

	if !req.StartTime.IsZero() {
		params["startTime"] = req.StartTime.Format(time.RFC3339)
	}

	if !req.EndTime.IsZero() {
		params["endTime"] = req.EndTime.Format(time.RFC3339)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(timelinesPath)

	if err != nil {
		c.logger.Error("weather API request failed", zap.Error(err))

		return nil, httpclient.TransportError(providerName, resp, err)
	}

	if !resp.IsSuccess() {
		c.logger.Error("weather API error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))

		return nil, httpclient.TransportError(providerName, resp, nil)
	}

	var payload domain.TimelinesPayload

	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, dataError("Malformed weather API response.", resp, err)
	}

	if len(payload.Data.Timelines) == 0 {
		return nil, dataError("No timelines found in API response.", resp, nil)
	}

	if len(payload.Data.Timelines[0].Intervals) == 0 {
		return nil, dataError("No intervals found in API response.", resp, nil)
	}

	return &payload, nil
}

func dataError(message string, resp *resty.Response, cause error) *domain.WeatherError {
	return &domain.WeatherError{
		Code:    domain.CodeUpstreamData,
		Message: message,
		Status:  resp.StatusCode(),
		Body:    resp.String(),
		Cause:   cause,
	}
}
