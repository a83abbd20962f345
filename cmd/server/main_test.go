package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/app"
	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/domain"
)

const timelinesBody = `{"data":{"timelines":[
	{"timestep":"1d","intervals":[
		{"startTime":"2024-06-01T06:00:00-07:00","values":{"temperatureMax":95,"sunriseTime":"not-a-date"}}
	]},
	{"timestep":"1h","intervals":[
		{"startTime":"2024-06-01T00:00:00Z","values":{"temperature":80}}
	]},
	{"timestep":"current","intervals":[
		{"startTime":"2024-06-01T00:00:00Z","values":{"temperature":81.5}}
	]}
]}}`

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	t.Setenv(config.WeatherAPIKeyEnv, "weather-key")
	t.Setenv(config.GeocodeAPIKeyEnv, "geo-key")
	t.Setenv(config.IPInfoTokenEnv, "ipinfo-token")

	mux := http.NewServeMux()

	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"loc":"37.3860,-122.0838"}`))
	})

	mux.HandleFunc("/maps/api/geocode/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":30.2672,"lng":-97.7431}}}]}`))
	})

	mux.HandleFunc("/v4/timelines", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(timelinesBody))
	})

	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	return app.NewWithConfig(&config.Config{
		Server: config.ServerConfig{Environment: "test"},
		External: config.ExternalConfig{
			WeatherBaseURL:  upstream.URL,
			GeocodeBaseURL:  upstream.URL,
			IPInfoBaseURL:   upstream.URL,
			WeatherTimezone: "America/Los_Angeles",
			WeatherUnits:    "imperial",
			HTTPTimeout:     2 * time.Second,
		},
	}, zap.NewNop())
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name        string
		query       domain.LocationQuery
		expectedLat float64
	}{
		{
			name:        "address",
			query:       domain.LocationQuery{Address: domain.Address{Street: "1 Main St", City: "Austin", State: "TX"}},
			expectedLat: 30.2672,
		},
		{
			name:        "auto detect",
			query:       domain.LocationQuery{AutoDetect: true},
			expectedLat: 37.386,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			application := newTestApp(t)

			var out bytes.Buffer

			require.NoError(t, writeReport(context.Background(), application.WeatherService(), tt.query, &out))

			var body struct {
				WeatherData  map[string]interface{}   `json:"weather_data"`
				ForecastData []map[string]interface{} `json:"forecast_data"`
				HourlyData   [][]interface{}          `json:"hourly_data"`
			}

			require.NoError(t, json.Unmarshal(out.Bytes(), &body))

			assert.Equal(t, tt.expectedLat, body.WeatherData["latitude"])
			require.Len(t, body.ForecastData, 1)
			assert.Equal(t, "N/A", body.ForecastData[0]["sunrise"])
			require.Len(t, body.HourlyData, 1)
			assert.Len(t, body.HourlyData[0], 13)
			assert.Contains(t, out.String(), "\n  \"weather_data\"")
		})
	}
}

func TestWriteReport_MissingAddress(t *testing.T) {
	application := newTestApp(t)

	var out bytes.Buffer

	err := writeReport(context.Background(), application.WeatherService(),
		domain.LocationQuery{Address: domain.Address{Street: "1 Main St", State: "TX"}}, &out)

	assert.Equal(t, domain.CodeValidationFailed, domain.ErrorCode(err))
	assert.Empty(t, out.String())
}
