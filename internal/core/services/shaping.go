package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/core/domain"
)

// timestampLayout pairs an accepted input layout with the layout used to re-emit it.
type timestampLayout struct {
	parse  string
	format string
}

// Inputs carrying an offset keep it on output; naive inputs stay naive.
var timestampLayouts = []timestampLayout{
	{parse: time.RFC3339Nano, format: "2006-01-02T15:04:05.999999-07:00"},
	{parse: "2006-01-02T15:04:05.999999999", format: "2006-01-02T15:04:05.999999"},
	{parse: "2006-01-02T15:04", format: "2006-01-02T15:04:05"},
	{parse: "2006-01-02", format: "2006-01-02T15:04:05"},
}

// ShapeForecast turns the first daily timeline into at most MaxForecastDays records,
// in upstream order. A sunrise or sunset value that cannot be parsed is replaced by
// the sentinel; the record itself is always kept.
//
// Parameters:
//   - payload: Raw timelines returned by the weather provider
//
// Returns:
//   - []domain.ForecastDay: Shaped records, never nil
func ShapeForecast(payload *domain.TimelinesPayload) []domain.ForecastDay {
	forecast := make([]domain.ForecastDay, 0, domain.MaxForecastDays)
	timeline := findTimeline(payload, domain.TimestepDaily)

	if timeline == nil {
		return forecast
	}

	for _, interval := range limitIntervals(timeline.Intervals, domain.MaxForecastDays) {
		values := interval.Values

		forecast = append(forecast, domain.ForecastDay{
			Date:                     dateOf(interval.StartTime),
			WeatherCode:              valueOr(values, "weatherCode", domain.UnknownWeatherCode),
			TemperatureMax:           valueOr(values, "temperatureMax", domain.NotAvailable),
			TemperatureMin:           valueOr(values, "temperatureMin", domain.NotAvailable),
			TemperatureApparent:      valueOr(values, "temperatureApparent", domain.NotAvailable),
			WindSpeed:                valueOr(values, "windSpeed", domain.NotAvailable),
			WindDirection:            valueOr(values, "windDirection", domain.NotAvailable),
			Humidity:                 valueOr(values, "humidity", domain.NotAvailable),
			PressureSeaLevel:         valueOr(values, "pressureSeaLevel", domain.NotAvailable),
			Visibility:               valueOr(values, "visibility", domain.NotAvailable),
			CloudCover:               valueOr(values, "cloudCover", domain.NotAvailable),
			UVIndex:                  valueOr(values, "uvIndex", domain.NotAvailable),
			PrecipitationType:        valueOr(values, "precipitationType", domain.NotAvailable),
			PrecipitationProbability: valueOr(values, "precipitationProbability", domain.NotAvailable),
			MoonPhase:                valueOr(values, "moonPhase", domain.NotAvailable),
			Sunrise:                  normalizeTimestamp(values["sunriseTime"]),
			Sunset:                   normalizeTimestamp(values["sunsetTime"]),
		})
	}

	return forecast
}

// ShapeHourly turns the first hourly timeline into at most MaxHourlyEntries records.
// Unlike ShapeForecast, an interval whose start time cannot be parsed is dropped
// (and logged) rather than substituted.
//
// Parameters:
//   - payload: Raw timelines returned by the weather provider
//   - logger: Receives a warning for every dropped interval
//
// Returns:
//   - []domain.HourlyPoint: Shaped records, never nil
func ShapeHourly(payload *domain.TimelinesPayload, logger *zap.Logger) []domain.HourlyPoint {
	hourly := make([]domain.HourlyPoint, 0, domain.MaxHourlyEntries)
	timeline := findTimeline(payload, domain.TimestepHourly)

	if timeline == nil {
		return hourly
	}

	for _, interval := range limitIntervals(timeline.Intervals, domain.MaxHourlyEntries) {
		millis, err := epochMillis(interval.StartTime)

		if err != nil {
			logger.Warn("invalid startTime format, skipping interval",
				zap.String("start_time", interval.StartTime),
				zap.Error(err))

			continue
		}

		values := interval.Values

		hourly = append(hourly, domain.HourlyPoint{
			Timestamp:                millis,
			Temperature:              valueOr(values, "temperature", domain.NotAvailable),
			TemperatureApparent:      valueOr(values, "temperatureApparent", domain.NotAvailable),
			WindSpeed:                valueOr(values, "windSpeed", domain.NotAvailable),
			WindDirection:            valueOr(values, "windDirection", domain.NotAvailable),
			PrecipitationProbability: valueOr(values, "precipitationProbability", domain.NotAvailable),
			PrecipitationType:        valueOr(values, "precipitationType", domain.NotAvailable),
			Humidity:                 valueOr(values, "humidity", domain.NotAvailable),
			PressureSeaLevel:         valueOr(values, "pressureSeaLevel", domain.NotAvailable),
			Visibility:               valueOr(values, "visibility", domain.NotAvailable),
			CloudCover:               valueOr(values, "cloudCover", domain.NotAvailable),
			UVIndex:                  valueOr(values, "uvIndex", domain.NotAvailable),
			MoonPhase:                valueOr(values, "moonPhase", domain.NotAvailable),
		})
	}

	return hourly
}

// ExtractCurrent builds the flat current-weather record from the first interval of
// the first "current" timeline. The scan stops at that timeline even when it holds
// no intervals, in which case the result is nil.
//
// Parameters:
//   - payload: Raw timelines returned by the weather provider
//   - coords: Coordinates the payload was fetched for
//
// Returns:
//   - *domain.CurrentWeather: Record, or nil when no current interval exists
func ExtractCurrent(payload *domain.TimelinesPayload, coords domain.Coordinates) *domain.CurrentWeather {
	timeline := findTimeline(payload, domain.TimestepCurrent)

	if timeline == nil || len(timeline.Intervals) == 0 {
		return nil
	}

	values := timeline.Intervals[0].Values

	return &domain.CurrentWeather{
		Latitude:                 coords.Latitude,
		Longitude:                coords.Longitude,
		Temperature:              valueOr(values, "temperature", domain.NotAvailable),
		Humidity:                 valueOr(values, "humidity", domain.NotAvailable),
		WindSpeed:                valueOr(values, "windSpeed", domain.NotAvailable),
		Visibility:               valueOr(values, "visibility", domain.NotAvailable),
		PressureSeaLevel:         valueOr(values, "pressureSeaLevel", domain.NotAvailable),
		CloudCover:               valueOr(values, "cloudCover", domain.NotAvailable),
		UVIndex:                  valueOr(values, "uvIndex", domain.NotAvailable),
		WeatherCode:              valueOr(values, "weatherCode", domain.UnknownWeatherCode),
		PrecipitationIntensity:   valueOr(values, "precipitationIntensity", domain.NotAvailable),
		PrecipitationProbability: valueOr(values, "precipitationProbability", domain.NotAvailable),
		SunriseTime:              valueOr(values, "sunriseTime", domain.NotAvailable),
		SunsetTime:               valueOr(values, "sunsetTime", domain.NotAvailable),
	}
}

func findTimeline(payload *domain.TimelinesPayload, timestep string) *domain.Timeline {
	if payload == nil {
		return nil
	}

	for i := range payload.Data.Timelines {
		if payload.Data.Timelines[i].Timestep == timestep {
			return &payload.Data.Timelines[i]
		}
	}

	return nil
}

func limitIntervals(intervals []domain.Interval, limit int) []domain.Interval {
	if len(intervals) > limit {
		return intervals[:limit]
	}

	return intervals
}

// valueOr is the get-with-default read: a present key wins even when its value is null.
func valueOr(values map[string]interface{}, key string, fallback interface{}) interface{} {
	if value, ok := values[key]; ok {
		return value
	}

	return fallback
}

func dateOf(startTime string) string {
	if startTime == "" {
		return domain.NotAvailable
	}

	date, _, _ := strings.Cut(startTime, "T")

	return date
}

func normalizeTimestamp(value interface{}) string {
	text, ok := value.(string)

	if !ok {
		return domain.NotAvailable
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout.parse, text); err == nil {
			return t.Format(layout.format)
		}
	}

	return domain.NotAvailable
}

// epochMillis parses an interval start time. Naive timestamps are read as UTC.
func epochMillis(startTime string) (int64, error) {
	var firstErr error

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout.parse, startTime)

		if err == nil {
			return t.UnixMilli(), nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return 0, firstErr
}
