package domain

import (
	"encoding/json"
	"time"
)

// Sentinels substituted when an upstream field is absent.
const (
	// NotAvailable replaces any missing numeric or text field
	NotAvailable = "N/A"

	// UnknownWeatherCode replaces a missing weatherCode
	UnknownWeatherCode = "Unknown"
)

// Timestep names understood by the timeline provider.
const (
	TimestepDaily   = "1d"
	TimestepHourly  = "1h"
	TimestepCurrent = "current"
)

// Output bounds applied by the shapers.
const (
	MaxForecastDays   = 15
	MaxHourlyEntries  = 120
	MeteogramDuration = 5 * 24 * time.Hour
)

// ReportFields is the fixed field set requested for a combined report.
var ReportFields = []string{
	"temperature", "temperatureMin", "temperatureMax", "humidity", "pressureSeaLevel",
	"windSpeed", "visibility", "cloudCover", "uvIndex", "weatherCode",
	"precipitationType", "precipitationProbability", "windDirection", "temperatureApparent", "moonPhase",
	"sunriseTime", "sunsetTime",
}

// ReportTimesteps is the timestep set requested for a combined report.
var ReportTimesteps = []string{TimestepDaily, TimestepHourly, TimestepCurrent}

// MeteogramFields is the reduced field set plotted by the meteogram chart.
var MeteogramFields = []string{
	"temperature", "humidity", "pressureSeaLevel", "windSpeed", "windDirection", "precipitationProbability",
}

// TimelineRequest describes one call to the timeline provider.
type TimelineRequest struct {
	Coordinates Coordinates
	Fields      []string
	Timesteps   []string

	// StartTime and EndTime bound the window; zero values leave it to the provider.
	StartTime time.Time
	EndTime   time.Time
}

// TimelinesPayload is the raw timeline response. It is treated as read-only input
// by the shapers.
type TimelinesPayload struct {
	Data TimelinesData `json:"data"`
}

// TimelinesData holds the timelines keyed by timestep.
type TimelinesData struct {
	Timelines []Timeline `json:"timelines"`
}

// Timeline is one aggregation level returned by the provider.
type Timeline struct {
	Timestep  string     `json:"timestep"`
	StartTime string     `json:"startTime,omitempty"`
	EndTime   string     `json:"endTime,omitempty"`
	Intervals []Interval `json:"intervals"`
}

// Interval is one time-stamped observation or forecast point.
type Interval struct {
	StartTime string                 `json:"startTime"`
	Values    map[string]interface{} `json:"values"`
}

// ForecastDay is one shaped daily forecast record. Every field is always
// present; missing upstream values hold a sentinel.
type ForecastDay struct {
	Date                     string      `json:"date"`
	WeatherCode              interface{} `json:"weatherCode"`
	TemperatureMax           interface{} `json:"temperatureMax"`
	TemperatureMin           interface{} `json:"temperatureMin"`
	TemperatureApparent      interface{} `json:"temperatureApparent"`
	WindSpeed                interface{} `json:"windSpeed"`
	WindDirection            interface{} `json:"windDirection"`
	Humidity                 interface{} `json:"humidity"`
	PressureSeaLevel         interface{} `json:"pressureSeaLevel"`
	Visibility               interface{} `json:"visibility"`
	CloudCover               interface{} `json:"cloudCover"`
	UVIndex                  interface{} `json:"uvIndex"`
	PrecipitationType        interface{} `json:"precipitationType"`
	PrecipitationProbability interface{} `json:"precipitationProbability"`
	MoonPhase                interface{} `json:"moonPhase"`
	Sunrise                  string      `json:"sunrise"`
	Sunset                   string      `json:"sunset"`
}

// HourlyPoint is one shaped hourly record. It serializes as a fixed-order JSON array
// led by the epoch-millisecond timestamp, the layout the meteogram chart consumes.
type HourlyPoint struct {
	Timestamp                int64
	Temperature              interface{}
	TemperatureApparent      interface{}
	WindSpeed                interface{}
	WindDirection            interface{}
	PrecipitationProbability interface{}
	PrecipitationType        interface{}
	Humidity                 interface{}
	PressureSeaLevel         interface{}
	Visibility               interface{}
	CloudCover               interface{}
	UVIndex                  interface{}
	MoonPhase                interface{}
}

// MarshalJSON implements json.Marshaler.
func (p HourlyPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		p.Timestamp,
		p.Temperature,
		p.TemperatureApparent,
		p.WindSpeed,
		p.WindDirection,
		p.PrecipitationProbability,
		p.PrecipitationType,
		p.Humidity,
		p.PressureSeaLevel,
		p.Visibility,
		p.CloudCover,
		p.UVIndex,
		p.MoonPhase,
	})
}

// CurrentWeather is the flat record extracted from the "current" timeline.
type CurrentWeather struct {
	Latitude                 float64     `json:"latitude"`
	Longitude                float64     `json:"longitude"`
	Temperature              interface{} `json:"temperature"`
	Humidity                 interface{} `json:"humidity"`
	WindSpeed                interface{} `json:"windSpeed"`
	Visibility               interface{} `json:"visibility"`
	PressureSeaLevel         interface{} `json:"pressureSeaLevel"`
	CloudCover               interface{} `json:"cloudCover"`
	UVIndex                  interface{} `json:"uvIndex"`
	WeatherCode              interface{} `json:"weatherCode"`
	PrecipitationIntensity   interface{} `json:"precipitationIntensity"`
	PrecipitationProbability interface{} `json:"precipitationProbability"`
	SunriseTime              interface{} `json:"sunriseTime"`
	SunsetTime               interface{} `json:"sunsetTime"`
}

// WeatherReport is the combined result of one location lookup.
type WeatherReport struct {
	// Coordinates are the resolved location the report was fetched for
	Coordinates Coordinates

	// Current is nil when the provider returned no current interval
	Current *CurrentWeather

	// Forecast holds at most MaxForecastDays records in upstream order
	Forecast []ForecastDay

	// Hourly holds at most MaxHourlyEntries records in upstream order
	Hourly []HourlyPoint
}
