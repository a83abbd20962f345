// Package domain contains the core business entities for the weather report service.
// These types describe locations, upstream weather timelines and the shaped records
// returned to clients, independent of any transport or provider.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinates represent a geographic location using latitude and longitude.
// Coordinates are always carried as float64 inside the service; the boundary
// serializers decide whether they are rendered as numbers or strings.
type Coordinates struct {
	// Latitude specifies the north-south position (-90 to 90 degrees)
	Latitude float64

	// Longitude specifies the east-west position (-180 to 180 degrees)
	Longitude float64
}

// Validate checks if the coordinates are within valid geographic bounds.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", c.Longitude)
	}

	return nil
}

// LatitudeString renders the latitude in its shortest decimal form.
func (c Coordinates) LatitudeString() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

// LongitudeString renders the longitude in its shortest decimal form.
func (c Coordinates) LongitudeString() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// String returns the "lat,lon" form used by upstream providers.
func (c Coordinates) String() string {
	return c.LatitudeString() + "," + c.LongitudeString()
}

// ParseLatLon parses a "lat,lon" pair such as the ipinfo loc field.
//
// Parameters:
//   - loc: Comma separated latitude and longitude
//
// Returns:
//   - Coordinates: Parsed coordinates
//   - error: Format error when the pair does not hold exactly two numbers
func ParseLatLon(loc string) (Coordinates, error) {
	parts := strings.Split(loc, ",")

	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("expected \"lat,lon\", got %q", loc)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)

	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Address is a free-text street address split into the three parts the
// browser form collects.
type Address struct {
	Street string
	City   string
	State  string
}

// FullAddress joins the parts the way the geocoder expects them.
func (a Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s", a.Street, a.City, a.State)
}

// LocationQuery selects how a report resolves its coordinates: by the
// caller's IP address when AutoDetect is set, by Address otherwise.
type LocationQuery struct {
	AutoDetect bool
	ClientIP   string
	Address    Address
}
