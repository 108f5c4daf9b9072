// Package geocode resolves city names to coordinates for origin lookups.
package geocode

import (
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-destinations/internal/destination"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("geocoding is not configured")

// Resolver turns a city/country pair into a position.
type Resolver interface {
	Resolve(city, country string) (destination.Position, error)
}

// Google resolves through the Google Geocoding API.
type Google struct {
	enabled bool
}

// NewGoogle configures the geocoder with apiKey. An empty key disables it.
func NewGoogle(apiKey string) *Google {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Google{enabled: apiKey != ""}
}

func (g *Google) Resolve(city, country string) (destination.Position, error) {
	if !g.enabled {
		return destination.Position{}, ErrDisabled
	}
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return destination.Position{}, fmt.Errorf("geocode %s,%s: %w", city, country, err)
	}
	return destination.Position{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
