package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionSunny   Condition = "sunny"
	ConditionCloudy  Condition = "cloudy"
	ConditionRainy   Condition = "rainy"
	ConditionSnowy   Condition = "snowy"
	ConditionWindy   Condition = "windy"
)

// Location represents a logical place for which we track weather.
// Either City/Country or Lat/Lon must be provided.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`

	// PlaceID ties the location to a catalog place when set.
	PlaceID string `json:"placeId,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.PlaceID != "" {
		return "place:" + l.PlaceID
	}
	if l.City == "" && l.Lat != nil && l.Lon != nil {
		return fmt.Sprintf("%.4f:%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	High        float64   `json:"highC,omitempty"`
	Low         float64   `json:"lowC,omitempty"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedKmh"`
	CloudCover  float64   `json:"cloudCoverPercent"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	SnowfallMM  float64   `json:"snowfallMm"`
	Condition   Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// Forecast represents a simple multi-day weather forecast
// as a slice of normalized weather snapshots, one per day.
// Forecast entries are expected to be ordered by Timestamp ascending.
type Forecast []WeatherSnapshot

// Day returns the i-th forecast day, or false if the forecast is shorter.
func (f Forecast) Day(i int) (WeatherSnapshot, bool) {
	if i < 0 || i >= len(f) {
		return WeatherSnapshot{}, false
	}
	return f[i], true
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
