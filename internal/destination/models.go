// Package destination holds the candidate records the badge and declutter
// stages work on, and the source that builds them from the place catalog
// and stored weather.
package destination

import (
	"github.com/i474232898/weather-destinations/internal/weather"
)

const (
	// DefaultAttractiveness is used when a place has no attractiveness score.
	DefaultAttractiveness = 50.0
	// DefaultStability is used when no forecast is available to derive it.
	DefaultStability = 50.0
	// FallbackOriginTempC is the origin temperature when nothing else is known.
	FallbackOriginTempC = 15.0

	OriginID = "origin"
)

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DayForecast is the daily summary used by the streak/miracle/heat/snow rules.
type DayForecast struct {
	Condition  weather.Condition `json:"condition"`
	Temp       float64           `json:"temp"`
	High       float64           `json:"high"`
	Low        float64           `json:"low"`
	SnowfallMM float64           `json:"snowfallMm"`
}

// Forecast is the three-day window starting today.
type Forecast struct {
	Today    DayForecast `json:"today"`
	Tomorrow DayForecast `json:"tomorrow"`
	Day3     DayForecast `json:"day3"`
}

// Candidate is a destination with its weather snapshot. Candidates are built
// fresh for every search and never modified by the pipeline.
type Candidate struct {
	ID             string            `json:"id"`
	Name           string            `json:"name,omitempty"`
	Position       Position          `json:"position"`
	Temperature    float64           `json:"temperature"`
	WindSpeed      float64           `json:"windSpeed"`
	Humidity       float64           `json:"humidity"`
	Condition      weather.Condition `json:"condition"`
	Stability      float64           `json:"stability"`
	Attractiveness float64           `json:"attractivenessScore"`
	Population     int               `json:"population"`
	CountryCode    string            `json:"countryCode,omitempty"`
	Forecast       Forecast          `json:"forecast"`
	Snowfall24hMM  float64           `json:"snowfall24hMm"`
	DistanceKm     float64           `json:"distanceFromOrigin"`

	// Origin and Special markers are always shown and never badged.
	Origin  bool `json:"isOrigin,omitempty"`
	Special bool `json:"isSpecial,omitempty"`
}

// Pinned reports whether the candidate bypasses selection entirely.
func (c Candidate) Pinned() bool {
	return c.Origin || c.Special
}

// Record is a candidate as delivered by an external source: every field
// besides the coordinates is optional.
type Record struct {
	ID             string            `json:"id" validate:"required"`
	Name           string            `json:"name"`
	Lat            float64           `json:"lat" validate:"gte=-90,lte=90"`
	Lon            float64           `json:"lon" validate:"gte=-180,lte=180"`
	Temperature    *float64          `json:"temperature"`
	WindSpeed      *float64          `json:"windSpeed"`
	Humidity       *float64          `json:"humidity"`
	Condition      weather.Condition `json:"condition"`
	Stability      *float64          `json:"stability"`
	Attractiveness *float64          `json:"attractivenessScore"`
	Population     int               `json:"population"`
	CountryCode    string            `json:"countryCode"`
	Forecast       Forecast          `json:"forecast"`
	Snowfall24hMM  float64           `json:"snowfall24hMm"`
	Special        bool              `json:"isSpecial"`
}

// FromRecords drops records without a temperature and fills defaults for the
// remaining optional fields. Distances are measured from origin.
func FromRecords(records []Record, origin Position) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		if r.Temperature == nil {
			continue
		}
		pos := Position{Lat: r.Lat, Lon: r.Lon}
		out = append(out, Candidate{
			ID:             r.ID,
			Name:           r.Name,
			Position:       pos,
			Temperature:    *r.Temperature,
			WindSpeed:      valueOr(r.WindSpeed, 0),
			Humidity:       valueOr(r.Humidity, 0),
			Condition:      r.Condition,
			Stability:      valueOr(r.Stability, DefaultStability),
			Attractiveness: valueOr(r.Attractiveness, DefaultAttractiveness),
			Population:     r.Population,
			CountryCode:    r.CountryCode,
			Forecast:       r.Forecast,
			Snowfall24hMM:  r.Snowfall24hMM,
			DistanceKm:     DistanceKm(origin, pos),
			Special:        r.Special,
		})
	}
	return out
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
