package destination

import (
	"context"
	"fmt"
	"math"

	"github.com/i474232898/weather-destinations/internal/common"
	"github.com/i474232898/weather-destinations/internal/weather"
)

// Place is a catalog entry: the static part of a destination.
type Place struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Position       Position `json:"position"`
	Population     int      `json:"population"`
	Attractiveness *float64 `json:"attractivenessScore,omitempty"`
	CountryCode    string   `json:"countryCode"`
}

// Location is the weather lookup key for the place.
func (p Place) Location() weather.Location {
	lat, lon := p.Position.Lat, p.Position.Lon
	return weather.Location{
		PlaceID: p.ID,
		Country: p.CountryCode,
		Lat:     &lat,
		Lon:     &lon,
	}
}

// PlaceRepository lists catalog places.
type PlaceRepository interface {
	Within(ctx context.Context, center Position, radiusKm float64) ([]Place, error)
}

// WeatherLookup reads stored weather for a location.
type WeatherLookup interface {
	GetLatest(loc weather.Location) (weather.WeatherSnapshot, error)
	GetStoredForecast(loc weather.Location) (weather.Forecast, error)
}

// Source builds candidates from the catalog and stored weather.
type Source struct {
	places  PlaceRepository
	weather WeatherLookup
}

// NewSource creates a candidate source.
func NewSource(places PlaceRepository, lookup WeatherLookup) *Source {
	return &Source{places: places, weather: lookup}
}

// Candidates returns every place within radiusKm of center that has a stored
// weather snapshot. Places without weather are skipped, not reported.
func (s *Source) Candidates(ctx context.Context, center Position, radiusKm float64) ([]Candidate, error) {
	places, err := s.places.Within(ctx, center, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}

	out := make([]Candidate, 0, len(places))
	for _, p := range places {
		loc := p.Location()
		snapshot, err := s.weather.GetLatest(loc)
		if err != nil {
			continue
		}
		forecast, err := s.weather.GetStoredForecast(loc)
		if err != nil {
			forecast = nil
		}
		out = append(out, FromPlace(p, snapshot, forecast, center))
	}
	return out, nil
}

// FromPlace joins a place with its weather into a candidate.
func FromPlace(p Place, snapshot weather.WeatherSnapshot, forecast weather.Forecast, origin Position) Candidate {
	return Candidate{
		ID:             p.ID,
		Name:           p.Name,
		Position:       p.Position,
		Temperature:    snapshot.Temperature,
		WindSpeed:      snapshot.WindSpeed,
		Humidity:       snapshot.Humidity,
		Condition:      snapshot.Condition,
		Stability:      stabilityOf(forecast),
		Attractiveness: valueOr(p.Attractiveness, DefaultAttractiveness),
		Population:     p.Population,
		CountryCode:    p.CountryCode,
		Forecast:       forecastOf(forecast),
		Snowfall24hMM:  snowfall24h(snapshot, forecast),
		DistanceKm:     DistanceKm(origin, p.Position),
	}
}

func forecastOf(f weather.Forecast) Forecast {
	return Forecast{
		Today:    dayOf(f, 0),
		Tomorrow: dayOf(f, 1),
		Day3:     dayOf(f, 2),
	}
}

func dayOf(f weather.Forecast, i int) DayForecast {
	d, ok := f.Day(i)
	if !ok {
		return DayForecast{}
	}
	return DayForecast{
		Condition:  d.Condition,
		Temp:       d.Temperature,
		High:       d.High,
		Low:        d.Low,
		SnowfallMM: d.SnowfallMM,
	}
}

func snowfall24h(snapshot weather.WeatherSnapshot, f weather.Forecast) float64 {
	if today, ok := f.Day(0); ok {
		return today.SnowfallMM
	}
	return snapshot.SnowfallMM
}

// stabilityOf rates how settled the next days look: every change of
// condition costs 25 points and every degree of spread in daily highs 2.
func stabilityOf(f weather.Forecast) float64 {
	if len(f) == 0 {
		return DefaultStability
	}
	changes := 0
	minHigh, maxHigh := math.Inf(1), math.Inf(-1)
	for i, d := range f {
		if i > 0 && d.Condition != f[i-1].Condition {
			changes++
		}
		minHigh = math.Min(minHigh, d.High)
		maxHigh = math.Max(maxHigh, d.High)
	}
	return common.Clamp(100-25*float64(changes)-2*(maxHigh-minHigh), 0, 100)
}
