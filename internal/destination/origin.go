package destination

import (
	"github.com/i474232898/weather-destinations/internal/weather"
)

// OriginFromWeather builds the origin record from a weather snapshot and the
// optional daily forecast.
func OriginFromWeather(pos Position, snapshot weather.WeatherSnapshot, forecast weather.Forecast) Candidate {
	return Candidate{
		ID:             OriginID,
		Name:           snapshot.Location.City,
		Position:       pos,
		Temperature:    snapshot.Temperature,
		WindSpeed:      snapshot.WindSpeed,
		Humidity:       snapshot.Humidity,
		Condition:      snapshot.Condition,
		Stability:      stabilityOf(forecast),
		Attractiveness: DefaultAttractiveness,
		CountryCode:    snapshot.Location.Country,
		Forecast:       forecastOf(forecast),
		Snowfall24hMM:  snowfall24h(snapshot, forecast),
		Origin:         true,
	}
}

// SyntheticOrigin is used when no origin weather is available. Its
// temperature is the mean of the candidates, or FallbackOriginTempC when
// there are none.
func SyntheticOrigin(pos Position, candidates []Candidate) Candidate {
	temp := FallbackOriginTempC
	if len(candidates) > 0 {
		var sum float64
		for _, c := range candidates {
			sum += c.Temperature
		}
		temp = sum / float64(len(candidates))
	}
	return Candidate{
		ID:             OriginID,
		Position:       pos,
		Temperature:    temp,
		Condition:      weather.ConditionUnknown,
		Stability:      DefaultStability,
		Attractiveness: DefaultAttractiveness,
		Origin:         true,
	}
}

// AsOrigin marks c as the origin: zero distance, always shown.
func AsOrigin(c Candidate) Candidate {
	c.Origin = true
	c.DistanceKm = 0
	if c.ID == "" {
		c.ID = OriginID
	}
	return c
}
