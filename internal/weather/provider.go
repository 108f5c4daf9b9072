package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC  float64
	HighC         float64
	LowC          float64
	HumidityPct   float64
	WindSpeedKmh  float64
	CloudCoverPct float64
	PressureHpa   float64
	PrecipMm      float64
	SnowfallMm    float64
	Condition     Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that can return daily forecasts.
// Readings are one per day, ordered by Timestamp ascending.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, loc Location, days int) ([]ProviderReading, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot)
	SaveForecast(loc Location, forecast Forecast)
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetForecast(loc Location) (Forecast, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)
}
