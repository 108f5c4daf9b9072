package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-destinations/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider
// for Open-Meteo. It needs coordinates; no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) coords(loc weather.Location) (url.Values, error) {
	if loc.Lat == nil || loc.Lon == nil {
		return nil, fmt.Errorf("openmeteo requires latitude and longitude")
	}
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(*loc.Lat, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(*loc.Lon, 'f', 4, 64))
	values.Set("timezone", "UTC")
	return values, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values, err := p.coords(loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,cloud_cover,surface_pressure,precipitation,snowfall,weather_code")

	var payload struct {
		Current struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			CloudCover  float64 `json:"cloud_cover"`
			Pressure    float64 `json:"surface_pressure"`
			Precip      float64 `json:"precipitation"`
			Snowfall    float64 `json:"snowfall"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL, values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName:  p.name,
		Timestamp:     ts.UTC(),
		TemperatureC:  payload.Current.Temperature,
		HumidityPct:   payload.Current.Humidity,
		WindSpeedKmh:  payload.Current.WindSpeed,
		CloudCoverPct: payload.Current.CloudCover,
		PressureHpa:   payload.Current.Pressure,
		PrecipMm:      payload.Current.Precip,
		// Open-Meteo reports snowfall in centimetres.
		SnowfallMm: payload.Current.Snowfall * 10,
		Condition:  mapOpenMeteoCondition(payload.Current.WeatherCode),
	}, nil
}

// FetchForecast returns one reading per day, starting today.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	values, err := p.coords(loc)
	if err != nil {
		return nil, err
	}
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,snowfall_sum,precipitation_sum,wind_speed_10m_max")
	values.Set("forecast_days", strconv.Itoa(days))

	var payload struct {
		Daily struct {
			Time        []string  `json:"time"`
			WeatherCode []int     `json:"weather_code"`
			TempMax     []float64 `json:"temperature_2m_max"`
			TempMin     []float64 `json:"temperature_2m_min"`
			Snowfall    []float64 `json:"snowfall_sum"`
			Precip      []float64 `json:"precipitation_sum"`
			WindMax     []float64 `json:"wind_speed_10m_max"`
		} `json:"daily"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL, values, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	readings := make([]weather.ProviderReading, 0, len(d.Time))
	for i, day := range d.Time {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		high, low := at(d.TempMax, i), at(d.TempMin, i)
		code := -1
		if i < len(d.WeatherCode) {
			code = d.WeatherCode[i]
		}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    ts.UTC(),
			TemperatureC: (high + low) / 2,
			HighC:        high,
			LowC:         low,
			WindSpeedKmh: at(d.WindMax, i),
			PrecipMm:     at(d.Precip, i),
			SnowfallMm:   at(d.Snowfall, i) * 10,
			Condition:    mapOpenMeteoCondition(code),
		})
	}
	return readings, nil
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

// mapOpenMeteoCondition maps WMO weather codes onto the normalized conditions.
func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0 || code == 1:
		return weather.ConditionSunny
	case code == 2 || code == 3 || code == 45 || code == 48:
		return weather.ConditionCloudy
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82) || code >= 95:
		return weather.ConditionRainy
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnowy
	default:
		return weather.ConditionUnknown
	}
}
