package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-destinations/internal/common"
	"github.com/i474232898/weather-destinations/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements weather.Provider and weather.ForecastProvider
// for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) query(loc weather.Location) (url.Values, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}
	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	if loc.Lat != nil && loc.Lon != nil {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}
	return values, nil
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values, err := p.query(loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	var payload struct {
		Location struct {
			LocaltimeEpoch int64 `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			TempC      float64             `json:"temp_c"`
			Humidity   float64             `json:"humidity"`
			WindKph    float64             `json:"wind_kph"`
			Cloud      float64             `json:"cloud"`
			PressureMb float64             `json:"pressure_mb"`
			PrecipMm   float64             `json:"precip_mm"`
			Condition  weatherAPICondition `json:"condition"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"/current.json", values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Location.LocaltimeEpoch > 0 {
		ts = time.Unix(payload.Location.LocaltimeEpoch, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName:  p.name,
		Timestamp:     ts,
		TemperatureC:  payload.Current.TempC,
		HumidityPct:   payload.Current.Humidity,
		WindSpeedKmh:  payload.Current.WindKph,
		CloudCoverPct: payload.Current.Cloud,
		PressureHpa:   payload.Current.PressureMb,
		PrecipMm:      payload.Current.PrecipMm,
		Condition:     mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

// FetchForecast returns one reading per day from the forecast endpoint.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	values, err := p.query(loc)
	if err != nil {
		return nil, err
	}
	values.Set("days", strconv.Itoa(days))

	var payload struct {
		Forecast struct {
			Forecastday []struct {
				Date string `json:"date"`
				Day  struct {
					MaxTempC      float64             `json:"maxtemp_c"`
					MinTempC      float64             `json:"mintemp_c"`
					AvgTempC      float64             `json:"avgtemp_c"`
					MaxWindKph    float64             `json:"maxwind_kph"`
					TotalPrecipMm float64             `json:"totalprecip_mm"`
					TotalSnowCm   float64             `json:"totalsnow_cm"`
					AvgHumidity   float64             `json:"avghumidity"`
					Condition     weatherAPICondition `json:"condition"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"/forecast.json", values, &payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.Forecast.Forecastday))
	for _, fd := range payload.Forecast.Forecastday {
		ts, err := time.Parse("2006-01-02", fd.Date)
		if err != nil {
			continue
		}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    ts.UTC(),
			TemperatureC: fd.Day.AvgTempC,
			HighC:        fd.Day.MaxTempC,
			LowC:         fd.Day.MinTempC,
			HumidityPct:  fd.Day.AvgHumidity,
			WindSpeedKmh: fd.Day.MaxWindKph,
			PrecipMm:     fd.Day.TotalPrecipMm,
			SnowfallMm:   fd.Day.TotalSnowCm * 10,
			Condition:    mapWeatherAPICondition(fd.Day.Condition.Text),
		})
	}
	return readings, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return weather.ConditionUnknown
	case common.HasAny(t, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnowy
	case common.HasAny(t, "rain", "shower", "drizzle", "thunder", "storm"):
		return weather.ConditionRainy
	case common.HasAny(t, "wind", "gale"):
		return weather.ConditionWindy
	case common.HasAny(t, "cloud", "overcast", "mist", "fog"):
		return weather.ConditionCloudy
	case common.HasAny(t, "sunny", "clear"):
		return weather.ConditionSunny
	default:
		return weather.ConditionUnknown
	}
}
