package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-destinations/internal/weather"
)

func coords(lat, lon float64) weather.Location {
	return weather.Location{Lat: &lat, Lon: &lon}
}

func testOpenMeteo(t *testing.T, handler http.HandlerFunc) (*OpenMeteoProvider, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL
	p.httpCfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	return p, &hits
}

func TestOpenMeteoFetch(t *testing.T) {
	p, _ := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "47.2690", r.URL.Query().Get("latitude"))
		assert.NotEmpty(t, r.URL.Query().Get("current"))
		w.Write([]byte(`{"current":{"time":"2024-01-10T12:00","temperature_2m":-4.5,"relative_humidity_2m":80,
			"wind_speed_10m":12,"cloud_cover":90,"surface_pressure":1010,"precipitation":0.4,"snowfall":1.2,"weather_code":73}}`))
	})

	r, err := p.Fetch(context.Background(), coords(47.269, 11.404))
	require.NoError(t, err)
	assert.Equal(t, "openmeteo", r.ProviderName)
	assert.Equal(t, -4.5, r.TemperatureC)
	assert.Equal(t, 12.0, r.WindSpeedKmh)
	assert.InDelta(t, 12.0, r.SnowfallMm, 1e-9)
	assert.Equal(t, weather.ConditionSnowy, r.Condition)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), r.Timestamp)
}

func TestOpenMeteoForecast(t *testing.T) {
	p, _ := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("forecast_days"))
		w.Write([]byte(`{"daily":{"time":["2024-01-10","2024-01-11","2024-01-12"],
			"weather_code":[0,61,2],"temperature_2m_max":[20,14,18],"temperature_2m_min":[10,8,12],
			"snowfall_sum":[0,0,0],"precipitation_sum":[0,6,0],"wind_speed_10m_max":[10,30,15]}}`))
	})

	days, err := p.FetchForecast(context.Background(), coords(43.7, 7.27), 3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, weather.ConditionSunny, days[0].Condition)
	assert.Equal(t, 15.0, days[0].TemperatureC)
	assert.Equal(t, 20.0, days[0].HighC)
	assert.Equal(t, weather.ConditionRainy, days[1].Condition)
	assert.Equal(t, weather.ConditionCloudy, days[2].Condition)
}

func TestOpenMeteoNeedsCoordinates(t *testing.T) {
	p, hits := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := p.Fetch(context.Background(), weather.Location{City: "Nice", Country: "FR"})
	assert.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestResilienceRetries(t *testing.T) {
	t.Run("server errors are retried", func(t *testing.T) {
		p, hits := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := p.Fetch(context.Background(), coords(1, 2))
		assert.ErrorIs(t, err, errServerError)
		assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	})

	t.Run("client errors are not", func(t *testing.T) {
		p, hits := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := p.Fetch(context.Background(), coords(1, 2))
		assert.ErrorIs(t, err, errUnexpected)
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		var n int32
		p, _ := testOpenMeteo(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&n, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"current":{"temperature_2m":21,"weather_code":0}}`))
		})
		r, err := p.Fetch(context.Background(), coords(1, 2))
		require.NoError(t, err)
		assert.Equal(t, 21.0, r.TemperatureC)
	})
}

func TestConditionMapping(t *testing.T) {
	assert.Equal(t, weather.ConditionSunny, mapOpenMeteoCondition(1))
	assert.Equal(t, weather.ConditionCloudy, mapOpenMeteoCondition(45))
	assert.Equal(t, weather.ConditionRainy, mapOpenMeteoCondition(95))
	assert.Equal(t, weather.ConditionSnowy, mapOpenMeteoCondition(86))
	assert.Equal(t, weather.ConditionUnknown, mapOpenMeteoCondition(-1))

	assert.Equal(t, weather.ConditionSunny, mapOpenWeatherCondition("Clear"))
	assert.Equal(t, weather.ConditionWindy, mapOpenWeatherCondition("Squall"))
	assert.Equal(t, weather.ConditionUnknown, mapOpenWeatherCondition("Ash"))

	assert.Equal(t, weather.ConditionSnowy, mapWeatherAPICondition("Patchy light snow"))
	assert.Equal(t, weather.ConditionRainy, mapWeatherAPICondition("Moderate rain at times"))
	assert.Equal(t, weather.ConditionCloudy, mapWeatherAPICondition("Partly cloudy"))
	assert.Equal(t, weather.ConditionSunny, mapWeatherAPICondition("Sunny"))
	assert.Equal(t, weather.ConditionUnknown, mapWeatherAPICondition(""))
}

func TestOpenWeatherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris,FR", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		w.Write([]byte(`{"dt":1704888000,"main":{"temp":8,"temp_max":9,"temp_min":6,"humidity":70,"pressure":1012},
			"wind":{"speed":5},"clouds":{"all":75},"rain":{"3h":1.5},"weather":[{"main":"Rain"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), weather.Location{City: "Paris", Country: "FR"})
	require.NoError(t, err)
	assert.InDelta(t, 18.0, r.WindSpeedKmh, 1e-9)
	assert.Equal(t, 1.5, r.PrecipMm)
	assert.Equal(t, weather.ConditionRainy, r.Condition)
	assert.Equal(t, time.Unix(1704888000, 0).UTC(), r.Timestamp)

	_, err = NewOpenWeatherProvider(srv.Client(), "").Fetch(context.Background(), weather.Location{City: "Paris"})
	assert.Error(t, err)
}
