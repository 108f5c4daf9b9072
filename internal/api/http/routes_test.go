package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/pipeline"
	"github.com/i474232898/weather-destinations/internal/store"
	"github.com/i474232898/weather-destinations/internal/weather"
)

type testEnv struct {
	app    *fiber.App
	memory *store.MemoryStore
	places *store.PlaceStore
}

func newTestApp(t *testing.T) *testEnv {
	t.Helper()

	memStore := store.NewMemoryStore(10, time.Hour)
	places, err := store.NewPlaceStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { places.Close() })

	svc := weather.NewService(memStore, nil)
	markers := pipeline.NewService(pipeline.DefaultConfig(), destination.NewSource(places, svc), svc)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{Weather: svc, Markers: markers, Places: places})
	return &testEnv{app: app, memory: memStore, places: places}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	return resp, body
}

// TestForecastDaysValidation verifies that the forecast endpoint enforces the
// expected 1-7 range for the `days` query parameter.
func TestForecastDaysValidation(t *testing.T) {
	env := newTestApp(t)

	// Missing days parameter should return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast?city=Paris&country=FR", nil)
	resp, body := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, body["error"])

	// Out-of-range days value should also return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast?city=Paris&country=FR&days=8", nil)
	resp, _ = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCurrentWeather(t *testing.T) {
	env := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Paris&country=FR", nil)
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env.memory.SaveSnapshot(weather.Location{City: "Paris", Country: "FR"}, weather.WeatherSnapshot{
		Timestamp:   time.Now().UTC(),
		Temperature: 12.5,
		Condition:   weather.ConditionCloudy,
	})
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Paris&country=FR", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12.5, body["temperatureC"])

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Paris", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBadges(t *testing.T) {
	env := newTestApp(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/badges", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var badges []struct {
		Type       string `json:"type"`
		Priority   int    `json:"priority"`
		DetailOnly bool   `json:"detailOnly"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&badges))
	require.Len(t, badges, 8)
	for _, b := range badges {
		assert.Equal(t, b.Type == "WARM_AND_DRY", b.DetailOnly, b.Type)
	}
}

func TestMarkersValidation(t *testing.T) {
	env := newTestApp(t)

	for _, q := range []string{
		"",
		"?lat=48",
		"?lat=abc&lon=11",
		"?lat=48&lon=11&zoom=0",
		"?lat=48&lon=11&radius=-5",
		"?lat=120&lon=11",
		"?city=Munich&country=DE",
	} {
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/markers"+q, nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestMarkers(t *testing.T) {
	env := newTestApp(t)
	ctx := context.Background()

	_, err := env.places.Upsert(ctx, []destination.Place{
		{ID: "munich", Name: "Munich", Position: destination.Position{Lat: 48.137, Lon: 11.575}, CountryCode: "DE"},
		{ID: "verona", Name: "Verona", Position: destination.Position{Lat: 45.438, Lon: 10.992}, CountryCode: "IT"},
		{ID: "dry", Name: "No weather", Position: destination.Position{Lat: 47, Lon: 11}, CountryCode: "AT"},
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	env.memory.SaveSnapshot(weather.Location{PlaceID: "munich"}, weather.WeatherSnapshot{Timestamp: now, Temperature: 4, Condition: weather.ConditionRainy})
	env.memory.SaveSnapshot(weather.Location{PlaceID: "verona"}, weather.WeatherSnapshot{Timestamp: now, Temperature: 19, Condition: weather.ConditionSunny, WindSpeed: 5})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markers?lat=48.137&lon=11.575&radius=600&zoom=5", nil)
	req.Header.Set("X-Session-ID", "tab-1")
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2.0, body["candidates"])
	assert.NotEmpty(t, body["run"])

	markers, ok := body["markers"].([]any)
	require.True(t, ok)
	require.Len(t, markers, 3)
	first := markers[0].(map[string]any)
	assert.Equal(t, "origin", first["phase"])
}

func TestLatestMarkers(t *testing.T) {
	env := newTestApp(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/markers/latest", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markers/latest", nil)
	req.Header.Set("X-Session-ID", "tab-9")
	resp, _ = env.do(t, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/markers?lat=48.137&lon=11.575&radius=600&zoom=5", nil)
	req.Header.Set("X-Session-ID", "tab-9")
	resp, searched := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/markers/latest", nil)
	req.Header.Set("X-Session-ID", "tab-9")
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, searched["run"], body["run"])
	assert.NotEmpty(t, body["markers"])
}

func TestEvaluate(t *testing.T) {
	env := newTestApp(t)

	payload := `{
		"origin": {"id": "home", "lat": 52.52, "lon": 13.405, "temperature": 5, "condition": "cloudy"},
		"candidates": [
			{"id": "a", "lat": 51.34, "lon": 12.37, "temperature": 15, "condition": "cloudy"},
			{"id": "b", "lat": 48.14, "lon": 11.58, "temperature": 25, "condition": "sunny", "stability": 80},
			{"id": "skipped", "lat": 50, "lon": 10}
		],
		"viewport": {"zoom": 5, "radiusKm": 600}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/markers/evaluate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2.0, body["candidates"])
	markers := body["markers"].([]any)
	require.Len(t, markers, 3)
	origin := markers[0].(map[string]any)["candidate"].(map[string]any)
	assert.Equal(t, "home", origin["id"])

	bad := `{"candidates": [{"lat": 10, "lon": 10, "temperature": 20}], "viewport": {"zoom": 5, "radiusKm": 100}}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/markers/evaluate", strings.NewReader(bad))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostPlaces(t *testing.T) {
	env := newTestApp(t)

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/places", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := env.do(t, req)
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, post(`[{"id":"x","position":{"lat":91,"lon":0}}]`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(`[{"position":{"lat":1,"lon":0}}]`).StatusCode)
	assert.Equal(t, http.StatusCreated, post(`[{"id":"nice","name":"Nice","position":{"lat":43.7,"lon":7.27}}]`).StatusCode)

	n, err := env.places.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
