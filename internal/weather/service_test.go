package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	snapshots map[string][]WeatherSnapshot
	forecasts map[string]Forecast
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: map[string][]WeatherSnapshot{}, forecasts: map[string]Forecast{}}
}

var errMissing = errors.New("missing")

func (s *fakeStore) SaveSnapshot(loc Location, snap WeatherSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[loc.Key()] = append(s.snapshots[loc.Key()], snap)
}

func (s *fakeStore) SaveForecast(loc Location, f Forecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[loc.Key()] = f
}

func (s *fakeStore) GetLatest(loc Location) (WeatherSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.snapshots[loc.Key()]
	if len(h) == 0 {
		return WeatherSnapshot{}, errMissing
	}
	return h[len(h)-1], nil
}

func (s *fakeStore) GetForecast(loc Location) (Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forecasts[loc.Key()]
	if !ok {
		return nil, errMissing
	}
	return f, nil
}

func (s *fakeStore) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return nil, errMissing
}

type fakeProvider struct {
	name    string
	reading ProviderReading
	days    []ProviderReading
	err     error
	calls   int
	mu      sync.Mutex
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Fetch(context.Context, Location) (ProviderReading, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return ProviderReading{}, p.err
	}
	r := p.reading
	r.ProviderName = p.name
	return r, nil
}

func (p *fakeProvider) FetchForecast(_ context.Context, _ Location, days int) ([]ProviderReading, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.days) > days {
		return p.days[:days], nil
	}
	return p.days, nil
}

func forecastDays(temps ...float64) []ProviderReading {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]ProviderReading, len(temps))
	for i, t := range temps {
		out[i] = ProviderReading{Timestamp: start.AddDate(0, 0, i), TemperatureC: t, HighC: t + 3, Condition: ConditionSunny}
	}
	return out
}

func TestFetchAndStore(t *testing.T) {
	st := newFakeStore()
	a := &fakeProvider{name: "a", reading: ProviderReading{TemperatureC: 10, Condition: ConditionRainy}, days: forecastDays(10, 12, 14, 16)}
	b := &fakeProvider{name: "b", reading: ProviderReading{TemperatureC: 14, Condition: ConditionRainy}, days: forecastDays(12, 14, 16)}
	broken := &fakeProvider{name: "broken", err: errors.New("boom")}

	svc := NewService(st, []Provider{a, b, broken})
	loc := Location{City: "Lyon", Country: "FR"}
	require.NoError(t, svc.FetchAndStore(context.Background(), loc))

	snap, err := svc.GetLatest(loc)
	require.NoError(t, err)
	assert.Equal(t, 12.0, snap.Temperature)
	assert.Equal(t, ConditionRainy, snap.Condition)

	f, err := svc.GetStoredForecast(loc)
	require.NoError(t, err)
	require.Len(t, f, ForecastDays)
	assert.Equal(t, 11.0, f[0].Temperature)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f[0].Timestamp)
}

func TestFetchAndStoreKeepsLastGood(t *testing.T) {
	st := newFakeStore()
	loc := Location{City: "Lyon", Country: "FR"}
	st.SaveSnapshot(loc, WeatherSnapshot{Temperature: 9})

	svc := NewService(st, []Provider{&fakeProvider{name: "down", err: errors.New("boom")}})
	require.NoError(t, svc.FetchAndStore(context.Background(), loc))

	snap, err := svc.GetLatest(loc)
	require.NoError(t, err)
	assert.Equal(t, 9.0, snap.Temperature)
}

func TestFetchAndStoreNoProviders(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	assert.Error(t, svc.FetchAndStore(context.Background(), Location{City: "X"}))
}

func TestGetForecastRejectsZeroDays(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.GetForecast(context.Background(), Location{City: "X"}, 0)
	assert.Error(t, err)
}

func TestOrigin(t *testing.T) {
	loc := Location{City: "Lyon", Country: "FR"}

	t.Run("stored snapshot wins", func(t *testing.T) {
		st := newFakeStore()
		st.SaveSnapshot(loc, WeatherSnapshot{Temperature: 3})
		p := &fakeProvider{name: "p", reading: ProviderReading{TemperatureC: 30}}

		snap, forecast, err := NewService(st, []Provider{p}).Origin(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, 3.0, snap.Temperature)
		assert.Empty(t, forecast)
		assert.Zero(t, p.calls)
	})

	t.Run("fetches when nothing is stored", func(t *testing.T) {
		st := newFakeStore()
		p := &fakeProvider{name: "p", reading: ProviderReading{TemperatureC: 30, Condition: ConditionSunny}, days: forecastDays(30, 31, 32)}

		snap, forecast, err := NewService(st, []Provider{p}).Origin(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, 30.0, snap.Temperature)
		assert.Len(t, forecast, 3)

		_, err = st.GetLatest(loc)
		assert.NoError(t, err)
	})

	t.Run("no providers and no data", func(t *testing.T) {
		_, _, err := NewService(newFakeStore(), nil).Origin(context.Background(), loc)
		assert.Error(t, err)
	})
}
