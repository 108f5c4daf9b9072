package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-destinations/internal/pipeline"
)

func TestApplyPipelineEnv(t *testing.T) {
	t.Setenv("BADGE_WTD_CAP", "5")
	t.Setenv("BADGE_SNOW_PER_COUNTRY", "2")
	t.Setenv("DECLUTTER_PHASE1_SHARE", "0.5")
	t.Setenv("DECLUTTER_CELL_QUOTA", "not-a-number")
	t.Setenv("DECLUTTER_MAX_MARKERS", "80")

	p := ApplyPipelineEnv(pipeline.DefaultConfig())
	assert.Equal(t, 5, p.Badges.WorthTheDrive.Cap)
	assert.Equal(t, 2, p.Badges.SnowKing.PerCountryCap)
	assert.Equal(t, 0.5, p.Declutter.Phase1Share)
	assert.Equal(t, 3, p.Declutter.CellQuota)
	assert.Equal(t, 80, p.Declutter.MarkerCeiling)
	assert.Equal(t, 10, p.Badges.Beach.Cap)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "")
	t.Setenv("FETCH_INTERVAL", "")
	t.Setenv("PIPELINE_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Empty(t, cfg.Locations)
	assert.Equal(t, 6, cfg.Pipeline.Badges.GlyphLimit)
}

func TestLoadLocations(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, Lyon")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR,FR")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Locations, 2)
	assert.Equal(t, "Lyon", cfg.Locations[1].City)

	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)
}
