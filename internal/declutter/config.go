// Package declutter picks the bounded, well spread subset of destinations
// that is drawn on the map at a given zoom.
package declutter

import (
	"math"

	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/common"
)

// ZoomStep maps every zoom level up to and including MaxZoom to Value.
type ZoomStep struct {
	MaxZoom int     `json:"max_zoom"`
	Value   float64 `json:"value"`
}

// Config holds the marker budget, spacing table and grid settings.
type Config struct {
	MinMarkers        int        `json:"min_markers"`
	MarkerCeiling     int        `json:"max_markers"`
	KmPerMarker       float64    `json:"km_per_marker"`
	ZoomFactors       []ZoomStep `json:"zoom_factors"`
	ZoomFactorDefault float64    `json:"zoom_factor_default"`

	MinDistanceKm        []ZoomStep `json:"min_distance_km"`
	MinDistanceKmDefault float64    `json:"min_distance_km_default"`

	GridCellSizeKm float64 `json:"grid_cell_size_km"`
	KmPerDegree    float64 `json:"km_per_degree"`
	CellQuota      int     `json:"cell_quota"`

	// Phase1Share of the marker budget is filled with spacing as the only rule.
	Phase1Share float64 `json:"phase1_share"`

	AttractivenessTolerance float64 `json:"attractiveness_tolerance"`
	TempToleranceC          float64 `json:"temp_tolerance_c"`

	// AlwaysShow badges put their holders on the map unconditionally.
	AlwaysShow []badge.Type `json:"always_show"`
}

// DefaultConfig returns the production marker settings.
func DefaultConfig() Config {
	return Config{
		MinMarkers:    25,
		MarkerCeiling: 150,
		KmPerMarker:   20,
		ZoomFactors: []ZoomStep{
			{MaxZoom: 3, Value: 0.6},
			{MaxZoom: 4, Value: 1.0},
			{MaxZoom: 5, Value: 1.5},
		},
		ZoomFactorDefault: 2.0,
		MinDistanceKm: []ZoomStep{
			{MaxZoom: 4, Value: 80},
			{MaxZoom: 5, Value: 60},
			{MaxZoom: 6, Value: 45},
			{MaxZoom: 7, Value: 30},
		},
		MinDistanceKmDefault:    20,
		GridCellSizeKm:          250,
		KmPerDegree:             111.32,
		CellQuota:               3,
		Phase1Share:             0.4,
		AttractivenessTolerance: 5,
		TempToleranceC:          2,
		AlwaysShow:              []badge.Type{badge.WorthTheDriveBudget},
	}
}

func lookup(steps []ZoomStep, zoom int, def float64) float64 {
	for _, s := range steps {
		if zoom <= s.MaxZoom {
			return s.Value
		}
	}
	return def
}

// MaxMarkers is the marker budget for the zoom level and search radius.
func (c Config) MaxMarkers(zoom int, radiusKm float64) int {
	base := math.Floor(radiusKm / c.KmPerMarker)
	factor := lookup(c.ZoomFactors, zoom, c.ZoomFactorDefault)
	return int(math.Round(common.Clamp(base*factor, float64(c.MinMarkers), float64(c.MarkerCeiling))))
}

// MinMarkerDistanceKm is the minimum spacing between markers at zoom.
func (c Config) MinMarkerDistanceKm(zoom int) float64 {
	return lookup(c.MinDistanceKm, zoom, c.MinDistanceKmDefault)
}

// Phase1Slots is the number of slots filled before the grid quota applies.
func (c Config) Phase1Slots(maxMarkers int) int {
	return int(math.Floor(float64(maxMarkers) * c.Phase1Share))
}
