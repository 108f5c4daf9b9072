package declutter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/destination"
)

func TestMaxMarkers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30, cfg.MaxMarkers(3, 1000))
	assert.Equal(t, 25, cfg.MaxMarkers(5, 200))
	assert.Equal(t, 150, cfg.MaxMarkers(8, 5000))
	assert.Equal(t, 100, cfg.MaxMarkers(4, 2000))
	assert.Equal(t, 10, cfg.Phase1Slots(25))
}

func TestMinMarkerDistance(t *testing.T) {
	cfg := DefaultConfig()
	for zoom, want := range map[int]float64{1: 80, 4: 80, 5: 60, 6: 45, 7: 30, 8: 20, 12: 20} {
		assert.Equal(t, want, cfg.MinMarkerDistanceKm(zoom), "zoom %d", zoom)
	}
}

func TestCellOf(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, CellKey{Row: 4, Col: -1}, cfg.CellOf(destination.Position{Lat: 10, Lon: -1}))
	assert.Equal(t, CellKey{Row: 0, Col: 0}, cfg.CellOf(destination.Position{Lat: 1.85, Lon: 0.1}))
}

func result(id string, lat, lon float64, badges ...badge.Type) badge.Result {
	c := destination.Candidate{
		ID:             id,
		Position:       destination.Position{Lat: lat, Lon: lon},
		Temperature:    20,
		Attractiveness: 50,
		DistanceKm:     100,
	}
	return badge.Result{
		Evaluation: badge.Evaluation{Candidate: c},
		Badges:     badges,
		MapBadges:  badge.ForMap(badges, badge.DefaultConfig().DetailOnlySet(), 6),
	}
}

// gridResults returns n results 0.25° apart, all inside grid cell (0, 0).
func gridResults(n int, badges ...badge.Type) []badge.Result {
	out := make([]badge.Result, 0, n)
	for i := 0; i < n; i++ {
		lat := 0.1 + 0.25*float64(i/8)
		lon := 0.1 + 0.25*float64(i%8)
		out = append(out, result(fmt.Sprintf("g%02d", i), lat, lon, badges...))
	}
	return out
}

func farOrigin() *destination.Candidate {
	o := destination.SyntheticOrigin(destination.Position{Lat: 30, Lon: 30}, nil)
	return &o
}

func newSelector() *Selector {
	return NewSelector(DefaultConfig(), badge.DefaultConfig().DetailOnlySet())
}

func TestSelectGridQuota(t *testing.T) {
	// Zoom 8, radius 100: budget 25, phase 1 ends at 10 markers.
	vp := Viewport{Zoom: 8, RadiusKm: 100}

	t.Run("plain markers stop at the cell quota", func(t *testing.T) {
		markers := newSelector().Select(farOrigin(), gridResults(30), vp)
		assert.Len(t, markers, 10)
		for _, m := range markers[1:] {
			assert.Equal(t, PhaseSpacing, m.Phase)
		}
	})

	t.Run("visible badge holders bypass the quota", func(t *testing.T) {
		rs := gridResults(22)
		for i := 0; i < 12; i++ {
			rs[i] = result(rs[i].Candidate.ID, rs[i].Candidate.Position.Lat, rs[i].Candidate.Position.Lon, badge.BeachParadise)
		}
		markers := newSelector().Select(farOrigin(), rs, vp)
		require.Len(t, markers, 13)
		for _, m := range markers[1:] {
			assert.Contains(t, m.Badges, badge.BeachParadise)
		}
		assert.Equal(t, PhaseGrid, markers[12].Phase)
	})

	t.Run("detail-only badges do not bypass the quota", func(t *testing.T) {
		markers := newSelector().Select(farOrigin(), gridResults(22, badge.WarmAndDry), vp)
		assert.Len(t, markers, 10)
	})
}

func TestSelectAlwaysShowsBudgetWinner(t *testing.T) {
	popular := result("popular", 45, 10)
	popular.Candidate.Attractiveness = 95
	budget := result("budget", 45.01, 10, badge.WorthTheDriveBudget)

	markers := newSelector().Select(farOrigin(), []badge.Result{popular, budget}, Viewport{Zoom: 5, RadiusKm: 500})

	require.Len(t, markers, 2)
	assert.Equal(t, destination.OriginID, markers[0].Candidate.ID)
	assert.Equal(t, "budget", markers[1].Candidate.ID)
	assert.Equal(t, PhaseAlways, markers[1].Phase)
}

func TestSelectPinnedIgnoresSpacing(t *testing.T) {
	special := result("special", 45, 10)
	special.Candidate.Special = true
	near := result("near", 45.01, 10)

	markers := newSelector().Select(nil, []badge.Result{special, near}, Viewport{Zoom: 5, RadiusKm: 500})

	require.Len(t, markers, 2)
	assert.Equal(t, PhasePinned, markers[0].Phase)
	assert.Equal(t, "near", markers[1].Candidate.ID)
}

func TestSelectBoundsAndSpacing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var rs []badge.Result
	for i := 0; i < 500; i++ {
		r := result(fmt.Sprintf("r%03d", i), 35+rng.Float64()*25, -10+rng.Float64()*40)
		r.Candidate.Attractiveness = rng.Float64() * 100
		r.Candidate.Temperature = rng.Float64() * 30
		rs = append(rs, r)
	}

	for _, zoom := range []int{3, 5, 7, 9} {
		vp := Viewport{Zoom: zoom, RadiusKm: 1000}
		cfg := DefaultConfig()
		markers := newSelector().Select(farOrigin(), rs, vp)

		assert.LessOrEqual(t, len(markers), cfg.MaxMarkers(zoom, vp.RadiusKm))
		require.NotEmpty(t, markers)
		assert.True(t, markers[0].Candidate.Origin)

		minKm := cfg.MinMarkerDistanceKm(zoom)
		for i := 1; i < len(markers); i++ {
			assert.NotNil(t, markers[i].Badges)
			assert.NotNil(t, markers[i].MapBadges)
			for j := i + 1; j < len(markers); j++ {
				d := destination.DistanceKm(markers[i].Candidate.Position, markers[j].Candidate.Position)
				assert.GreaterOrEqual(t, d, minKm)
			}
		}

		again := newSelector().Select(farOrigin(), rs, vp)
		assert.Equal(t, markers, again)
	}
}

func TestSortedTolerance(t *testing.T) {
	a := result("a", 0, 0)
	a.Candidate.Attractiveness = 52
	a.Candidate.Temperature = 20

	b := result("b", 0, 0)
	b.Candidate.Attractiveness = 54
	b.Candidate.Temperature = 25

	c := result("c", 0, 0)
	c.Candidate.Attractiveness = 40

	badged := result("badged", 0, 0, badge.Heatwave)
	badged.Candidate.Attractiveness = 10

	near := result("near", 0, 0)
	near.Candidate.Attractiveness = 53
	near.Candidate.Temperature = 25.5
	near.Candidate.DistanceKm = 5

	got := newSelector().sorted([]badge.Result{c, a, b, badged, near})
	var order []string
	for _, r := range got {
		order = append(order, r.Candidate.ID)
	}
	assert.Equal(t, []string{"badged", "near", "b", "a", "c"}, order)
}

func TestSelectEmpty(t *testing.T) {
	assert.Empty(t, newSelector().Select(nil, nil, Viewport{Zoom: 5, RadiusKm: 100}))
}

func TestSelectMandatoryMarkersUseTheBudget(t *testing.T) {
	vp := Viewport{Zoom: 8, RadiusKm: 100} // budget 25

	var rs []badge.Result
	for i := 0; i < 24; i++ {
		r := result(fmt.Sprintf("s%02d", i), 30+float64(i), 0)
		r.Candidate.Special = true
		rs = append(rs, r)
	}
	rs = append(rs, result("budget", 10, 10, badge.WorthTheDriveBudget))
	rs = append(rs, gridResults(20)...)

	markers := newSelector().Select(farOrigin(), rs, vp)

	// Origin, 24 special markers and the budget holder: the remainder gets nothing.
	require.Len(t, markers, 26)
	for _, m := range markers {
		assert.NotEqual(t, PhaseSpacing, m.Phase)
		assert.NotEqual(t, PhaseGrid, m.Phase)
	}

	// With room left the remainder fills up to the budget exactly.
	markers = newSelector().Select(farOrigin(), append(rs[20:25:25], gridResults(64, badge.BeachParadise)...), vp)
	assert.Len(t, markers, 25)
}

func TestMarkerCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarkerCeiling = 60
	assert.Equal(t, 60, cfg.MaxMarkers(8, 5000))
	assert.Equal(t, 25, cfg.MaxMarkers(3, 100))
}

func TestSortedToleranceAcrossBandEdge(t *testing.T) {
	a := result("a", 0, 0)
	a.Candidate.Attractiveness = 50.1
	a.Candidate.Temperature = 10

	b := result("b", 0, 0)
	b.Candidate.Attractiveness = 49.9
	b.Candidate.Temperature = 30

	got := newSelector().sorted([]badge.Result{a, b})
	assert.Equal(t, "b", got[0].Candidate.ID)

	// Outside the tolerance attractiveness decides on its own.
	b.Candidate.Attractiveness = 44
	got = newSelector().sorted([]badge.Result{b, a})
	assert.Equal(t, "a", got[0].Candidate.ID)
}
