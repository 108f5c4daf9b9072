package badge

import (
	"sort"

	"github.com/i474232898/weather-destinations/internal/destination"
)

// Result is a candidate with its final badges after arbitration.
type Result struct {
	Evaluation
	Badges []Type `json:"badges"`
	// MapBadges are the glyphs drawn on the marker, highest priority first.
	MapBadges []Type `json:"mapBadges"`
}

// Has reports whether the result holds t.
func (r Result) Has(t Type) bool {
	for _, b := range r.Badges {
		if b == t {
			return true
		}
	}
	return false
}

// VisibleCount is the number of badges drawn on the map, ignoring the glyph limit.
func (r Result) VisibleCount(detailOnly map[Type]bool) int {
	n := 0
	for _, b := range r.Badges {
		if !detailOnly[b] {
			n++
		}
	}
	return n
}

// arbiter tracks awarded badges by candidate index.
type arbiter struct {
	cfg     Config
	evals   []Evaluation
	awarded []map[Type]bool
}

// Arbitrate resolves the global constraints over the whole candidate set:
// the budget winner, caps, spacing, per-country limits and exclusivity.
// The result has the same order as evals.
func Arbitrate(cfg Config, evals []Evaluation) []Result {
	a := &arbiter{
		cfg:     cfg,
		evals:   evals,
		awarded: make([]map[Type]bool, len(evals)),
	}
	for i := range a.awarded {
		a.awarded[i] = make(map[Type]bool)
	}

	// The budget winner has to be known before Worth the Drive is capped.
	winner := a.budgetWinner()
	a.worthTheDrive(winner)
	a.beachParadise()
	a.sunnyStreak()
	a.snowKing()
	a.warmAndDry()
	a.unlimited(WeatherMiracle)
	a.unlimited(Heatwave)

	detailOnly := cfg.DetailOnlySet()
	out := make([]Result, len(evals))
	for i, e := range evals {
		badges := Ordered(a.awarded[i])
		out[i] = Result{
			Evaluation: e,
			Badges:     badges,
			MapBadges:  ForMap(badges, detailOnly, cfg.GlyphLimit),
		}
	}
	return out
}

// eligible returns the indexes eligible for t, never including the origin.
func (a *arbiter) eligible(t Type) []int {
	var idx []int
	for i, e := range a.evals {
		if e.Candidate.Origin {
			continue
		}
		if e.Eligible(t) {
			idx = append(idx, i)
		}
	}
	return idx
}

// budgetWinner awards the budget badge to the single most efficient
// candidate. Earlier candidates win exact ties. Returns -1 when nobody
// qualifies.
func (a *arbiter) budgetWinner() int {
	winner := -1
	for _, i := range a.eligible(WorthTheDriveBudget) {
		if winner < 0 || a.evals[i].Budget.Efficiency > a.evals[winner].Budget.Efficiency {
			winner = i
		}
	}
	if winner >= 0 {
		a.awarded[winner][WorthTheDriveBudget] = true
	}
	return winner
}

// worthTheDrive caps and spaces the drive badge. The budget winner never
// holds it.
func (a *arbiter) worthTheDrive(budgetWinner int) {
	var idx []int
	for _, i := range a.eligible(WorthTheDrive) {
		if i != budgetWinner {
			idx = append(idx, i)
		}
	}
	a.sortBy(idx, func(e Evaluation) []float64 {
		return []float64{e.Candidate.Temperature, e.Drive.Rank}
	})
	cfg := a.cfg.WorthTheDrive
	a.award(WorthTheDrive, a.greedy(idx, cfg.Cap, cfg.MinSpacingKm, 0))
}

func (a *arbiter) beachParadise() {
	idx := a.eligible(BeachParadise)
	a.sortBy(idx, func(e Evaluation) []float64 {
		return []float64{e.Beach.Score, e.Candidate.Temperature}
	})
	a.award(BeachParadise, a.greedy(idx, a.cfg.Beach.Cap, 0, 0))
}

func (a *arbiter) sunnyStreak() {
	idx := a.eligible(SunnyStreak)
	a.sortBy(idx, func(e Evaluation) []float64 {
		return []float64{e.Streak.Score, e.Candidate.Temperature}
	})
	cfg := a.cfg.SunnyStreak
	a.award(SunnyStreak, a.greedy(idx, cfg.Cap, cfg.MinSpacingKm, 0))
}

func (a *arbiter) snowKing() {
	idx := a.eligible(SnowKing)
	a.sortBy(idx, func(e Evaluation) []float64 {
		return []float64{e.Snow.Score}
	})
	cfg := a.cfg.SnowKing
	a.award(SnowKing, a.greedy(idx, cfg.Cap, 0, cfg.PerCountryCap))
}

func (a *arbiter) warmAndDry() {
	idx := a.eligible(WarmAndDry)
	a.sortBy(idx, func(e Evaluation) []float64 {
		return []float64{e.Candidate.Temperature}
	})
	a.award(WarmAndDry, a.greedy(idx, a.cfg.WarmAndDry.Cap, 0, 0))
}

func (a *arbiter) unlimited(t Type) {
	a.award(t, a.eligible(t))
}

func (a *arbiter) award(t Type, idx []int) {
	for _, i := range idx {
		a.awarded[i][t] = true
	}
}

// sortBy orders idx by the keys descending, comparing them left to right.
// Equal keys keep input order.
func (a *arbiter) sortBy(idx []int, keys func(Evaluation) []float64) {
	sort.SliceStable(idx, func(i, j int) bool {
		ki, kj := keys(a.evals[idx[i]]), keys(a.evals[idx[j]])
		for n := range ki {
			if ki[n] != kj[n] {
				return ki[n] > kj[n]
			}
		}
		return false
	})
}

// greedy walks idx in order and accepts up to limit candidates. A positive
// spacingKm rejects candidates that close to an accepted one; a positive
// perCountry limits holders per country code. Candidates without a country
// code are not subject to the country limit.
func (a *arbiter) greedy(idx []int, limit int, spacingKm float64, perCountry int) []int {
	var accepted []int
	countries := make(map[string]int)
	for _, i := range idx {
		if len(accepted) >= limit {
			break
		}
		c := a.evals[i].Candidate
		if spacingKm > 0 && a.tooClose(c, accepted, spacingKm) {
			continue
		}
		if perCountry > 0 && c.CountryCode != "" && countries[c.CountryCode] >= perCountry {
			continue
		}
		accepted = append(accepted, i)
		countries[c.CountryCode]++
	}
	return accepted
}

func (a *arbiter) tooClose(c destination.Candidate, accepted []int, spacingKm float64) bool {
	for _, j := range accepted {
		if destination.DistanceKm(c.Position, a.evals[j].Candidate.Position) < spacingKm {
			return true
		}
	}
	return false
}
