package badge

import (
	"math"

	"github.com/i474232898/weather-destinations/internal/common"
	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/weather"
)

// DriveCheck is the Worth the Drive outcome with the figures behind it.
type DriveCheck struct {
	Eligible    bool    `json:"eligible"`
	ETAHours    float64 `json:"etaHours"`
	DestScore   float64 `json:"destScore"`
	OriginScore float64 `json:"originScore"`
	Delta       float64 `json:"delta"`
	Value       float64 `json:"value"`
	Rank        float64 `json:"rank"`
}

type BudgetCheck struct {
	Eligible   bool    `json:"eligible"`
	TempDelta  float64 `json:"tempDelta"`
	Efficiency float64 `json:"efficiency"`
}

type WarmAndDryCheck struct {
	Eligible bool `json:"eligible"`
}

type BeachCheck struct {
	Eligible bool    `json:"eligible"`
	Score    float64 `json:"score"`
}

type StreakCheck struct {
	Eligible  bool    `json:"eligible"`
	SunnyDays int     `json:"sunnyDays"`
	Score     float64 `json:"score"`
}

type MiracleCheck struct {
	Eligible bool    `json:"eligible"`
	TempGain float64 `json:"tempGain"`
}

type HeatwaveCheck struct {
	Eligible bool `json:"eligible"`
	HotDays  int  `json:"hotDays"`
}

type SnowCheck struct {
	Eligible   bool    `json:"eligible"`
	Path       string  `json:"path,omitempty"`
	SnowyDays  int     `json:"snowyDays"`
	AvgTempC   float64 `json:"avgTempC"`
	MaxTempC   float64 `json:"maxTempC"`
	SnowfallMM float64 `json:"snowfallMm"`
	Score      float64 `json:"score"`
}

// Evaluation is everything the scoring stage knows about one candidate.
type Evaluation struct {
	Candidate    destination.Candidate `json:"-"`
	WeatherScore float64               `json:"weatherScore"`
	Drive        DriveCheck            `json:"worthTheDrive"`
	Budget       BudgetCheck           `json:"budget"`
	WarmAndDry   WarmAndDryCheck       `json:"warmAndDry"`
	Beach        BeachCheck            `json:"beachParadise"`
	Streak       StreakCheck           `json:"sunnyStreak"`
	Miracle      MiracleCheck          `json:"weatherMiracle"`
	Heatwave     HeatwaveCheck         `json:"heatwave"`
	Snow         SnowCheck             `json:"snowKing"`
}

// Eligible reports whether the candidate passed the rule for t before any
// arbitration.
func (e Evaluation) Eligible(t Type) bool {
	switch t {
	case WorthTheDrive:
		return e.Drive.Eligible
	case WorthTheDriveBudget:
		return e.Budget.Eligible
	case WarmAndDry:
		return e.WarmAndDry.Eligible
	case BeachParadise:
		return e.Beach.Eligible
	case SunnyStreak:
		return e.Streak.Eligible
	case WeatherMiracle:
		return e.Miracle.Eligible
	case Heatwave:
		return e.Heatwave.Eligible
	case SnowKing:
		return e.Snow.Eligible
	}
	return false
}

// WeatherScore rates the weather from 0 to 100.
func WeatherScore(cfg ScoreConfig, tempC float64, cond weather.Condition, stability, windKmh float64) float64 {
	tempTerm := math.Max(0, 100-cfg.TempPenaltyPerDegree*math.Abs(tempC-cfg.IdealTempC))
	condTerm, ok := cfg.ConditionQuality[cond]
	if !ok {
		condTerm = cfg.UnknownConditionScore
	}
	windTerm := math.Max(0, 100-windKmh*cfg.WindPenaltyPerKmh)

	w := cfg.Weights
	score := tempTerm*w.Temperature + condTerm*w.Condition + stability*w.Stability + windTerm*w.Wind
	return math.Round(common.Clamp(score, 0, 100))
}

func scoreOf(cfg ScoreConfig, c destination.Candidate) float64 {
	return WeatherScore(cfg, c.Temperature, c.Condition, c.Stability, c.WindSpeed)
}

// ETAHours estimates travel time; the floor keeps very close places from
// getting inflated value scores.
func ETAHours(cfg TravelConfig, distanceKm float64) float64 {
	return math.Max(cfg.MinETAHours, distanceKm/cfg.AvgSpeedKmh)
}

// CheckWorthTheDrive compares the weather on arrival at dest with the
// origin's. Without an Arrival lookup the current weather stands in for the
// weather at arrival time.
func CheckWorthTheDrive(cfg Config, dest, origin destination.Candidate) DriveCheck {
	eta := ETAHours(cfg.Travel, dest.DistanceKm)
	if cfg.Arrival != nil {
		dest = cfg.Arrival(dest, eta)
		origin = cfg.Arrival(origin, eta)
	}

	destScore := scoreOf(cfg.Score, dest)
	originScore := scoreOf(cfg.Score, origin)
	delta := destScore - originScore
	value := delta / (eta + cfg.Travel.ETAOffsetHours)

	d := cfg.WorthTheDrive
	return DriveCheck{
		Eligible: destScore >= d.MinDestScore &&
			delta >= d.MinScoreDelta &&
			value >= d.MinValue &&
			dest.Temperature >= d.MinDestTempC &&
			dest.Temperature-origin.Temperature >= d.MinTempGainC,
		ETAHours:    eta,
		DestScore:   destScore,
		OriginScore: originScore,
		Delta:       delta,
		Value:       value,
		Rank:        value*d.RankValueWeight + destScore*d.RankScoreWeight,
	}
}

// CheckBudget computes degrees gained per kilometre travelled.
func CheckBudget(cfg BudgetConfig, dest, origin destination.Candidate) BudgetCheck {
	gain := dest.Temperature - origin.Temperature
	return BudgetCheck{
		Eligible:   gain >= cfg.MinTempGainC && dest.Temperature >= cfg.MinDestTempC,
		TempDelta:  gain,
		Efficiency: gain / math.Max(dest.DistanceKm, cfg.MinDistanceKm),
	}
}

func CheckWarmAndDry(cfg WarmAndDryConfig, c destination.Candidate) WarmAndDryCheck {
	wet := c.Condition == weather.ConditionRainy || c.Condition == weather.ConditionSnowy
	return WarmAndDryCheck{
		Eligible: c.Temperature >= cfg.MinTempC && !wet && c.WindSpeed <= cfg.MaxWindKmh,
	}
}

// comfortScore ranks beach and streak holders: warmer and more attractive first.
func comfortScore(c destination.Candidate, attractivenessWeight float64) float64 {
	return c.Temperature + attractivenessWeight*c.Attractiveness
}

func CheckBeach(cfg BeachConfig, c destination.Candidate) BeachCheck {
	fair := c.Condition == weather.ConditionSunny || c.Condition == weather.ConditionCloudy
	return BeachCheck{
		Eligible: c.Temperature >= cfg.MinTempC && c.Temperature <= cfg.MaxTempC &&
			fair && c.WindSpeed <= cfg.MaxWindKmh,
		Score: comfortScore(c, cfg.AttractivenessWeight),
	}
}

// window is today (from the current reading) followed by the forecast days
// that are actually known.
func window(c destination.Candidate) []destination.DayForecast {
	days := []destination.DayForecast{{
		Condition:  c.Condition,
		Temp:       c.Temperature,
		High:       c.Temperature,
		SnowfallMM: c.Snowfall24hMM,
	}}
	for _, d := range []destination.DayForecast{c.Forecast.Tomorrow, c.Forecast.Day3} {
		if d.Condition != "" {
			days = append(days, d)
		}
	}
	return days
}

func CheckSunnyStreak(cfg StreakConfig, attractivenessWeight float64, c destination.Candidate) StreakCheck {
	sunny := 0
	for _, d := range window(c) {
		if d.Condition == weather.ConditionSunny {
			sunny++
		}
	}
	return StreakCheck{
		Eligible:  sunny >= cfg.MinSunnyDays,
		SunnyDays: sunny,
		Score:     comfortScore(c, attractivenessWeight),
	}
}

// CheckMiracle looks for bad weather today that clears up and warms up over
// the forecast days that are known.
func CheckMiracle(cfg MiracleConfig, c destination.Candidate) MiracleCheck {
	bad := c.Condition == weather.ConditionRainy ||
		c.Condition == weather.ConditionSnowy ||
		c.Condition == weather.ConditionWindy

	ahead := window(c)[1:]
	if len(ahead) == 0 {
		return MiracleCheck{}
	}
	clears := false
	peak := math.Inf(-1)
	for _, d := range ahead {
		if d.Condition == weather.ConditionSunny {
			clears = true
		}
		peak = math.Max(peak, d.Temp)
	}
	gain := peak - c.Temperature

	return MiracleCheck{
		Eligible: bad && clears && gain >= cfg.MinTempGainC,
		TempGain: gain,
	}
}

func CheckHeatwave(cfg HeatwaveConfig, c destination.Candidate) HeatwaveCheck {
	hot := 0
	for _, d := range window(c) {
		if d.High >= cfg.HotDayTempC {
			hot++
		}
	}
	return HeatwaveCheck{
		Eligible: hot >= cfg.MinHotDays,
		HotDays:  hot,
	}
}

// CheckSnowKing qualifies a place whose snow will stay: enough snow and
// cold enough on average and at the peak to keep it from melting.
func CheckSnowKing(cfg SnowKingConfig, c destination.Candidate) SnowCheck {
	days := window(c)
	snowy := 0
	sum := 0.0
	peak := math.Inf(-1)
	for _, d := range days {
		if d.Condition == weather.ConditionSnowy {
			snowy++
		}
		sum += d.Temp
		peak = math.Max(peak, d.Temp)
	}
	avg := sum / float64(len(days))

	check := SnowCheck{
		SnowyDays:  snowy,
		AvgTempC:   avg,
		MaxTempC:   peak,
		SnowfallMM: c.Snowfall24hMM,
	}
	for _, p := range cfg.Paths {
		if c.Snowfall24hMM >= p.MinSnowfallMM && snowy >= p.MinSnowyDays &&
			avg <= p.MaxAvgTempC && peak <= p.MaxTempC {
			check.Eligible = true
			check.Path = p.Name
			break
		}
	}

	snow := math.Min(100, c.Snowfall24hMM*cfg.PointsPerSnowMM+float64(snowy)*cfg.PointsPerSnowyDay)
	cold := math.Min(100, math.Max(0, -avg)*cfg.PointsPerFrostC)
	check.Score = snow*cfg.SnowWeight + cold*cfg.ColdWeight
	return check
}

// Evaluate runs every rule for c against origin.
func Evaluate(cfg Config, c, origin destination.Candidate) Evaluation {
	return Evaluation{
		Candidate:    c,
		WeatherScore: scoreOf(cfg.Score, c),
		Drive:        CheckWorthTheDrive(cfg, c, origin),
		Budget:       CheckBudget(cfg.Budget, c, origin),
		WarmAndDry:   CheckWarmAndDry(cfg.WarmAndDry, c),
		Beach:        CheckBeach(cfg.Beach, c),
		Streak:       CheckSunnyStreak(cfg.SunnyStreak, cfg.Beach.AttractivenessWeight, c),
		Miracle:      CheckMiracle(cfg.Miracle, c),
		Heatwave:     CheckHeatwave(cfg.Heatwave, c),
		Snow:         CheckSnowKing(cfg.SnowKing, c),
	}
}

// EvaluateAll scores every candidate. The origin itself is never eligible.
func EvaluateAll(cfg Config, candidates []destination.Candidate, origin destination.Candidate) []Evaluation {
	out := make([]Evaluation, len(candidates))
	for i, c := range candidates {
		if c.Origin {
			out[i] = Evaluation{Candidate: c, WeatherScore: scoreOf(cfg.Score, c)}
			continue
		}
		out[i] = Evaluate(cfg, c, origin)
	}
	return out
}
