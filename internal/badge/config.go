package badge

import (
	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/weather"
)

// ScoreWeights are the coefficients of the weather quality score.
type ScoreWeights struct {
	Temperature float64 `json:"temperature"`
	Condition   float64 `json:"condition"`
	Stability   float64 `json:"stability"`
	Wind        float64 `json:"wind"`
}

// ScoreConfig controls WeatherScore.
type ScoreConfig struct {
	IdealTempC            float64                       `json:"ideal_temp_c"`
	TempPenaltyPerDegree  float64                       `json:"temp_penalty_per_degree"`
	WindPenaltyPerKmh     float64                       `json:"wind_penalty_per_kmh"`
	ConditionQuality      map[weather.Condition]float64 `json:"condition_quality"`
	UnknownConditionScore float64                       `json:"unknown_condition_score"`
	Weights               ScoreWeights                  `json:"weights"`
}

// TravelConfig controls the ETA estimate.
type TravelConfig struct {
	AvgSpeedKmh    float64 `json:"avg_speed_kmh"`
	MinETAHours    float64 `json:"min_eta_hours"`
	ETAOffsetHours float64 `json:"eta_offset_hours"` // added to the ETA before dividing the score gain
}

type DriveConfig struct {
	MinDestScore    float64 `json:"min_dest_score"`
	MinScoreDelta   float64 `json:"min_score_delta"`
	MinValue        float64 `json:"min_value"`
	MinDestTempC    float64 `json:"min_dest_temp_c"`
	MinTempGainC    float64 `json:"min_temp_gain_c"`
	RankValueWeight float64 `json:"rank_value_weight"`
	RankScoreWeight float64 `json:"rank_score_weight"`
	Cap             int     `json:"cap"`
	MinSpacingKm    float64 `json:"min_spacing_km"`
}

type BudgetConfig struct {
	MinTempGainC  float64 `json:"min_temp_gain_c"`
	MinDestTempC  float64 `json:"min_dest_temp_c"`
	MinDistanceKm float64 `json:"min_distance_km"`
}

type WarmAndDryConfig struct {
	MinTempC   float64 `json:"min_temp_c"`
	MaxWindKmh float64 `json:"max_wind_kmh"`
	Cap        int     `json:"cap"`
}

type BeachConfig struct {
	MinTempC             float64 `json:"min_temp_c"`
	MaxTempC             float64 `json:"max_temp_c"`
	MaxWindKmh           float64 `json:"max_wind_kmh"`
	AttractivenessWeight float64 `json:"attractiveness_weight"`
	Cap                  int     `json:"cap"`
}

type StreakConfig struct {
	MinSunnyDays int     `json:"min_sunny_days"`
	Cap          int     `json:"cap"`
	MinSpacingKm float64 `json:"min_spacing_km"`
}

type MiracleConfig struct {
	MinTempGainC float64 `json:"min_temp_gain_c"`
}

type HeatwaveConfig struct {
	HotDayTempC float64 `json:"hot_day_temp_c"`
	MinHotDays  int     `json:"min_hot_days"`
}

// SnowPath is one way of qualifying for Snow King.
type SnowPath struct {
	Name          string  `json:"name"`
	MinSnowfallMM float64 `json:"min_snowfall_mm"`
	MinSnowyDays  int     `json:"min_snowy_days"`
	MaxAvgTempC   float64 `json:"max_avg_temp_c"`
	MaxTempC      float64 `json:"max_temp_c"`
}

type SnowKingConfig struct {
	Paths             []SnowPath `json:"paths"`
	SnowWeight        float64    `json:"snow_weight"`
	ColdWeight        float64    `json:"cold_weight"`
	PointsPerSnowMM   float64    `json:"points_per_snow_mm"`
	PointsPerSnowyDay float64    `json:"points_per_snowy_day"`
	PointsPerFrostC   float64    `json:"points_per_frost_c"`
	Cap               int        `json:"cap"`
	PerCountryCap     int        `json:"per_country_cap"`
}

// ArrivalWeather returns the weather expected at c when reached after
// etaHours. The default returns c unchanged.
type ArrivalWeather func(c destination.Candidate, etaHours float64) destination.Candidate

// Config holds every threshold, cap and spacing used for badges.
type Config struct {
	Score         ScoreConfig      `json:"score"`
	Travel        TravelConfig     `json:"travel"`
	WorthTheDrive DriveConfig      `json:"worth_the_drive"`
	Budget        BudgetConfig     `json:"budget"`
	WarmAndDry    WarmAndDryConfig `json:"warm_and_dry"`
	Beach         BeachConfig      `json:"beach_paradise"`
	SunnyStreak   StreakConfig     `json:"sunny_streak"`
	Miracle       MiracleConfig    `json:"weather_miracle"`
	Heatwave      HeatwaveConfig   `json:"heatwave"`
	SnowKing      SnowKingConfig   `json:"snow_king"`

	// DetailOnly badges are kept on the record but never drawn on the map.
	DetailOnly []Type `json:"detail_only"`
	GlyphLimit int    `json:"glyph_limit"`

	Arrival ArrivalWeather `json:"-"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Score: ScoreConfig{
			IdealTempC:           22,
			TempPenaltyPerDegree: 3,
			WindPenaltyPerKmh:    2,
			ConditionQuality: map[weather.Condition]float64{
				weather.ConditionSunny:  100,
				weather.ConditionCloudy: 60,
				weather.ConditionWindy:  50,
				weather.ConditionRainy:  20,
				weather.ConditionSnowy:  30,
			},
			UnknownConditionScore: 50,
			Weights: ScoreWeights{
				Temperature: 0.35,
				Condition:   0.30,
				Stability:   0.20,
				Wind:        0.15,
			},
		},
		Travel: TravelConfig{
			AvgSpeedKmh:    80,
			MinETAHours:    0.5,
			ETAOffsetHours: 0.75,
		},
		WorthTheDrive: DriveConfig{
			MinDestScore:    70,
			MinScoreDelta:   10,
			MinValue:        2.5,
			MinDestTempC:    4,
			MinTempGainC:    5,
			RankValueWeight: 1.0,
			RankScoreWeight: 0.02,
			Cap:             3,
			MinSpacingKm:    20,
		},
		Budget: BudgetConfig{
			MinTempGainC:  3,
			MinDestTempC:  10,
			MinDistanceKm: 1,
		},
		WarmAndDry: WarmAndDryConfig{
			MinTempC:   12,
			MaxWindKmh: 20,
			Cap:        10,
		},
		Beach: BeachConfig{
			MinTempC:             22,
			MaxTempC:             32,
			MaxWindKmh:           15,
			AttractivenessWeight: 0.5,
			Cap:                  10,
		},
		SunnyStreak: StreakConfig{
			MinSunnyDays: 3,
			Cap:          10,
			MinSpacingKm: 20,
		},
		Miracle: MiracleConfig{
			MinTempGainC: 5,
		},
		Heatwave: HeatwaveConfig{
			HotDayTempC: 30,
			MinHotDays:  2,
		},
		SnowKing: SnowKingConfig{
			Paths: []SnowPath{
				{Name: "fresh-snow", MinSnowfallMM: 10, MaxAvgTempC: 0, MaxTempC: 3},
				{Name: "snowy-days", MinSnowyDays: 2, MaxAvgTempC: -2, MaxTempC: 2},
				{Name: "deep-cold", MinSnowyDays: 1, MaxAvgTempC: -5, MaxTempC: -1},
			},
			SnowWeight:        0.6,
			ColdWeight:        0.4,
			PointsPerSnowMM:   5,
			PointsPerSnowyDay: 20,
			PointsPerFrostC:   10,
			Cap:               10,
			PerCountryCap:     3,
		},
		DetailOnly: []Type{WarmAndDry},
		GlyphLimit: 6,
	}
}

// DetailOnlySet returns DetailOnly as a lookup set.
func (c Config) DetailOnlySet() map[Type]bool {
	set := make(map[Type]bool, len(c.DetailOnly))
	for _, t := range c.DetailOnly {
		set[t] = true
	}
	return set
}
