package weather

import "time"

// windyThresholdKmh is the sustained wind above which a dry reading is
// reported as windy.
const windyThresholdKmh = 40.0

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; conditions are selected by majority (first seen wins ties).
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp     float64
		sumHigh     float64
		sumLow      float64
		sumHumidity float64
		sumWind     float64
		sumCloud    float64
		sumPressure float64
		sumPrecip   float64
		sumSnow     float64
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHigh += r.HighC
		sumLow += r.LowC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedKmh
		sumCloud += r.CloudCoverPct
		sumPressure += r.PressureHpa
		sumPrecip += r.PrecipMm
		sumSnow += r.SnowfallMm

		if _, seen := conditionCounts[r.Condition]; !seen {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	// Pick majority condition, ignoring unknown unless nothing else reported.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if cond == ConditionUnknown {
			continue
		}
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	wind := sumWind / n
	return WeatherSnapshot{
		Location:    loc,
		Timestamp:   newestTS,
		Temperature: sumTemp / n,
		High:        sumHigh / n,
		Low:         sumLow / n,
		Humidity:    sumHumidity / n,
		WindSpeed:   wind,
		CloudCover:  sumCloud / n,
		Pressure:    sumPressure / n,
		PrecipMM:    sumPrecip / n,
		SnowfallMM:  sumSnow / n,
		Condition:   withWind(bestCond, wind),
		Providers:   providers,
	}
}

// withWind promotes dry conditions to windy when the wind is strong enough.
func withWind(cond Condition, windKmh float64) Condition {
	if windKmh < windyThresholdKmh {
		return cond
	}
	switch cond {
	case ConditionSunny, ConditionCloudy, ConditionUnknown:
		return ConditionWindy
	default:
		return cond
	}
}
