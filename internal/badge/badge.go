// Package badge scores destinations against the origin and awards the
// scarce achievement labels shown on the map.
package badge

import "sort"

// Type identifies a badge.
type Type string

const (
	WorthTheDrive       Type = "WORTH_THE_DRIVE"
	WorthTheDriveBudget Type = "WORTH_THE_DRIVE_BUDGET"
	WarmAndDry          Type = "WARM_AND_DRY"
	BeachParadise       Type = "BEACH_PARADISE"
	SunnyStreak         Type = "SUNNY_STREAK"
	WeatherMiracle      Type = "WEATHER_MIRACLE"
	Heatwave            Type = "HEATWAVE"
	SnowKing            Type = "SNOW_KING"
)

// Meta describes how a badge is presented.
type Meta struct {
	Type     Type   `json:"type"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Priority int    `json:"priority"` // lower renders first
}

// Declaration order; also the tie-break for equal priorities.
var catalog = []Meta{
	{Type: WorthTheDrive, Label: "Worth the Drive", Icon: "car", Priority: 2},
	{Type: WorthTheDriveBudget, Label: "Worth the Drive (Budget)", Icon: "piggy-bank", Priority: 1},
	{Type: WarmAndDry, Label: "Warm & Dry", Icon: "thermometer", Priority: 8},
	{Type: BeachParadise, Label: "Beach Paradise", Icon: "umbrella-beach", Priority: 5},
	{Type: SunnyStreak, Label: "Sunny Streak", Icon: "sun", Priority: 7},
	{Type: WeatherMiracle, Label: "Weather Miracle", Icon: "rainbow", Priority: 4},
	{Type: Heatwave, Label: "Heatwave", Icon: "fire", Priority: 6},
	{Type: SnowKing, Label: "Snow King", Icon: "snowflake", Priority: 3},
}

// All returns the metadata of every badge in declaration order.
func All() []Meta {
	return append([]Meta(nil), catalog...)
}

func declIndex(t Type) int {
	for i, m := range catalog {
		if m.Type == t {
			return i
		}
	}
	return len(catalog)
}

// MetaOf returns the metadata of t. Unknown types get the lowest priority.
func MetaOf(t Type) Meta {
	if i := declIndex(t); i < len(catalog) {
		return catalog[i]
	}
	return Meta{Type: t, Label: string(t), Priority: len(catalog) + 1}
}

// Ordered returns types in declaration order.
func Ordered(types map[Type]bool) []Type {
	out := make([]Type, 0, len(types))
	for _, m := range catalog {
		if types[m.Type] {
			out = append(out, m.Type)
		}
	}
	return out
}

// ForMap returns the badges that are rendered as glyphs, by priority and
// then declaration order, at most limit of them.
func ForMap(types []Type, detailOnly map[Type]bool, limit int) []Type {
	out := make([]Type, 0, len(types))
	for _, t := range types {
		if !detailOnly[t] {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := MetaOf(out[i]).Priority, MetaOf(out[j]).Priority
		if pi != pj {
			return pi < pj
		}
		return declIndex(out[i]) < declIndex(out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
