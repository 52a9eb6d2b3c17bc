package triage

import "github.com/ChuLiYu/hospital-ops/internal/textutil"

// Preset is a common emergency category with a fixed priority.
type Preset struct {
	Category string
	Priority int
}

var presets = []Preset{
	{Category: "Heart Attack", Priority: 1},
	{Category: "Road Accident", Priority: 2},
	{Category: "Asthma Attack", Priority: 3},
	{Category: "Severe Burn", Priority: 4},
}

// Presets returns the preset categories, most urgent first.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetPriority looks up the priority of a preset category, ignoring case.
func PresetPriority(category string) (int, bool) {
	for _, p := range presets {
		if textutil.EqualFold(p.Category, category) {
			return p.Priority, true
		}
	}
	return 0, false
}
