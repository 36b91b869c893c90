// Package world derives the founding site of a settlement from layered
// simplex noise. The survey fixes per-run production modifiers at reset:
// the same seed always founds the same valley.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Site describes the land a run is founded on. Modifiers multiply the base
// production rates and stay constant for the whole run.
type Site struct {
	Fertility float64 // farm and forage yield multiplier
	Quarry    float64 // construction material yield multiplier
	Shelter   float64 // tooling wear multiplier (rough country wears tools)
}

// modifier span around 1.0 for each survey layer.
const span = 0.15

// Survey samples the noise layers for the given seed and returns the site.
func Survey(seed int64) Site {
	fertNoise := opensimplex.NewNormalized(seed)
	quarNoise := opensimplex.NewNormalized(seed + 1)
	shelNoise := opensimplex.NewNormalized(seed + 2)

	// Fixed sample point: the survey is a property of the seed, not of any
	// coordinate the caller picks.
	const x, y = 0.37, 0.61

	return Site{
		Fertility: 1 + span*(2*octave(fertNoise, x, y)-1),
		Quarry:    1 + span*(2*octave(quarNoise, x, y)-1),
		Shelter:   1 + span*(2*octave(shelNoise, x, y)-1),
	}
}

// octave layers three noise samples at rising frequency for a less uniform
// distribution than a single Eval2 call.
func octave(n opensimplex.Noise, x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxValue := 0.0
	for i := 0; i < 3; i++ {
		total += n.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= 0.5
		frequency *= 2.1
	}
	v := total / maxValue
	return math.Max(0, math.Min(1, v))
}
