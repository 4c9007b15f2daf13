// Package bounds clamps simulation inputs into the ranges offered by the
// parameter-input surfaces. The projection engine itself never validates.
package bounds

import (
	"math"

	"github.com/okian/outbreak/internal/domain/projection"
)

// Default input ranges.
const (
	DefaultMinCases = 1
	DefaultMaxCases = 1e9
	DefaultMinWeeks = 1
	DefaultMaxWeeks = 260
	DefaultMinRate  = 0.1
	DefaultMaxRate  = 5
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

// Bounds holds the accepted input ranges.
type Bounds struct {
	MinCases float64
	MaxCases float64
	MinWeeks int
	MaxWeeks int
	MinRate  float64
	MaxRate  float64
}

// Default returns the ranges used by the interactive form.
func Default() Bounds {
	return Bounds{
		MinCases: DefaultMinCases,
		MaxCases: DefaultMaxCases,
		MinWeeks: DefaultMinWeeks,
		MaxWeeks: DefaultMaxWeeks,
		MinRate:  DefaultMinRate,
		MaxRate:  DefaultMaxRate,
	}
}

// Apply returns p with every field clamped. Non-finite numbers collapse to the
// lower bound. The mitigation window is kept inside the simulated horizon.
func (b Bounds) Apply(p projection.Params) projection.Params {
	out := p
	out.InitialCases = Clamp(finite(p.InitialCases, b.MinCases), b.MinCases, b.MaxCases)
	out.TotalWeeks = ClampInt(p.TotalWeeks, b.MinWeeks, b.MaxWeeks)
	out.InitialRate = Clamp(finite(p.InitialRate, b.MinRate), b.MinRate, b.MaxRate)

	if p.Mitigation != nil {
		m := *p.Mitigation
		m.StartWeek = ClampInt(m.StartWeek, 1, max(out.TotalWeeks, 1))
		m.TransitionWeeks = ClampInt(m.TransitionWeeks, 0, out.TotalWeeks)
		m.StrategyIDs = append([]string{}, m.StrategyIDs...)
		out.Mitigation = &m
	}
	if p.Catalog != nil {
		out.Catalog = append([]projection.Strategy{}, p.Catalog...)
	}
	return out
}

// Overflows reports whether the largest series these ranges allow exceeds
// float64: MaxCases grown at MaxRate for MaxWeeks-1 weeks.
func (b Bounds) Overflows() bool {
	if math.IsNaN(b.MaxCases) || math.IsInf(b.MaxCases, 0) {
		return true
	}
	if b.MaxCases <= 0 || b.MaxWeeks <= 1 {
		return false
	}
	growth := float64(b.MaxWeeks-1) * math.Log(math.Max(b.MaxRate, 1))
	return math.Log(b.MaxCases)+growth >= math.Log(math.MaxFloat64)
}

func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
