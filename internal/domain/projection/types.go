// Package projection computes weekly case projections under an exponential
// growth model, with and without mitigation strategies.
package projection

import "math"

// Strategy is a named intervention with a fixed multiplicative effect on the
// effective reproduction rate. A multiplier of 0.9 retains 90% of the rate.
type Strategy struct {
	ID          string  `json:"id" koanf:"id"`
	Name        string  `json:"name" koanf:"name"`
	Description string  `json:"description" koanf:"description"`
	Multiplier  float64 `json:"multiplier" koanf:"multiplier"`
}

// MitigationConfig describes when mitigation starts, how long it takes to reach
// full effect and which strategies are active.
type MitigationConfig struct {
	Enabled         bool     `json:"enabled"`
	StartWeek       int      `json:"start_week"`
	TransitionWeeks int      `json:"transition_weeks"`
	StrategyIDs     []string `json:"strategy_ids"`
}

// Params is the full input of a single simulation.
type Params struct {
	InitialCases float64           `json:"initial_cases"`
	TotalWeeks   int               `json:"total_weeks"`
	InitialRate  float64           `json:"initial_rate"`
	Mitigation   *MitigationConfig `json:"mitigation,omitempty"`
	// Catalog resolves strategy ids; nil selects the default catalog.
	Catalog []Strategy `json:"catalog,omitempty"`
}

// WeekPoint is one point of a series. Cases is the count at the start of the
// week, before that week's growth is applied.
type WeekPoint struct {
	Week  int     `json:"week"`
	Cases float64 `json:"cases"`
	Rate  float64 `json:"rate"`
}

// Result holds both series and the derived aggregates.
type Result struct {
	Mitigated           []WeekPoint `json:"mitigated_series"`
	Baseline            []WeekPoint `json:"baseline_series"`
	TotalMitigated      float64     `json:"total_mitigated_cases"`
	TotalBaseline       float64     `json:"total_baseline_cases"`
	ReductionPercent    float64     `json:"reduction_percent"`
	FinalEquivalentRate *float64    `json:"final_equivalent_rate,omitempty"`
}

// Finite reports whether every number in r is finite.
func (r Result) Finite() bool {
	if !finite(r.TotalMitigated) || !finite(r.TotalBaseline) || !finite(r.ReductionPercent) {
		return false
	}
	if r.FinalEquivalentRate != nil && !finite(*r.FinalEquivalentRate) {
		return false
	}
	for _, series := range [][]WeekPoint{r.Mitigated, r.Baseline} {
		for _, pt := range series {
			if !finite(pt.Cases) || !finite(pt.Rate) {
				return false
			}
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := r
	out.Mitigated = cloneSeries(r.Mitigated)
	out.Baseline = cloneSeries(r.Baseline)
	if r.FinalEquivalentRate != nil {
		rate := *r.FinalEquivalentRate
		out.FinalEquivalentRate = &rate
	}
	return out
}

func cloneSeries(s []WeekPoint) []WeekPoint {
	if s == nil {
		return nil
	}
	out := make([]WeekPoint, len(s))
	copy(out, s)
	return out
}
