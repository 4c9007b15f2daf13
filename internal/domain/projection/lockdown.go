package projection

// LockdownStrategyID identifies the synthetic strategy used to express a
// single-factor lockdown in the multi-strategy model.
const LockdownStrategyID = "lockdown"

// LockdownConfig is the single-factor mitigation model: the rate moves from the
// initial rate to FinalRate over TransitionWeeks starting at StartWeek.
type LockdownConfig struct {
	Enabled         bool    `json:"enabled"`
	StartWeek       int     `json:"start_week"`
	FinalRate       float64 `json:"final_rate"`
	TransitionWeeks int     `json:"transition_weeks"`
}

// LockdownParams expresses a lockdown as a catalog of one strategy whose
// multiplier is FinalRate/initialRate.
func LockdownParams(initialCases float64, totalWeeks int, initialRate float64, l LockdownConfig) Params {
	multiplier := 1.0
	if initialRate != 0 {
		multiplier = l.FinalRate / initialRate
	}
	return Params{
		InitialCases: initialCases,
		TotalWeeks:   totalWeeks,
		InitialRate:  initialRate,
		Mitigation: &MitigationConfig{
			Enabled:         l.Enabled,
			StartWeek:       l.StartWeek,
			TransitionWeeks: l.TransitionWeeks,
			StrategyIDs:     []string{LockdownStrategyID},
		},
		Catalog: []Strategy{{
			ID:          LockdownStrategyID,
			Name:        "Lockdown",
			Description: "Single-factor reduction to a target rate.",
			Multiplier:  multiplier,
		}},
	}
}
