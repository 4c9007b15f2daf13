package projection

// BaselineSeries projects cases under a constant weekly rate. Week w is emitted
// with the count before that week's growth.
func BaselineSeries(initialCases float64, totalWeeks int, rate float64) []WeekPoint {
	if totalWeeks <= 0 {
		return []WeekPoint{}
	}
	series := make([]WeekPoint, 0, totalWeeks)
	cases := initialCases
	for w := 1; w <= totalWeeks; w++ {
		series = append(series, WeekPoint{Week: w, Cases: cases, Rate: rate})
		cases *= rate
	}
	return series
}

// CombinedMultiplier multiplies the catalog multipliers of the selected ids.
// An empty selection yields exactly 1. Unknown ids contribute 1 and repeated
// ids count once.
func CombinedMultiplier(ids []string, catalog []Strategy) float64 {
	combined := 1.0
	if len(ids) == 0 {
		return combined
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if s, ok := lookup(catalog, id); ok {
			combined *= s.Multiplier
		}
	}
	return combined
}

// RateAt returns the mitigated rate for week w. Before start the initial rate
// applies; afterwards the rate moves linearly to target over transition weeks
// and stays there.
func RateAt(w, start, transition int, initial, target float64) float64 {
	switch {
	case w < start:
		return initial
	case transition <= 0:
		return target
	}
	progress := float64(w-start) / float64(transition)
	if progress > 1 {
		progress = 1
	}
	return initial - (initial-target)*progress
}

// Simulate runs the baseline and mitigated projections and derives totals.
// It never fails: degenerate input produces degenerate but well-formed output.
func Simulate(p Params) Result {
	catalog := p.Catalog
	if catalog == nil {
		catalog = defaultCatalog[:]
	}

	baseline := BaselineSeries(p.InitialCases, p.TotalWeeks, p.InitialRate)
	totalBaseline := lastCases(baseline)

	m := p.Mitigation
	if m == nil || !m.Enabled || len(m.StrategyIDs) == 0 {
		rate := p.InitialRate
		mitigated := make([]WeekPoint, len(baseline))
		copy(mitigated, baseline)
		return Result{
			Mitigated:           mitigated,
			Baseline:            baseline,
			TotalMitigated:      totalBaseline,
			TotalBaseline:       totalBaseline,
			ReductionPercent:    0,
			FinalEquivalentRate: &rate,
		}
	}

	target := p.InitialRate * CombinedMultiplier(m.StrategyIDs, catalog)

	mitigated := make([]WeekPoint, 0, max(p.TotalWeeks, 0))
	cases := p.InitialCases
	for w := 1; w <= p.TotalWeeks; w++ {
		rate := RateAt(w, m.StartWeek, m.TransitionWeeks, p.InitialRate, target)
		mitigated = append(mitigated, WeekPoint{Week: w, Cases: cases, Rate: rate})
		cases *= rate
	}

	totalMitigated := lastCases(mitigated)
	reduction := 0.0
	if totalBaseline > 0 {
		reduction = (1 - totalMitigated/totalBaseline) * 100
	}

	return Result{
		Mitigated:           mitigated,
		Baseline:            baseline,
		TotalMitigated:      totalMitigated,
		TotalBaseline:       totalBaseline,
		ReductionPercent:    reduction,
		FinalEquivalentRate: &target,
	}
}

// lastCases reports the total as the last recorded point's count. The growth
// of the final week is computed but never recorded.
func lastCases(series []WeekPoint) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Cases
}
