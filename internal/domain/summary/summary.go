// Package summary derives the display figures shown next to the projection
// curves.
package summary

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/outbreak/internal/domain/projection"
)

// Display precision.
const (
	casesPlaces   = 0
	percentPlaces = 1
)

// Panel titles.
const (
	TitleMitigated = "With mitigation"
	TitleBaseline  = "Without mitigation"
)

// Panel is one summary box. Averted cases and reduction are only set on the
// mitigated panel. Overflow marks figures that exceeded float64; they read zero.
type Panel struct {
	Title            string           `json:"title"`
	Mitigated        bool             `json:"mitigated"`
	Overflow         bool             `json:"overflow,omitempty"`
	TotalCases       decimal.Decimal  `json:"total_cases"`
	AvertedCases     *decimal.Decimal `json:"averted_cases,omitempty"`
	ReductionPercent *decimal.Decimal `json:"reduction_percent,omitempty"`
}

// Build returns the mitigated panel followed by the baseline panel.
func Build(r projection.Result) []Panel {
	totalMitigated, mitigatedOK := fromFloat(r.TotalMitigated)
	totalBaseline, baselineOK := fromFloat(r.TotalBaseline)
	reduction, reductionOK := fromFloat(r.ReductionPercent)
	reduction = reduction.Round(percentPlaces)

	averted := decimal.Zero
	if mitigatedOK && baselineOK {
		averted = totalBaseline.Sub(totalMitigated).Round(casesPlaces)
	}

	return []Panel{
		{
			Title:            TitleMitigated,
			Mitigated:        true,
			Overflow:         !mitigatedOK || !baselineOK || !reductionOK,
			TotalCases:       totalMitigated.Round(casesPlaces),
			AvertedCases:     &averted,
			ReductionPercent: &reduction,
		},
		{
			Title:      TitleBaseline,
			Mitigated:  false,
			Overflow:   !baselineOK,
			TotalCases: totalBaseline.Round(casesPlaces),
		},
	}
}

// fromFloat converts v, reporting false and zero for NaN and infinities.
func fromFloat(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}
