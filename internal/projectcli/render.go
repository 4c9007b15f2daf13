package projectcli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	service "github.com/okian/outbreak/internal/app"
)

// Render writes calc to w in the given format. Table case counts are grouped
// the way tag writes numbers.
func Render(w io.Writer, format string, tag language.Tag, calc service.Calculation) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(calc)
	}
	return renderTable(w, message.NewPrinter(tag), calc)
}

func renderTable(w io.Writer, p *message.Printer, calc service.Calculation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "week\tbaseline\tmitigated\trate\t")
	r := calc.Result
	for i, b := range r.Baseline {
		m := b
		if i < len(r.Mitigated) {
			m = r.Mitigated[i]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", b.Week, formatCases(p, b.Cases), formatCases(p, m.Cases), strconv.FormatFloat(m.Rate, 'f', 3, 64))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, panel := range calc.Summary {
		if panel.Mitigated {
			fmt.Fprintf(w, "%s: %s cases, %s%% fewer, %s averted\n", panel.Title, panel.TotalCases, panel.ReductionPercent, panel.AvertedCases)
			continue
		}
		fmt.Fprintf(w, "%s: %s cases\n", panel.Title, panel.TotalCases)
	}
	if r.FinalEquivalentRate != nil {
		fmt.Fprintf(w, "Final equivalent rate: %s\n", strconv.FormatFloat(*r.FinalEquivalentRate, 'f', 3, 64))
	}
	_, err := fmt.Fprintf(w, "Calculation %s (%s)\n", calc.Metadata.ID, calc.Metadata.Model)
	return err
}

func formatCases(p *message.Printer, v float64) string {
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}
