package memo

import (
	"strconv"
	"strings"

	"github.com/okian/outbreak/internal/domain/projection"
)

// Key fingerprints every input that affects a simulation result. Two params
// with the same key produce the same result.
func Key(p projection.Params) string {
	var b strings.Builder
	writeFloat(&b, p.InitialCases)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.TotalWeeks))
	b.WriteByte('|')
	writeFloat(&b, p.InitialRate)

	b.WriteString("|m:")
	if m := p.Mitigation; m != nil {
		b.WriteString(strconv.FormatBool(m.Enabled))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(m.StartWeek))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(m.TransitionWeeks))
		for _, id := range m.StrategyIDs {
			b.WriteByte(',')
			b.WriteString(strconv.Quote(id))
		}
	} else {
		b.WriteByte('-')
	}

	// A nil catalog means the built-in one and is keyed as such.
	b.WriteString("|c:")
	if p.Catalog == nil {
		b.WriteByte('-')
	}
	for _, s := range p.Catalog {
		b.WriteString(strconv.Quote(s.ID))
		b.WriteByte('=')
		writeFloat(&b, s.Multiplier)
		b.WriteByte(';')
	}
	return b.String()
}

func writeFloat(b *strings.Builder, v float64) {
	b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}
