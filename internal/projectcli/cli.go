// Package projectcli implements the projection command line tool.
package projectcli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"

	service "github.com/okian/outbreak/internal/app"
)

// ErrUsage reports invalid command line input.
var ErrUsage = errors.New("invalid usage")

const defaultTimeout = 10 * time.Second

// ParseFlags builds a Config from args. Only flags that are set end up in the
// request; the rest take the service defaults.
func ParseFlags(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowHelp(stderr) }

	var (
		cases        = fs.Float64("cases", 0, "Initial number of cases (default 100)")
		weeks        = fs.Int("weeks", 0, "Number of weeks to project (default 20)")
		rate         = fs.Float64("rate", 0, "Initial weekly growth rate (default 1.2)")
		start        = fs.Int("start", 0, "Week mitigation starts (default 12)")
		transition   = fs.Int("transition", 0, "Weeks until mitigation reaches full effect (default 6)")
		strategies   = fs.String("strategies", "", "Comma separated strategy ids (default distanciamento,mascaras)")
		preset       = fs.String("preset", "", "Preset id replacing -strategies: sem, leve, forte")
		noMitigation = fs.Bool("no-mitigation", false, "Disable mitigation")
		baseURL      = fs.String("url", "", "Base URL of a running server; empty runs locally")
		timeout      = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		format       = fs.String("format", FormatTable, "Output format: table or json")
		lang         = fs.String("lang", "en", "Language tag for table numbers, e.g. en or pt-BR")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q", ErrUsage, fs.Args())
	}
	if *format != FormatTable && *format != FormatJSON {
		return nil, fmt.Errorf("%w: unknown format %q", ErrUsage, *format)
	}

	tag, err := language.Parse(*lang)
	if err != nil {
		return nil, fmt.Errorf("%w: language %q: %w", ErrUsage, *lang, err)
	}

	cfg := &Config{
		BaseURL:  strings.TrimRight(*baseURL, "/"),
		Timeout:  *timeout,
		Format:   *format,
		Language: tag,
		Request:  service.Request{Preset: *preset},
	}

	var m service.MitigationRequest
	mitigationSet := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cases":
			cfg.Request.InitialCases = cases
		case "weeks":
			cfg.Request.TotalWeeks = weeks
		case "rate":
			cfg.Request.InitialRate = rate
		case "start":
			m.StartWeek, mitigationSet = start, true
		case "transition":
			m.TransitionWeeks, mitigationSet = transition, true
		case "strategies":
			m.StrategyIDs, mitigationSet = splitIDs(*strategies), true
		case "no-mitigation":
			enabled := !*noMitigation
			m.Enabled, mitigationSet = &enabled, true
		}
	})
	if mitigationSet {
		cfg.Request.Mitigation = &m
	}
	return cfg, nil
}

func splitIDs(v string) []string {
	ids := []string{}
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ShowHelp prints usage information for the projection tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Outbreak Projection Tool
========================

Projects weekly cases with and without mitigation.

Usage:
  go run ./cmd/project [options]

Options:
  -cases float
        Initial number of cases (default 100)
  -weeks int
        Number of weeks to project (default 20)
  -rate float
        Initial weekly growth rate (default 1.2)
  -start int
        Week mitigation starts (default 12)
  -transition int
        Weeks until mitigation reaches full effect (default 6)
  -strategies string
        Comma separated strategy ids (default distanciamento,mascaras)
  -preset string
        Preset id replacing -strategies: sem, leve, forte
  -no-mitigation
        Disable mitigation
  -url string
        Base URL of a running server; empty runs locally
  -timeout duration
        HTTP request timeout (default 10s)
  -format string
        Output format: table or json (default table)
  -lang string
        Language tag for table numbers, e.g. en or pt-BR (default en)

Examples:
  # Project the defaults locally
  go run ./cmd/project

  # Strong mitigation over a year
  go run ./cmd/project -weeks 52 -preset forte

  # Brazilian number grouping
  go run ./cmd/project -cases 12000 -lang pt-BR

  # Ask a running server
  go run ./cmd/project -url http://localhost:9080 -format json
`)
}
