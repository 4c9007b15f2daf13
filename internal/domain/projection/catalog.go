package projection

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCatalog reports a strategy catalog that cannot be simulated.
var ErrInvalidCatalog = errors.New("invalid strategy catalog")

// defaultCatalog is read-only after package initialisation. Callers only ever
// see copies of it.
var defaultCatalog = [...]Strategy{ //nolint:gochecknoglobals // immutable built-in table
	{ID: "distanciamento", Name: "Social distancing", Description: "Fewer contacts in public spaces.", Multiplier: 0.9},
	{ID: "mascaras", Name: "Mask use", Description: "Physical barrier against respiratory transmission.", Multiplier: 0.95},
	{ID: "testagem", Name: "Mass testing", Description: "Fast isolation of positive cases.", Multiplier: 0.85},
	{ID: "homeoffice", Name: "Remote work", Description: "Less commuting and fewer crowded offices.", Multiplier: 0.92},
	{ID: "eventos", Name: "Event restriction", Description: "Prevents super-spreading events.", Multiplier: 0.9},
	{ID: "vacinas", Name: "Vaccination", Description: "Immunity lowers effective reproduction.", Multiplier: 0.8},
}

// DefaultCatalog returns a copy of the built-in strategy catalog.
func DefaultCatalog() []Strategy {
	out := make([]Strategy, len(defaultCatalog))
	copy(out, defaultCatalog[:])
	return out
}

// lookup returns the first strategy in catalog with the given id.
func lookup(catalog []Strategy, id string) (Strategy, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Strategy{}, false
}

// Find resolves id against catalog. A nil catalog selects the built-in one.
func Find(catalog []Strategy, id string) (Strategy, bool) {
	if catalog == nil {
		catalog = defaultCatalog[:]
	}
	return lookup(catalog, id)
}

// ValidateCatalog checks that every id is set and unique, and that every
// multiplier is finite and in (0, 1].
func ValidateCatalog(catalog []Strategy) error {
	seen := make(map[string]struct{}, len(catalog))
	for i, s := range catalog {
		if s.ID == "" {
			return fmt.Errorf("%w: strategies[%d] has no id", ErrInvalidCatalog, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate strategy id %q", ErrInvalidCatalog, s.ID)
		}
		if math.IsNaN(s.Multiplier) || s.Multiplier <= 0 || s.Multiplier > 1 {
			return fmt.Errorf("%w: strategy %q multiplier %g outside (0, 1]", ErrInvalidCatalog, s.ID, s.Multiplier)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}
