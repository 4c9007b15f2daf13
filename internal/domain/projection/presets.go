package projection

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when a preset id is not registered.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named strategy selection offered as a quick start.
type Preset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StrategyIDs []string `json:"strategy_ids"`
}

var presets = [...]Preset{ //nolint:gochecknoglobals // immutable built-in table
	{ID: "sem", Name: "No mitigation", Description: "Pure exponential growth for reference.", StrategyIDs: []string{}},
	{ID: "leve", Name: "Light mitigation", Description: "Basic behavioural measures.", StrategyIDs: []string{"distanciamento", "mascaras"}},
	{ID: "forte", Name: "Strong mitigation", Description: "Combined measures aiming for R below 1.", StrategyIDs: []string{"distanciamento", "mascaras", "testagem", "vacinas"}},
}

// Presets returns copies of the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = p.clone()
	}
	return out
}

// PresetByID returns the preset registered under id.
func PresetByID(id string) (Preset, error) {
	for _, p := range presets {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
}

func (p Preset) clone() Preset {
	p.StrategyIDs = append([]string{}, p.StrategyIDs...)
	return p
}
