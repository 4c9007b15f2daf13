package service

import (
	"github.com/okian/outbreak/internal/domain/projection"
)

// Defaults fill request fields the caller leaves out.
type Defaults struct {
	Cases             float64
	Weeks             int
	Rate              float64
	MitigationEnabled bool
	StartWeek         int
	TransitionWeeks   int
	StrategyIDs       []string
	LockdownFinalRate float64
}

// StandardDefaults returns the request defaults of the interactive form.
func StandardDefaults() Defaults {
	return Defaults{
		Cases:             100,
		Weeks:             20,
		Rate:              1.2,
		MitigationEnabled: true,
		StartWeek:         12,
		TransitionWeeks:   6,
		StrategyIDs:       []string{"distanciamento", "mascaras"},
		LockdownFinalRate: 0.8,
	}
}

// MitigationRequest is the optional mitigation part of a Request. A nil
// StrategyIDs takes the default selection; an empty one selects nothing.
type MitigationRequest struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	StartWeek       *int     `json:"start_week,omitempty"`
	TransitionWeeks *int     `json:"transition_weeks,omitempty"`
	StrategyIDs     []string `json:"strategy_ids"`
}

// Request is a multi-strategy simulation request. Every field is optional.
type Request struct {
	InitialCases *float64              `json:"initial_cases,omitempty"`
	TotalWeeks   *int                  `json:"total_weeks,omitempty"`
	InitialRate  *float64              `json:"initial_rate,omitempty"`
	Mitigation   *MitigationRequest    `json:"mitigation,omitempty"`
	Preset       string                `json:"preset,omitempty"`
	Catalog      []projection.Strategy `json:"catalog,omitempty"`
}

// LockdownRequest is a single-factor simulation request.
type LockdownRequest struct {
	InitialCases *float64         `json:"initial_cases,omitempty"`
	TotalWeeks   *int             `json:"total_weeks,omitempty"`
	InitialRate  *float64         `json:"initial_rate,omitempty"`
	Lockdown     *LockdownOptions `json:"lockdown,omitempty"`
}

// LockdownOptions is the optional lockdown part of a LockdownRequest.
type LockdownOptions struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	StartWeek       *int     `json:"start_week,omitempty"`
	FinalRate       *float64 `json:"final_rate,omitempty"`
	TransitionWeeks *int     `json:"transition_weeks,omitempty"`
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func orBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
