package api

import (
	"context"
	"net/http"

	service "github.com/okian/outbreak/internal/app"
	"github.com/okian/outbreak/pkg/metrics"
)

// SimulateDependencies defines the projection operations used by the handlers.
type SimulateDependencies interface {
	Simulate(ctx context.Context, req service.Request) (service.Calculation, error)
	SimulateLockdown(ctx context.Context, req service.LockdownRequest) (service.Calculation, error)
}

// SimulateHandler handles simulation requests.
type SimulateHandler struct {
	deps SimulateDependencies
}

// NewSimulateHandler creates a new simulation handler.
func NewSimulateHandler(deps SimulateDependencies) *SimulateHandler {
	return &SimulateHandler{deps: deps}
}

// HandleSimulate handles POST /simulate requests.
func (h *SimulateHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.Request
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.RecordSimulationError("invalid_json")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	calc, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// HandleSimulateLockdown handles POST /simulate/lockdown requests.
func (h *SimulateHandler) HandleSimulateLockdown(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate_lockdown"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.LockdownRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.RecordSimulationError("invalid_json")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	calc, err := h.deps.SimulateLockdown(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}
