package api

import (
	"context"
	"net/http"

	"github.com/okian/outbreak/internal/domain/projection"
)

// CatalogDependencies lists what the form needs to render its choices.
type CatalogDependencies interface {
	Strategies(ctx context.Context) []projection.Strategy
	Presets(ctx context.Context) []projection.Preset
}

// CatalogHandler serves the strategy catalog and presets.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleStrategies handles GET /strategies requests.
func (h *CatalogHandler) HandleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Strategies(r.Context()))
}

// HandlePresets handles GET /presets requests.
func (h *CatalogHandler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Presets(r.Context()))
}
