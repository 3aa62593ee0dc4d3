// internal/api/handler/api/strategies.go
package api

import (
	"net/http"

	"github.com/uodit05/algo-trade-test-1/internal/api/response"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// StrategiesHandler lists the registered strategies.
type StrategiesHandler struct {
	registry *strategy.Registry
}

// NewStrategiesHandler creates a new strategies handler.
func NewStrategiesHandler(registry *strategy.Registry) *StrategiesHandler {
	return &StrategiesHandler{registry: registry}
}

// List returns all registered strategies with their descriptions.
func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	names := h.registry.Names()
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		s, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry{Name: s.Name(), Description: s.Description()})
	}

	response.JSON(w, http.StatusOK, map[string]any{"strategies": entries})
}
