// internal/api/handler/api/runs.go
package api

import (
	"net/http"
	"strings"

	"github.com/uodit05/algo-trade-test-1/internal/api/response"
	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/storage/archive"
)

// RunsHandler serves archived run records.
type RunsHandler struct {
	archive *archive.Archive
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(a *archive.Archive) *RunsHandler {
	return &RunsHandler{archive: a}
}

// List returns the ids of all archived runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.archive.ListRuns(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"runs": ids})
}

// Get returns one archived run record. The run id is the path suffix
// after /api/runs/.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	record, err := h.archive.LoadRun(r.Context(), runID)
	if err != nil {
		response.Error(w, http.StatusNotFound, core.WrapError(core.ErrDataUnavailable, err))
		return
	}
	response.JSON(w, http.StatusOK, record)
}
