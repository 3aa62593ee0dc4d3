// internal/api/handler/api/session.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/uodit05/algo-trade-test-1/internal/api/response"
	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/session"
)

// SessionHandler exposes run lifecycle operations.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Start launches a new simulation run.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		response.Error(w, http.StatusMethodNotAllowed, core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	var params session.StartParams
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
			return
		}
	}

	runID, err := h.manager.Start(r.Context(), params)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

// Stop cancels the active run.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		response.Error(w, http.StatusMethodNotAllowed, core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	if err := h.manager.Stop(); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// Status reports the current run state.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.manager.Status())
}

// Summary reports statistics for the most recent run.
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.manager.Summary()
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

// Strategy gets or sets the selected strategy.
func (h *SessionHandler) Strategy(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		response.JSON(w, http.StatusOK, map[string]string{
			"strategy": h.manager.SelectedStrategy(),
		})
	case http.MethodPost:
		var body struct {
			Strategy string `json:"strategy"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
			return
		}
		if err := h.manager.SelectStrategy(body.Strategy); err != nil {
			response.Fail(w, err)
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"strategy": body.Strategy})
	default:
		w.Header().Set("Allow", "GET, POST")
		response.Error(w, http.StatusMethodNotAllowed, core.WrapError(core.ErrConfigInvalid, nil))
	}
}
