// internal/api/handler/api/signals.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/api/response"
	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/storage/signal"
)

// defaultSignalLimit caps unpaginated listings.
const defaultSignalLimit = 50

// SignalsHandler serves the signal log.
type SignalsHandler struct {
	store signal.Store
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(store signal.Store) *SignalsHandler {
	return &SignalsHandler{store: store}
}

// List returns logged signals matching the query parameters.
func (h *SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		response.Error(w, http.StatusMethodNotAllowed, core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	q := r.URL.Query()
	filter := signal.ListFilter{
		RunID:    q.Get("run_id"),
		Ticker:   q.Get("ticker"),
		Strategy: q.Get("strategy"),
		Action:   core.Action(q.Get("action")),
		From:     parseTime(q.Get("from")),
		To:       parseTime(q.Get("to")),
		Limit:    parseInt(q.Get("limit"), defaultSignalLimit),
		Offset:   parseInt(q.Get("offset"), 0),
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	total, err := h.store.Count(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"signals": records,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// parseTime accepts RFC3339 or a bare date. Unparseable values yield
// the zero time, which the filter treats as unset.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
