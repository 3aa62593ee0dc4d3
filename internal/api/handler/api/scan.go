// internal/api/handler/api/scan.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/uodit05/algo-trade-test-1/internal/api/response"
	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/scanner"
)

// ScanHandler runs universe scans on demand.
type ScanHandler struct {
	scanner *scanner.Scanner
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(s *scanner.Scanner) *ScanHandler {
	return &ScanHandler{scanner: s}
}

// Scan sweeps the requested tickers through the requested strategies.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		response.Error(w, http.StatusMethodNotAllowed, core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	var body struct {
		Tickers    []string `json:"tickers"`
		Interval   string   `json:"interval"`
		Period     string   `json:"period"`
		Strategies []string `json:"strategies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if len(body.Tickers) == 0 || len(body.Strategies) == 0 {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, nil))
		return
	}
	if body.Interval == "" {
		body.Interval = "1d"
	}
	if body.Period == "" {
		body.Period = "1y"
	}

	results, err := h.scanner.Scan(r.Context(), body.Tickers, body.Interval, body.Period, body.Strategies)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}
