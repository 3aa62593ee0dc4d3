package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

type decoded struct {
	Data  map[string]string `json:"data"`
	Error *Problem          `json:"error"`
	Meta  struct {
		Timestamp time.Time `json:"timestamp"`
	} `json:"meta"`
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"hello": "world"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json content type")
	}

	var resp decoded
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data["hello"] != "world" {
		t.Errorf("data = %v, want hello=world", resp.Data)
	}
	if resp.Error != nil {
		t.Errorf("success envelope carries an error: %+v", resp.Error)
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected timestamp in meta")
	}
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, core.ErrConfigInvalid)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp decoded
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != "CONFIG_INVALID" {
		t.Errorf("error = %+v, want code CONFIG_INVALID", resp.Error)
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected timestamp in error meta")
	}
}

func TestError_Unclassified(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, http.ErrHandlerTimeout)

	var resp decoded
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("error = %+v, want code INTERNAL_ERROR", resp.Error)
	}
	if resp.Error != nil && resp.Error.Cause != "" {
		t.Errorf("unclassified error leaked a cause: %q", resp.Error.Cause)
	}
}

func TestFail_StatusFromClassification(t *testing.T) {
	w := httptest.NewRecorder()

	Fail(w, core.WrapError(core.ErrRunActive, nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	var resp decoded
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != "RUN_ACTIVE" {
		t.Errorf("error = %+v, want code RUN_ACTIVE", resp.Error)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrStrategyNotFound, http.StatusNotFound},
		{core.ErrDataUnavailable, http.StatusNotFound},
		{core.ErrRunActive, http.StatusConflict},
		{core.ErrRunNotActive, http.StatusConflict},
		{core.ErrConfigInvalid, http.StatusBadRequest},
		{core.ErrInsufficientData, http.StatusBadRequest},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrInsufficientFunds, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
