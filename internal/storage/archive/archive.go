// Package archive persists completed simulation runs to cold storage.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/engine"
)

// Storage is a blob backend for archived runs.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// RunRecord is the archived form of one completed run.
type RunRecord struct {
	RunID       string         `json:"run_id"`
	Strategy    string         `json:"strategy"`
	State       string         `json:"state"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Tickers     []string       `json:"tickers"`
	Summary     engine.Summary `json:"summary"`
	Trades      []core.Trade   `json:"trades"`
	EquityCurve []float64      `json:"equity_curve"`
}

// Archive stores and retrieves run records on a blob backend.
type Archive struct {
	storage Storage
}

// New creates an archive over the given backend.
func New(storage Storage) *Archive {
	return &Archive{storage: storage}
}

func runPath(runID string) string {
	return path.Join("runs", runID+".json")
}

// SaveRun archives a completed run as JSON.
func (a *Archive) SaveRun(ctx context.Context, record RunRecord) error {
	if record.RunID == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("run record has no id"))
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", record.RunID, err)
	}
	return a.storage.Write(ctx, runPath(record.RunID), data)
}

// LoadRun retrieves an archived run by id.
func (a *Archive) LoadRun(ctx context.Context, runID string) (*RunRecord, error) {
	data, err := a.storage.Read(ctx, runPath(runID))
	if err != nil {
		return nil, err
	}
	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &record, nil
}

// ListRuns returns the ids of all archived runs, sorted.
func (a *Archive) ListRuns(ctx context.Context) ([]string, error) {
	paths, err := a.storage.List(ctx, "runs")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		base := path.Base(p)
		if ext := path.Ext(base); ext == ".json" {
			ids = append(ids, base[:len(base)-len(ext)])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteRun removes an archived run.
func (a *Archive) DeleteRun(ctx context.Context, runID string) error {
	return a.storage.Delete(ctx, runPath(runID))
}
