// Package signal keeps a bounded in-memory log of strategy signals
// emitted during simulation runs.
package signal

import (
	"context"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

// Record is one logged strategy signal with its run context.
type Record struct {
	ID       string      `json:"id"`
	RunID    string      `json:"run_id"`
	Ticker   string      `json:"ticker"`
	Strategy string      `json:"strategy"`
	Action   core.Action `json:"action"`
	Quantity int64       `json:"quantity"`
	Price    float64     `json:"price"`
	Executed bool        `json:"executed"`
	Time     time.Time   `json:"time"`
}

// Store defines the interface for signal log persistence.
type Store interface {
	// Save persists a record and assigns an ID.
	Save(ctx context.Context, record Record) error

	// List retrieves records matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Record, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing signal records.
type ListFilter struct {
	RunID    string
	Ticker   string
	Strategy string
	Action   core.Action
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
