package strategy

import (
	"github.com/uodit05/algo-trade-test-1/internal/core"
)

// View is the read-only portfolio view handed to strategies. Strategies
// size orders from it but never mutate portfolio state; proposed trades
// are validated and executed by the ledger.
type View interface {
	Cash() float64
	Position(ticker string) int64
}

// Strategy consumes one candle at a time per ticker and proposes at most
// one trade per call. Implementations own all per-ticker state; the
// engine never reads or mutates it directly.
type Strategy interface {
	Name() string
	Description() string

	// OnData appends the candle to the ticker's history and runs the
	// decision logic. It returns nil until the strategy's minimum window
	// is filled, and nil whenever there is nothing to do.
	OnData(ticker string, candle core.Candle, view View) *core.Signal

	// Reset clears all per-ticker state. It must be called before
	// reusing an instance for a new run.
	Reset()
}

// BatchResult is the latest-bar outcome of a whole-history analysis,
// used by the scanner to rank a universe without a step-by-step run.
type BatchResult struct {
	Action core.Action
	Price  float64
	ATR    float64
}

// BatchAnalyzer is an optional strategy capability: analyze a complete
// candle series in one pass and report the signal for the most recent
// bar, or nil.
type BatchAnalyzer interface {
	AnalyzeBatch(candles []core.Candle) *BatchResult
}
