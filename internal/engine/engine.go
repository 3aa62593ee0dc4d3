package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"github.com/uodit05/algo-trade-test-1/internal/portfolio"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// State describes the lifecycle of a simulation run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
)

// Terminal reports whether the run has ended.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateCancelled
}

// StepResult is the outcome of advancing the simulation by one snapshot.
type StepResult struct {
	Time      time.Time          `json:"time"`
	Equity    float64            `json:"equity"`
	Cash      float64            `json:"cash"`
	Positions map[string]int64   `json:"positions"`
	Prices    map[string]float64 `json:"prices"`
	Trades    []core.Trade       `json:"trades,omitempty"`
}

// Observer receives each step result as the run progresses.
type Observer func(StepResult)

// SignalObserver receives every emitted signal along with the ledger's
// verdict: execErr is nil when the order filled.
type SignalObserver func(ticker string, sig core.Signal, price float64, ts time.Time, execErr error)

// Engine replays a candle stream through a strategy against a ledger.
// A single engine drives a single run; create a new one per run.
type Engine struct {
	stream   *feed.Stream
	ledger   *portfolio.Ledger
	strat    strategy.Strategy
	observer Observer
	onSignal SignalObserver
	logger   *zap.Logger

	mu    sync.Mutex
	state State
	steps int
}

// New creates an engine in the idle state.
func New(stream *feed.Stream, ledger *portfolio.Ledger, strat strategy.Strategy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		stream: stream,
		ledger: ledger,
		strat:  strat,
		logger: logger,
		state:  StateIdle,
	}
}

// OnStep registers the observer invoked after every completed step.
// Must be set before Run.
func (e *Engine) OnStep(fn Observer) {
	e.observer = fn
}

// OnSignal registers the observer invoked for every emitted signal.
// Must be set before Run.
func (e *Engine) OnSignal(fn SignalObserver) {
	e.onSignal = fn
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Steps returns the number of snapshots processed so far.
func (e *Engine) Steps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run replays the stream to exhaustion. Cancellation is observed between
// steps, so an in-flight step always completes and the ledger stays
// consistent. A cancelled run ends in StateCancelled and returns ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return core.ErrRunActive
	}
	e.state = StateRunning
	e.mu.Unlock()

	e.logger.Info("simulation started",
		zap.String("strategy", e.strat.Name()),
		zap.Int("snapshots", e.stream.Remaining()))

	for {
		select {
		case <-ctx.Done():
			e.setState(StateCancelled)
			e.logger.Info("simulation cancelled", zap.Int("steps", e.Steps()))
			return ctx.Err()
		default:
		}

		res, ok := e.Step()
		if !ok {
			break
		}
		if e.observer != nil {
			e.observer(res)
		}
	}

	e.setState(StateFinished)
	e.logger.Info("simulation finished",
		zap.Int("steps", e.Steps()),
		zap.Float64("final_equity", e.ledger.Equity()))
	return nil
}

// Step advances the simulation by one snapshot. It returns false when the
// stream is exhausted. Equity is marked to the snapshot's prices before the
// strategy sees any candle, so sizing decisions use current valuations.
func (e *Engine) Step() (StepResult, bool) {
	snap, ok := e.stream.Next()
	if !ok {
		return StepResult{}, false
	}

	prices := snap.Prices()
	equity := e.ledger.UpdateEquity(prices)

	before := e.ledger.TradeCount()
	for _, ticker := range snap.Tickers {
		candle, ok := snap.Candles[ticker]
		if !ok {
			continue
		}
		sig := e.strat.OnData(ticker, candle, e.ledger)
		if sig == nil || sig.Quantity <= 0 {
			// Zero-quantity signals are no-ops: never executed, never
			// reported to observers.
			continue
		}
		err := e.ledger.ExecuteTrade(ticker, sig.Action, sig.Quantity, candle.Close, snap.Time)
		if err != nil {
			e.logger.Warn("trade rejected",
				zap.String("ticker", ticker),
				zap.String("action", string(sig.Action)),
				zap.Int64("quantity", sig.Quantity),
				zap.Error(err))
		}
		if e.onSignal != nil {
			e.onSignal(ticker, *sig, candle.Close, snap.Time, err)
		}
	}

	stepTrades := e.ledger.TradesSince(before)

	e.mu.Lock()
	e.steps++
	e.mu.Unlock()

	return StepResult{
		Time:      snap.Time,
		Equity:    equity,
		Cash:      e.ledger.Cash(),
		Positions: e.ledger.Positions(),
		Prices:    prices,
		Trades:    stepTrades,
	}, true
}

// Summary computes run statistics from the ledger's current state.
func (e *Engine) Summary() Summary {
	return Summarize(e.ledger, e.Steps())
}
