// Package meanrev implements a mean-reversion strategy: Bollinger Band
// entries confirmed by an oversold RSI.
package meanrev

import (
	"fmt"
	"math"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/indicator"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// Config holds the strategy's window parameters.
type Config struct {
	RSIWindow int
	BBWindow  int
	BBStdDev  float64
}

// DefaultConfig returns the standard RSI 14 / Bollinger 20 configuration.
func DefaultConfig() Config {
	return Config{
		RSIWindow: 14,
		BBWindow:  20,
		BBStdDev:  2.0,
	}
}

// cashFraction is the fraction of cash allocated per entry.
const cashFraction = 0.05

type tickerState struct {
	candles []core.Candle
	long    bool
	entry   float64
}

// MeanReversion buys oversold dips below the lower band and exits at the
// upper band or on an overbought RSI.
type MeanReversion struct {
	cfg    Config
	states map[string]*tickerState
}

// New creates the strategy, failing fast on invalid windows.
func New(cfg Config) (*MeanReversion, error) {
	if cfg.RSIWindow <= 0 || cfg.BBWindow <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("windows must be positive: rsi=%d bb=%d", cfg.RSIWindow, cfg.BBWindow))
	}
	if cfg.BBStdDev <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("band width must be positive, got %f", cfg.BBStdDev))
	}
	return &MeanReversion{
		cfg:    cfg,
		states: make(map[string]*tickerState),
	}, nil
}

func (s *MeanReversion) Name() string {
	return "MeanReversion"
}

func (s *MeanReversion) Description() string {
	return fmt.Sprintf("Mean reversion (RSI %d + Bollinger %d/%.1f)",
		s.cfg.RSIWindow, s.cfg.BBWindow, s.cfg.BBStdDev)
}

// Reset clears all per-ticker state.
func (s *MeanReversion) Reset() {
	s.states = make(map[string]*tickerState)
}

// OnData appends the candle and evaluates the state machine: FLAT -> LONG
// when price is below the lower band and RSI is oversold, LONG -> FLAT
// when price is above the upper band or RSI is overbought.
func (s *MeanReversion) OnData(ticker string, candle core.Candle, view strategy.View) *core.Signal {
	st, ok := s.states[ticker]
	if !ok {
		st = &tickerState{}
		s.states[ticker] = st
	}
	st.candles = append(st.candles, candle)

	if len(st.candles) < s.minHistory() {
		return nil
	}

	closes := make([]float64, len(st.candles))
	for i, c := range st.candles {
		closes[i] = c.Close
	}

	rsi, ok1 := indicator.Latest(indicator.RSI(closes, s.cfg.RSIWindow))
	bands := indicator.Bollinger(closes, s.cfg.BBWindow, s.cfg.BBStdDev)
	lower, ok2 := indicator.Latest(bands.Lower)
	upper, ok3 := indicator.Latest(bands.Upper)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	price := candle.Close

	if st.long {
		if price > upper || rsi > 70 {
			held := view.Position(ticker)
			st.long = false
			st.entry = 0
			return &core.Signal{Action: core.ActionSell, Quantity: held}
		}
		return nil
	}

	if price < lower && rsi < 30 {
		quantity := int64(math.Floor(view.Cash() * cashFraction / price))
		if quantity <= 0 {
			return nil
		}
		st.long = true
		st.entry = price
		return &core.Signal{Action: core.ActionBuy, Quantity: quantity}
	}

	return nil
}

// AnalyzeBatch evaluates the full series in one pass and reports a BUY
// for the latest bar when the entry conditions hold.
func (s *MeanReversion) AnalyzeBatch(candles []core.Candle) *strategy.BatchResult {
	if len(candles) < s.minHistory() {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsi, ok1 := indicator.Latest(indicator.RSI(closes, s.cfg.RSIWindow))
	bands := indicator.Bollinger(closes, s.cfg.BBWindow, s.cfg.BBStdDev)
	lower, ok2 := indicator.Latest(bands.Lower)
	if !ok1 || !ok2 {
		return nil
	}

	price := closes[len(closes)-1]
	if price < lower && rsi < 30 {
		return &strategy.BatchResult{
			Action: core.ActionBuy,
			Price:  price,
		}
	}
	return nil
}

// minHistory is the longest configured window, the point at which both
// indicators have values.
func (s *MeanReversion) minHistory() int {
	if s.cfg.RSIWindow+1 > s.cfg.BBWindow {
		return s.cfg.RSIWindow + 1
	}
	return s.cfg.BBWindow
}
