// Package trend implements a trend-following strategy: SMA crossover
// entries filtered by RSI, with ATR-based position sizing and stop-loss.
package trend

import (
	"fmt"
	"math"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/indicator"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// Config holds the strategy's window parameters.
type Config struct {
	ShortWindow     int
	LongWindow      int
	RSIWindow       int
	ATRWindow       int
	StopLossATRMult float64
}

// DefaultConfig returns the standard 20/50 day configuration.
func DefaultConfig() Config {
	return Config{
		ShortWindow:     20,
		LongWindow:      50,
		RSIWindow:       14,
		ATRWindow:       14,
		StopLossATRMult: 2.0,
	}
}

// riskFraction is the fraction of cash risked per entry.
const riskFraction = 0.02

// tickerState is the per-ticker trading state. Created on first
// observation, cleared wholesale by Reset.
type tickerState struct {
	candles []core.Candle
	long    bool
	entry   float64
	stop    float64
}

// TrendFollowing trades SMA crossovers with a volatility filter.
type TrendFollowing struct {
	cfg    Config
	states map[string]*tickerState
}

// New creates the strategy, failing fast on invalid windows.
func New(cfg Config) (*TrendFollowing, error) {
	if cfg.ShortWindow <= 0 || cfg.LongWindow <= 0 || cfg.RSIWindow <= 0 || cfg.ATRWindow <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("windows must be positive: short=%d long=%d rsi=%d atr=%d",
				cfg.ShortWindow, cfg.LongWindow, cfg.RSIWindow, cfg.ATRWindow))
	}
	if cfg.ShortWindow >= cfg.LongWindow {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("short window %d must be below long window %d", cfg.ShortWindow, cfg.LongWindow))
	}
	if cfg.StopLossATRMult <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stop loss multiplier must be positive, got %f", cfg.StopLossATRMult))
	}
	return &TrendFollowing{
		cfg:    cfg,
		states: make(map[string]*tickerState),
	}, nil
}

func (s *TrendFollowing) Name() string {
	return "TrendFollowing"
}

func (s *TrendFollowing) Description() string {
	return fmt.Sprintf("Trend following with volatility filter (SMA %d/%d, RSI %d, ATR stop x%.1f)",
		s.cfg.ShortWindow, s.cfg.LongWindow, s.cfg.RSIWindow, s.cfg.StopLossATRMult)
}

// Reset clears all per-ticker state.
func (s *TrendFollowing) Reset() {
	s.states = make(map[string]*tickerState)
}

// OnData appends the candle and evaluates the state machine for the
// ticker: FLAT -> LONG on a confirmed uptrend, LONG -> FLAT on trend
// reversal or stop-loss breach.
func (s *TrendFollowing) OnData(ticker string, candle core.Candle, view strategy.View) *core.Signal {
	st, ok := s.states[ticker]
	if !ok {
		st = &tickerState{}
		s.states[ticker] = st
	}
	st.candles = append(st.candles, candle)

	if len(st.candles) < s.cfg.LongWindow {
		return nil
	}

	closes, highs, lows := split(st.candles)

	smaShort, ok1 := indicator.Latest(indicator.SMA(closes, s.cfg.ShortWindow))
	smaLong, ok2 := indicator.Latest(indicator.SMA(closes, s.cfg.LongWindow))
	rsi, ok3 := indicator.Latest(indicator.RSI(closes, s.cfg.RSIWindow))
	atr, ok4 := indicator.Latest(indicator.ATR(highs, lows, closes, s.cfg.ATRWindow))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	price := candle.Close

	if st.long {
		// Exit on trend reversal or stop-loss breach
		if smaShort < smaLong || price < st.stop {
			held := view.Position(ticker)
			st.long = false
			st.entry = 0
			st.stop = 0
			return &core.Signal{Action: core.ActionSell, Quantity: held}
		}
		return nil
	}

	// Entry: uptrend confirmed and not overbought
	if smaShort > smaLong && rsi < 70 {
		riskPerShare := atr * s.cfg.StopLossATRMult
		if riskPerShare <= 0 {
			return nil
		}
		quantity := int64(math.Floor(view.Cash() * riskFraction / riskPerShare))
		if quantity <= 0 || float64(quantity)*price > view.Cash() {
			return nil
		}
		st.long = true
		st.entry = price
		st.stop = price - riskPerShare
		return &core.Signal{Action: core.ActionBuy, Quantity: quantity}
	}

	return nil
}

// AnalyzeBatch evaluates the full series in one pass and reports a BUY
// for the latest bar when the entry conditions hold.
func (s *TrendFollowing) AnalyzeBatch(candles []core.Candle) *strategy.BatchResult {
	if len(candles) < s.cfg.LongWindow {
		return nil
	}

	closes, highs, lows := split(candles)

	smaShort, ok1 := indicator.Latest(indicator.SMA(closes, s.cfg.ShortWindow))
	smaLong, ok2 := indicator.Latest(indicator.SMA(closes, s.cfg.LongWindow))
	rsi, ok3 := indicator.Latest(indicator.RSI(closes, s.cfg.RSIWindow))
	atr, ok4 := indicator.Latest(indicator.ATR(highs, lows, closes, s.cfg.ATRWindow))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	if smaShort > smaLong && rsi < 70 {
		return &strategy.BatchResult{
			Action: core.ActionBuy,
			Price:  closes[len(closes)-1],
			ATR:    atr,
		}
	}
	return nil
}

func split(candles []core.Candle) (closes, highs, lows []float64) {
	closes = make([]float64, len(candles))
	highs = make([]float64, len(candles))
	lows = make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}
	return closes, highs, lows
}
