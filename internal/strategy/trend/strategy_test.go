package trend

import (
	"math"
	"testing"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/indicator"
)

type fakeView struct {
	cash      float64
	positions map[string]int64
}

func (v *fakeView) Cash() float64 { return v.cash }
func (v *fakeView) Position(ticker string) int64 {
	return v.positions[ticker]
}

func testConfig() Config {
	return Config{
		ShortWindow:     2,
		LongWindow:      3,
		RSIWindow:       3,
		ATRWindow:       2,
		StopLossATRMult: 2.0,
	}
}

func candles(closes ...float64) []core.Candle {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]core.Candle, len(closes))
	for i, c := range closes {
		out[i] = core.Candle{
			Ticker: "X",
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 100,
			Time:   t0.AddDate(0, 0, i),
		}
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero short", Config{ShortWindow: 0, LongWindow: 50, RSIWindow: 14, ATRWindow: 14, StopLossATRMult: 2}},
		{"negative long", Config{ShortWindow: 20, LongWindow: -1, RSIWindow: 14, ATRWindow: 14, StopLossATRMult: 2}},
		{"short >= long", Config{ShortWindow: 50, LongWindow: 50, RSIWindow: 14, ATRWindow: 14, StopLossATRMult: 2}},
		{"zero stop mult", Config{ShortWindow: 20, LongWindow: 50, RSIWindow: 14, ATRWindow: 14, StopLossATRMult: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Error("New() should reject invalid config")
			}
		})
	}

	if _, err := New(DefaultConfig()); err != nil {
		t.Errorf("New(DefaultConfig()) error = %v", err)
	}
}

func TestOnData_BelowLongWindowReturnsNone(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{cash: 100000, positions: map[string]int64{}}

	series := candles(make([]float64, 49)...)
	for i := range series {
		series[i].Close = 100 + float64(i%5)
		series[i].High = series[i].Close + 1
		series[i].Low = series[i].Close - 1
	}

	for i, c := range series {
		if sig := s.OnData("X", c, view); sig != nil {
			t.Fatalf("candle %d: got signal %+v before long window filled", i, sig)
		}
	}
}

func TestOnData_EntrySignalAndSizing(t *testing.T) {
	cfg := testConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{cash: 100000, positions: map[string]int64{}}

	// Dip then recovery: short MA above long MA, RSI moderate
	series := candles(10, 9, 10, 11)
	var sig *core.Signal
	for _, c := range series {
		sig = s.OnData("X", c, view)
	}

	if sig == nil {
		t.Fatal("expected entry signal on final candle")
	}
	if sig.Action != core.ActionBuy {
		t.Fatalf("action = %s, want BUY", sig.Action)
	}

	// Quantity is fixed-fractional: floor(2% cash / (ATR * mult))
	closes, highs, lows := split(series)
	atr, _ := indicator.Latest(indicator.ATR(highs, lows, closes, cfg.ATRWindow))
	want := int64(math.Floor(100000 * riskFraction / (atr * cfg.StopLossATRMult)))
	if sig.Quantity != want {
		t.Errorf("quantity = %d, want %d", sig.Quantity, want)
	}

	// Stop recorded below entry
	st := s.states["X"]
	if !st.long {
		t.Error("state should be LONG after entry")
	}
	if st.stop >= 11 {
		t.Errorf("stop = %f, want below entry 11", st.stop)
	}
}

func TestOnData_EntryRejectedWhenNotionalExceedsCash(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Tiny cash: sized quantity would be zero
	view := &fakeView{cash: 1, positions: map[string]int64{}}

	var sig *core.Signal
	for _, c := range candles(10, 9, 10, 11) {
		sig = s.OnData("X", c, view)
	}
	if sig != nil {
		t.Errorf("got signal %+v, want none for unaffordable entry", sig)
	}
	if s.states["X"].long {
		t.Error("state must stay FLAT when no signal is emitted")
	}
}

func TestOnData_ExitOnTrendReversal(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{cash: 100000, positions: map[string]int64{}}

	for _, c := range candles(10, 9, 10, 11) {
		s.OnData("X", c, view)
	}
	if !s.states["X"].long {
		t.Fatal("expected LONG state after entry")
	}
	view.positions["X"] = 695

	// Sharp drop flips the moving averages
	drop := candles(10, 9, 10, 11, 8)[4]
	sig := s.OnData("X", drop, view)

	if sig == nil || sig.Action != core.ActionSell {
		t.Fatalf("expected SELL signal, got %+v", sig)
	}
	if sig.Quantity != 695 {
		t.Errorf("quantity = %d, want full held 695 from portfolio view", sig.Quantity)
	}
	if s.states["X"].long {
		t.Error("state should be FLAT after exit")
	}
}

func TestOnData_ExitOnStopLoss(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{cash: 100000, positions: map[string]int64{"X": 100}}

	for _, c := range candles(10, 9, 10, 11) {
		s.OnData("X", c, view)
	}
	// Force a stop just below the market so a mild dip breaches it while
	// the short MA is still above the long MA
	s.states["X"].stop = 10.9

	dip := candles(10, 9, 10, 11, 10.5)[4]
	sig := s.OnData("X", dip, view)

	if sig == nil || sig.Action != core.ActionSell {
		t.Fatalf("expected stop-loss SELL, got %+v", sig)
	}
}

func TestReset_ClearsState(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{cash: 100000, positions: map[string]int64{}}

	for _, c := range candles(10, 9, 10, 11) {
		s.OnData("X", c, view)
	}
	if len(s.states) == 0 {
		t.Fatal("expected per-ticker state")
	}

	s.Reset()
	if len(s.states) != 0 {
		t.Error("Reset() must clear all per-ticker state")
	}
}

func TestAnalyzeBatch(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	res := s.AnalyzeBatch(candles(10, 9, 10, 11))
	if res == nil || res.Action != core.ActionBuy {
		t.Fatalf("expected BUY batch result, got %+v", res)
	}
	if res.Price != 11 {
		t.Errorf("price = %f, want 11", res.Price)
	}
	if res.ATR <= 0 {
		t.Errorf("atr = %f, want positive", res.ATR)
	}

	if res := s.AnalyzeBatch(candles(10, 9)); res != nil {
		t.Errorf("short series: got %+v, want nil", res)
	}
}
