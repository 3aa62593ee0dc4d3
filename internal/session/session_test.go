package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/engine"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"github.com/uodit05/algo-trade-test-1/internal/storage/archive"
	"github.com/uodit05/algo-trade-test-1/internal/storage/signal"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

type fakeProvider struct {
	history *feed.History
	err     error
}

func (p *fakeProvider) FetchHistory(ctx context.Context, tickers []string, interval, period string) (*feed.History, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.history, nil
}

// buyOnce buys one share on its first call and then stays flat.
type buyOnce struct {
	bought bool
}

func (s *buyOnce) Name() string        { return "buyonce" }
func (s *buyOnce) Description() string { return "test" }
func (s *buyOnce) Reset()              { s.bought = false }
func (s *buyOnce) OnData(ticker string, candle core.Candle, view strategy.View) *core.Signal {
	if s.bought {
		return nil
	}
	s.bought = true
	return &core.Signal{Action: core.ActionBuy, Quantity: 1}
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs []Message
}

func (b *recordingBroadcaster) Broadcast(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := v.(Message); ok {
		b.msgs = append(b.msgs, msg)
	}
}

func (b *recordingBroadcaster) messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

func testProvider(nCandles int) *fakeProvider {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, nCandles)
	for i := range candles {
		price := 10 + float64(i)
		candles[i] = core.Candle{
			Ticker: "X",
			Open:   price, High: price, Low: price, Close: price,
			Volume: 100,
			Time:   t0.AddDate(0, 0, i),
		}
	}
	h := feed.NewHistory()
	h.Add("X", candles)
	return &fakeProvider{history: h}
}

func testRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.Register(func() strategy.Strategy { return &buyOnce{} })
	return reg
}

func fastDefaults() Defaults {
	return Defaults{
		Tickers:        []string{"X"},
		Interval:       "1d",
		Period:         "1y",
		InitialCash:    1000,
		CommissionRate: 0.001,
		TickDelay:      time.Millisecond,
	}
}

func TestManager_RunToCompletion(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	signals := signal.NewMemoryStore(100)
	fs, err := archive.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runArchive := archive.New(fs)

	m := New(testProvider(3), testRegistry(), fastDefaults(), zap.NewNop(),
		WithBroadcaster(broadcaster),
		WithSignalStore(signals),
		WithArchive(runArchive))

	runID, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if runID == "" {
		t.Fatal("Start() returned empty run id")
	}
	m.Wait()

	st := m.Status()
	if st.State != engine.StateFinished {
		t.Errorf("state = %s, want finished", st.State)
	}
	if st.Step != 3 || st.TotalSteps != 3 {
		t.Errorf("steps = %d/%d, want 3/3", st.Step, st.TotalSteps)
	}

	msgs := broadcaster.messages()
	var steps, finished, trades int
	for _, msg := range msgs {
		switch msg.Type {
		case "step":
			steps++
		case "finished":
			finished++
		case "trade":
			trades++
		}
		if msg.RunID != runID {
			t.Errorf("message run_id = %s, want %s", msg.RunID, runID)
		}
	}
	if steps != 3 {
		t.Errorf("broadcast %d step messages, want 3", steps)
	}
	if finished != 1 {
		t.Errorf("broadcast %d finished messages, want 1", finished)
	}
	if trades != 1 {
		t.Errorf("broadcast %d trade messages, want 1", trades)
	}

	n, _ := signals.Count(context.Background(), signal.ListFilter{RunID: runID})
	if n != 1 {
		t.Errorf("signal log has %d records, want 1", n)
	}

	ids, err := runArchive.ListRuns(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != runID {
		t.Errorf("archived runs = %v, want [%s]", ids, runID)
	}
	record, err := runArchive.LoadRun(context.Background(), runID)
	if err != nil {
		t.Fatal(err)
	}
	if record.Strategy != "buyonce" || record.State != "finished" {
		t.Errorf("record = %+v", record)
	}
	if len(record.EquityCurve) != 3 {
		t.Errorf("equity curve length = %d, want 3", len(record.EquityCurve))
	}
}

func TestManager_StartWhileRunning(t *testing.T) {
	defaults := fastDefaults()
	defaults.TickDelay = 50 * time.Millisecond
	m := New(testProvider(100), testRegistry(), defaults, zap.NewNop())

	if _, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"}); err != nil {
		t.Fatal(err)
	}
	defer func() {
		m.Stop()
		m.Wait()
	}()

	if _, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"}); !errors.Is(err, core.ErrRunActive) {
		t.Errorf("second Start() error = %v, want ErrRunActive", err)
	}
}

func TestManager_StopCancelsRun(t *testing.T) {
	defaults := fastDefaults()
	defaults.TickDelay = 50 * time.Millisecond
	broadcaster := &recordingBroadcaster{}
	m := New(testProvider(100), testRegistry(), defaults, zap.NewNop(),
		WithBroadcaster(broadcaster))

	if _, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	m.Wait()

	if st := m.Status(); st.State != engine.StateCancelled {
		t.Errorf("state = %s, want cancelled", st.State)
	}

	var sawCancelled bool
	for _, msg := range broadcaster.messages() {
		if msg.Type == "cancelled" {
			sawCancelled = true
		}
	}
	if !sawCancelled {
		t.Error("expected a cancelled broadcast")
	}
}

func TestManager_StopWithoutRun(t *testing.T) {
	m := New(testProvider(3), testRegistry(), fastDefaults(), zap.NewNop())
	if err := m.Stop(); !errors.Is(err, core.ErrRunNotActive) {
		t.Errorf("Stop() error = %v, want ErrRunNotActive", err)
	}
}

func TestManager_StartWithoutStrategy(t *testing.T) {
	m := New(testProvider(3), testRegistry(), fastDefaults(), zap.NewNop())
	if _, err := m.Start(context.Background(), StartParams{}); !errors.Is(err, core.ErrStrategyNotFound) {
		t.Errorf("Start() error = %v, want ErrStrategyNotFound", err)
	}
}

func TestManager_SelectStrategy(t *testing.T) {
	m := New(testProvider(3), testRegistry(), fastDefaults(), zap.NewNop())

	if err := m.SelectStrategy("missing"); !errors.Is(err, core.ErrStrategyNotFound) {
		t.Errorf("SelectStrategy() error = %v, want ErrStrategyNotFound", err)
	}
	if err := m.SelectStrategy("buyonce"); err != nil {
		t.Fatalf("SelectStrategy() error = %v", err)
	}
	if got := m.SelectedStrategy(); got != "buyonce" {
		t.Errorf("SelectedStrategy() = %s, want buyonce", got)
	}

	// A selected strategy is picked up by Start without an explicit name.
	if _, err := m.Start(context.Background(), StartParams{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	m.Wait()
	if st := m.Status(); st.Strategy != "buyonce" {
		t.Errorf("status strategy = %s, want buyonce", st.Strategy)
	}
}

func TestManager_SelectStrategyWhileRunning(t *testing.T) {
	defaults := fastDefaults()
	defaults.TickDelay = 50 * time.Millisecond
	m := New(testProvider(100), testRegistry(), defaults, zap.NewNop())

	if _, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"}); err != nil {
		t.Fatal(err)
	}
	defer func() {
		m.Stop()
		m.Wait()
	}()

	if err := m.SelectStrategy("buyonce"); !errors.Is(err, core.ErrRunActive) {
		t.Errorf("SelectStrategy() error = %v, want ErrRunActive", err)
	}
}

func TestManager_StatusIdle(t *testing.T) {
	m := New(testProvider(3), testRegistry(), fastDefaults(), zap.NewNop())
	st := m.Status()
	if st.State != engine.StateIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
	if st.RunID != "" {
		t.Errorf("run id = %s, want empty", st.RunID)
	}
}

func TestManager_ProviderFailure(t *testing.T) {
	m := New(&fakeProvider{err: core.ErrDataUnavailable}, testRegistry(), fastDefaults(), zap.NewNop())
	if _, err := m.Start(context.Background(), StartParams{Strategy: "buyonce"}); !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("Start() error = %v, want ErrDataUnavailable", err)
	}
}
