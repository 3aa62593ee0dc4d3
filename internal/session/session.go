// Package session manages the lifecycle of simulation runs: starting,
// stopping, status reporting and result archival. All run state lives
// here rather than in package-level globals, so a manager can be created
// per server and torn down cleanly.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/engine"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"github.com/uodit05/algo-trade-test-1/internal/metrics"
	"github.com/uodit05/algo-trade-test-1/internal/portfolio"
	"github.com/uodit05/algo-trade-test-1/internal/storage/archive"
	"github.com/uodit05/algo-trade-test-1/internal/storage/signal"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// Broadcaster pushes run events to connected clients.
type Broadcaster interface {
	Broadcast(v any)
}

// Message is one event pushed to clients over the live feed.
type Message struct {
	Type    string `json:"type"`
	RunID   string `json:"run_id"`
	Payload any    `json:"payload,omitempty"`
}

// Defaults are simulation parameters used when a start request leaves
// them unset.
type Defaults struct {
	Tickers        []string
	Interval       string
	Period         string
	InitialCash    float64
	CommissionRate float64
	TickDelay      time.Duration
}

// StartParams configures one run. Zero values fall back to the
// manager's defaults.
type StartParams struct {
	Strategy            string   `json:"strategy"`
	Tickers             []string `json:"tickers"`
	Interval            string   `json:"interval"`
	Period              string   `json:"period"`
	InitialCash         float64  `json:"initial_cash"`
	EnableBrokerCharges bool     `json:"enable_broker_charges"`
}

// Status is a point-in-time view of the manager.
type Status struct {
	RunID      string             `json:"run_id,omitempty"`
	State      engine.State       `json:"state"`
	Strategy   string             `json:"strategy,omitempty"`
	Step       int                `json:"step"`
	TotalSteps int                `json:"total_steps"`
	Equity     float64            `json:"equity"`
	Cash       float64            `json:"cash"`
	Positions  map[string]int64   `json:"positions,omitempty"`
	Prices     map[string]float64 `json:"prices,omitempty"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
}

// run is the state of one simulation run.
type run struct {
	id         string
	strategy   string
	tickers    []string
	engine     *engine.Engine
	ledger     *portfolio.Ledger
	cancel     context.CancelFunc
	startedAt  time.Time
	totalSteps int
	lastStep   engine.StepResult
	done       chan struct{}
}

// Manager owns at most one active run at a time.
type Manager struct {
	provider    feed.HistoryProvider
	registry    *strategy.Registry
	archive     *archive.Archive
	signals     signal.Store
	metrics     *metrics.Registry
	broadcaster Broadcaster
	defaults    Defaults
	logger      *zap.Logger

	// startMu serializes Start calls end to end; mu guards the fields
	// below and is never held across data loading.
	startMu  sync.Mutex
	mu       sync.Mutex
	current  *run
	selected string
}

// Option configures optional manager collaborators.
type Option func(*Manager)

// WithArchive enables run archival.
func WithArchive(a *archive.Archive) Option {
	return func(m *Manager) { m.archive = a }
}

// WithSignalStore enables signal logging.
func WithSignalStore(s signal.Store) Option {
	return func(m *Manager) { m.signals = s }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Manager) { m.metrics = reg }
}

// WithBroadcaster enables live event fan-out.
func WithBroadcaster(b Broadcaster) Option {
	return func(m *Manager) { m.broadcaster = b }
}

// New creates a manager. The provider and registry are required; the
// rest are wired through options.
func New(provider feed.HistoryProvider, registry *strategy.Registry, defaults Defaults, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.TickDelay <= 0 {
		defaults.TickDelay = 100 * time.Millisecond
	}
	m := &Manager{
		provider: provider,
		registry: registry,
		defaults: defaults,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SelectStrategy sets the strategy used by subsequent runs. It fails
// while a run is active, and for unknown names.
func (m *Manager) SelectStrategy(name string) error {
	if !m.registry.Has(name) {
		return core.ErrStrategyNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && !m.current.engine.State().Terminal() {
		return core.ErrRunActive
	}
	m.selected = name
	m.logger.Info("strategy selected", zap.String("strategy", name))
	return nil
}

// SelectedStrategy returns the currently selected strategy name, which
// may be empty.
func (m *Manager) SelectedStrategy() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Start launches a new run. Data loading happens synchronously so the
// caller gets load failures directly; the replay itself runs in a
// goroutine. Only one run may be active at a time.
func (m *Manager) Start(ctx context.Context, params StartParams) (string, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if m.current != nil && !m.current.engine.State().Terminal() {
		m.mu.Unlock()
		return "", core.ErrRunActive
	}
	name := params.Strategy
	if name == "" {
		name = m.selected
	}
	m.mu.Unlock()

	if name == "" {
		return "", core.WrapError(core.ErrStrategyNotFound, errors.New("no strategy selected"))
	}
	strat, err := m.registry.Get(name)
	if err != nil {
		return "", err
	}

	tickers := params.Tickers
	if len(tickers) == 0 {
		tickers = m.defaults.Tickers
	}
	interval := params.Interval
	if interval == "" {
		interval = m.defaults.Interval
	}
	period := params.Period
	if period == "" {
		period = m.defaults.Period
	}
	initialCash := params.InitialCash
	if initialCash == 0 {
		initialCash = m.defaults.InitialCash
	}
	var commission float64
	if params.EnableBrokerCharges {
		commission = m.defaults.CommissionRate
	}

	history, err := m.provider.FetchHistory(ctx, tickers, interval, period)
	if err != nil {
		return "", err
	}
	stream, err := feed.NewStream(history)
	if err != nil {
		return "", err
	}
	ledger, err := portfolio.New(initialCash, commission, m.logger)
	if err != nil {
		return "", err
	}

	strat.Reset()
	eng := engine.New(stream, ledger, strat, m.logger)

	runID := uuid.NewString()
	ledger.OnTrade(func(trade core.Trade) {
		m.broadcast(Message{Type: "trade", RunID: runID, Payload: trade})
	})

	r := &run{
		id:         runID,
		strategy:   name,
		tickers:    history.Tickers(),
		engine:     eng,
		ledger:     ledger,
		startedAt:  time.Now().UTC(),
		totalSteps: stream.Remaining(),
		done:       make(chan struct{}),
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	eng.OnStep(func(res engine.StepResult) {
		m.mu.Lock()
		r.lastStep = res
		m.mu.Unlock()

		if m.metrics != nil {
			m.metrics.RecordStep()
		}
		m.broadcast(Message{Type: "step", RunID: r.id, Payload: res})

		select {
		case <-runCtx.Done():
		case <-time.After(m.defaults.TickDelay):
		}
	})
	eng.OnSignal(func(ticker string, sig core.Signal, price float64, ts time.Time, execErr error) {
		if m.metrics != nil {
			m.metrics.RecordSignal(name, string(sig.Action))
			if execErr == nil {
				m.metrics.RecordTrade(string(sig.Action))
			} else {
				m.metrics.RecordTradeRejected(rejectionReason(execErr))
			}
		}
		if m.signals != nil {
			m.signals.Save(runCtx, signal.Record{
				RunID:    r.id,
				Ticker:   ticker,
				Strategy: name,
				Action:   sig.Action,
				Quantity: sig.Quantity,
				Price:    price,
				Executed: execErr == nil,
				Time:     ts,
			})
		}
	})

	m.mu.Lock()
	m.current = r
	m.selected = name
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetRunActive(true)
		m.metrics.SetUniverseSize(len(r.tickers))
	}

	m.logger.Info("run starting",
		zap.String("run_id", r.id),
		zap.String("strategy", name),
		zap.Strings("tickers", r.tickers),
		zap.Int("total_steps", r.totalSteps),
		zap.Float64("initial_cash", initialCash),
		zap.Float64("commission_rate", commission))

	go m.drive(runCtx, r)
	return r.id, nil
}

// drive executes the run to completion and handles teardown.
func (m *Manager) drive(ctx context.Context, r *run) {
	defer close(r.done)

	err := r.engine.Run(ctx)
	state := r.engine.State()
	duration := time.Since(r.startedAt)

	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Error("run failed", zap.String("run_id", r.id), zap.Error(err))
	}
	if m.metrics != nil {
		m.metrics.SetRunActive(false)
		m.metrics.RecordRun(string(state), duration.Seconds())
	}

	summary := r.engine.Summary()
	m.broadcast(Message{Type: string(state), RunID: r.id, Payload: summary})

	if m.archive != nil {
		actx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		record := archive.RunRecord{
			RunID:       r.id,
			Strategy:    r.strategy,
			State:       string(state),
			StartedAt:   r.startedAt,
			FinishedAt:  time.Now().UTC(),
			Tickers:     r.tickers,
			Summary:     summary,
			Trades:      r.ledger.TradeHistory(),
			EquityCurve: r.ledger.EquityCurve(),
		}
		if err := m.archive.SaveRun(actx, record); err != nil {
			m.logger.Warn("run archival failed", zap.String("run_id", r.id), zap.Error(err))
		}
	}

	m.logger.Info("run ended",
		zap.String("run_id", r.id),
		zap.String("state", string(state)),
		zap.Duration("duration", duration),
		zap.Float64("final_equity", summary.FinalEquity))
}

// Stop cancels the active run. The run winds down asynchronously; use
// Wait to block until it has fully stopped.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.engine.State().Terminal() {
		return core.ErrRunNotActive
	}
	m.current.cancel()
	m.logger.Info("run stop requested", zap.String("run_id", m.current.id))
	return nil
}

// Wait blocks until the most recent run has ended. It returns
// immediately when no run was ever started.
func (m *Manager) Wait() {
	m.mu.Lock()
	r := m.current
	m.mu.Unlock()
	if r != nil {
		<-r.done
	}
}

// Status reports the manager's current state. Before any run it reports
// the idle state with the selected strategy.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Status{State: engine.StateIdle, Strategy: m.selected}
	}

	r := m.current
	st := Status{
		RunID:      r.id,
		State:      r.engine.State(),
		Strategy:   r.strategy,
		Step:       r.engine.Steps(),
		TotalSteps: r.totalSteps,
		Equity:     r.ledger.Equity(),
		Cash:       r.ledger.Cash(),
		Positions:  r.ledger.Positions(),
		Prices:     r.lastStep.Prices,
		StartedAt:  &r.startedAt,
	}
	return st
}

// Summary returns the statistics of the most recent run.
func (m *Manager) Summary() (engine.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return engine.Summary{}, core.ErrRunNotActive
	}
	return m.current.engine.Summary(), nil
}

func (m *Manager) broadcast(msg Message) {
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(msg)
	}
}

// rejectionReason maps a ledger error to a stable metric label.
func rejectionReason(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr.Code
	}
	return "unknown"
}
