package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Simulation metrics
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	stepsTotal      prometheus.Counter
	signalsTotal    *prometheus.CounterVec
	tradesTotal     *prometheus.CounterVec
	tradesRejected  *prometheus.CounterVec
	scansTotal      prometheus.Counter
	runActive       prometheus.Gauge
	wsClients       prometheus.Gauge
	universeTickers prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Simulation metrics
	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algotrade_runs_total",
			Help: "Total number of simulation runs by final state",
		},
		[]string{"status"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "algotrade_run_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.stepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "algotrade_steps_total",
			Help: "Total number of simulation steps processed",
		},
	)
	r.signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algotrade_signals_total",
			Help: "Total number of signals emitted by strategies",
		},
		[]string{"strategy", "action"},
	)
	r.tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algotrade_trades_total",
			Help: "Total number of executed trades",
		},
		[]string{"action"},
	)
	r.tradesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algotrade_trades_rejected_total",
			Help: "Total number of trades rejected by the ledger",
		},
		[]string{"reason"},
	)
	r.scansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "algotrade_scans_total",
			Help: "Total number of universe scans",
		},
	)
	r.runActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "algotrade_run_active",
			Help: "Whether a simulation run is currently active (0 or 1)",
		},
	)
	r.wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "algotrade_ws_clients",
			Help: "Number of connected websocket clients",
		},
	)
	r.universeTickers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "algotrade_universe_tickers",
			Help: "Number of tickers in the simulation universe",
		},
	)

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.stepsTotal)
	reg.MustRegister(r.signalsTotal)
	reg.MustRegister(r.tradesTotal)
	reg.MustRegister(r.tradesRejected)
	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.runActive)
	reg.MustRegister(r.wsClients)
	reg.MustRegister(r.universeTickers)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordRun records a completed run with its final state.
func (r *Registry) RecordRun(status string, duration float64) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration)
}

// RecordStep records one processed simulation step.
func (r *Registry) RecordStep() {
	r.stepsTotal.Inc()
}

// RecordSignal records a strategy signal.
func (r *Registry) RecordSignal(strategy, action string) {
	r.signalsTotal.WithLabelValues(strategy, action).Inc()
}

// RecordTrade records an executed trade.
func (r *Registry) RecordTrade(action string) {
	r.tradesTotal.WithLabelValues(action).Inc()
}

// RecordTradeRejected records a ledger rejection.
func (r *Registry) RecordTradeRejected(reason string) {
	r.tradesRejected.WithLabelValues(reason).Inc()
}

// RecordScan records a universe scan.
func (r *Registry) RecordScan() {
	r.scansTotal.Inc()
}

// SetRunActive flags whether a run is in progress.
func (r *Registry) SetRunActive(active bool) {
	if active {
		r.runActive.Set(1)
	} else {
		r.runActive.Set(0)
	}
}

// WSClientConnected increments the connected client gauge.
func (r *Registry) WSClientConnected() {
	r.wsClients.Inc()
}

// WSClientDisconnected decrements the connected client gauge.
func (r *Registry) WSClientDisconnected() {
	r.wsClients.Dec()
}

// SetUniverseSize sets the universe ticker count.
func (r *Registry) SetUniverseSize(size int) {
	r.universeTickers.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
