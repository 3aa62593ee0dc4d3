package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
)

// Result is one actionable finding from a scan.
type Result struct {
	Ticker   string      `json:"ticker"`
	Strategy string      `json:"strategy"`
	Action   core.Action `json:"action"`
	Price    float64     `json:"price"`
	ATR      float64     `json:"atr,omitempty"`
	Time     time.Time   `json:"time"`
}

// Scanner sweeps a ticker universe through batch-capable strategies and
// reports which tickers they would act on today.
type Scanner struct {
	provider feed.HistoryProvider
	registry *strategy.Registry
	logger   *zap.Logger
}

// New creates a scanner backed by the given history provider.
func New(provider feed.HistoryProvider, registry *strategy.Registry, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		provider: provider,
		registry: registry,
		logger:   logger,
	}
}

// Scan fetches history for every ticker and runs each named strategy over
// each ticker's candles. Strategies that cannot analyze a batch are
// skipped with a warning. The registry builds a fresh strategy instance
// per scan, so a scan never shares state with a live simulation run.
func (s *Scanner) Scan(ctx context.Context, tickers []string, interval, period string, strategyNames []string) ([]Result, error) {
	history, err := s.provider.FetchHistory(ctx, tickers, interval, period)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, name := range strategyNames {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		strat, err := s.registry.Get(name)
		if err != nil {
			return nil, err
		}
		analyzer, ok := strat.(strategy.BatchAnalyzer)
		if !ok {
			s.logger.Warn("strategy cannot scan batches", zap.String("strategy", name))
			continue
		}

		for _, ticker := range history.Tickers() {
			candles := history.Candles(ticker)
			if len(candles) == 0 {
				continue
			}

			strat.Reset()
			res := analyzer.AnalyzeBatch(candles)
			if res == nil {
				continue
			}

			results = append(results, Result{
				Ticker:   ticker,
				Strategy: name,
				Action:   res.Action,
				Price:    res.Price,
				ATR:      res.ATR,
				Time:     candles[len(candles)-1].Time,
			})
			s.logger.Info("scan hit",
				zap.String("ticker", ticker),
				zap.String("strategy", name),
				zap.String("action", string(res.Action)),
				zap.Float64("price", res.Price))
		}
	}

	s.logger.Info("scan complete",
		zap.Int("tickers", history.Len()),
		zap.Int("strategies", len(strategyNames)),
		zap.Int("hits", len(results)))
	return results, nil
}
