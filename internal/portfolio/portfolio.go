// Package portfolio implements the simulation ledger: cash, open
// positions, trade history and the equity curve.
package portfolio

import (
	"fmt"
	"sync"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"go.uber.org/zap"
)

// TradeFunc is invoked after every successfully executed trade. It is a
// notification hook for observers (live feed, logs); failures to deliver
// must not affect the ledger.
type TradeFunc func(core.Trade)

// Ledger tracks cash, positions, trade history and the equity curve for
// one simulation run. A run owns its Ledger exclusively; the mutex only
// protects read access from status endpoints while a run is in flight.
type Ledger struct {
	mu             sync.RWMutex
	initialCash    float64
	cash           float64
	commissionRate float64
	positions      map[string]int64
	trades         []core.Trade
	equityCurve    []float64
	lastPrices     map[string]float64
	onTrade        TradeFunc
	logger         *zap.Logger
}

// New creates a Ledger with the given starting cash and commission rate.
// Negative cash or commission fails fast with ErrConfigInvalid.
func New(initialCash, commissionRate float64, logger *zap.Logger) (*Ledger, error) {
	if initialCash < 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial cash cannot be negative, got %.2f", initialCash))
	}
	if commissionRate < 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission rate cannot be negative, got %f", commissionRate))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		initialCash:    initialCash,
		cash:           initialCash,
		commissionRate: commissionRate,
		positions:      make(map[string]int64),
		lastPrices:     make(map[string]float64),
		logger:         logger,
	}, nil
}

// OnTrade registers the trade notification hook.
func (l *Ledger) OnTrade(fn TradeFunc) {
	l.onTrade = fn
}

// UpdateEquity marks positions to market and appends exactly one point to
// the equity curve. Held tickers absent from prices are valued at their
// last known price; a ticker never priced contributes zero until its
// first quote arrives.
func (l *Ledger) UpdateEquity(prices map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ticker, price := range prices {
		l.lastPrices[ticker] = price
	}

	equity := l.cash
	for ticker, quantity := range l.positions {
		equity += float64(quantity) * l.lastPrices[ticker]
	}
	l.equityCurve = append(l.equityCurve, equity)
	return equity
}

// ExecuteTrade validates and executes one full-fill market order
// atomically. On failure nothing is mutated and a classified error is
// returned (ErrInsufficientFunds / ErrInsufficientPosition); the caller
// drops the signal. Non-positive quantities are no-ops.
func (l *Ledger) ExecuteTrade(ticker string, action core.Action, quantity int64, price float64, ts time.Time) error {
	if quantity <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	value := float64(quantity) * price
	commission := value * l.commissionRate

	var trade core.Trade
	switch action {
	case core.ActionBuy:
		cost := value + commission
		if l.cash < cost {
			l.logger.Info("buy rejected",
				zap.String("ticker", ticker),
				zap.Int64("quantity", quantity),
				zap.Float64("cost", cost),
				zap.Float64("cash", l.cash),
			)
			return core.WrapError(core.ErrInsufficientFunds,
				fmt.Errorf("need %.2f to buy %d %s, have %.2f", cost, quantity, ticker, l.cash))
		}
		l.cash -= cost
		l.positions[ticker] += quantity
		trade = core.Trade{
			Time:       ts,
			Ticker:     ticker,
			Action:     core.ActionBuy,
			Quantity:   quantity,
			Price:      price,
			Commission: commission,
			CashDelta:  -cost,
		}

	case core.ActionSell:
		held := l.positions[ticker]
		if held < quantity {
			l.logger.Info("sell rejected",
				zap.String("ticker", ticker),
				zap.Int64("quantity", quantity),
				zap.Int64("held", held),
			)
			return core.WrapError(core.ErrInsufficientPosition,
				fmt.Errorf("hold %d %s, cannot sell %d", held, ticker, quantity))
		}
		revenue := value - commission
		l.cash += revenue
		l.positions[ticker] -= quantity
		if l.positions[ticker] == 0 {
			delete(l.positions, ticker)
		}
		trade = core.Trade{
			Time:       ts,
			Ticker:     ticker,
			Action:     core.ActionSell,
			Quantity:   quantity,
			Price:      price,
			Commission: commission,
			CashDelta:  revenue,
		}

	default:
		return fmt.Errorf("portfolio: unknown action %q", action)
	}

	l.trades = append(l.trades, trade)
	l.logger.Info("trade executed",
		zap.Time("timestamp", ts),
		zap.String("ticker", ticker),
		zap.String("action", string(trade.Action)),
		zap.Int64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("commission", commission),
	)
	if l.onTrade != nil {
		l.onTrade(trade)
	}
	return nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// InitialCash returns the starting cash balance.
func (l *Ledger) InitialCash() float64 {
	return l.initialCash
}

// CommissionRate returns the per-side commission rate.
func (l *Ledger) CommissionRate() float64 {
	return l.commissionRate
}

// Position returns the held quantity for a ticker, zero when flat.
func (l *Ledger) Position(ticker string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.positions[ticker]
}

// Positions returns a copy of all open positions.
func (l *Ledger) Positions() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int64, len(l.positions))
	for ticker, quantity := range l.positions {
		out[ticker] = quantity
	}
	return out
}

// TradeHistory returns a copy of all executed trades in execution order.
func (l *Ledger) TradeHistory() []core.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// TradeCount returns the number of executed trades.
func (l *Ledger) TradeCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// TradesSince returns a copy of the trades executed after the first n,
// in execution order. It lets callers that poll between snapshots take
// just the tail instead of copying the whole history each time.
func (l *Ledger) TradesSince(n int) []core.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.trades) {
		return nil
	}
	out := make([]core.Trade, len(l.trades)-n)
	copy(out, l.trades[n:])
	return out
}

// EquityCurve returns a copy of the equity curve, one point per processed
// snapshot.
func (l *Ledger) EquityCurve() []float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]float64, len(l.equityCurve))
	copy(out, l.equityCurve)
	return out
}

// Equity returns the most recent equity point, or initial cash before the
// first update.
func (l *Ledger) Equity() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.equityCurve) == 0 {
		return l.initialCash
	}
	return l.equityCurve[len(l.equityCurve)-1]
}
