package engine

import (
	"math"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/portfolio"
)

// Summary holds performance statistics for a completed run.
type Summary struct {
	Steps         int     `json:"steps"`
	InitialCash   float64 `json:"initial_cash"`
	FinalEquity   float64 `json:"final_equity"`
	TotalReturn   float64 `json:"total_return"` // Net return percentage
	TotalTrades   int     `json:"total_trades"`
	RoundTrips    int     `json:"round_trips"`
	WinningTrips  int     `json:"winning_trips"`
	LosingTrips   int     `json:"losing_trips"`
	WinRate       float64 `json:"win_rate"`     // Percentage of profitable round trips
	MaxDrawdown   float64 `json:"max_drawdown"` // Largest peak-to-trough decline, percentage
	SharpeRatio   float64 `json:"sharpe_ratio"` // Risk-adjusted return (annualized)
	OpenPositions int     `json:"open_positions"`
}

// roundTrip is one completed entry/exit cycle on a single ticker.
type roundTrip struct {
	entryPrice float64
	exitPrice  float64
}

func (r roundTrip) ret() float64 {
	if r.entryPrice == 0 {
		return 0
	}
	return (r.exitPrice - r.entryPrice) / r.entryPrice
}

// Summarize computes statistics from a ledger after a run.
func Summarize(ledger *portfolio.Ledger, steps int) Summary {
	trades := ledger.TradeHistory()
	curve := ledger.EquityCurve()
	initial := ledger.InitialCash()
	final := ledger.Equity()

	trips := roundTrips(trades)
	var winning, losing int
	returns := make([]float64, 0, len(trips))
	for _, rt := range trips {
		r := rt.ret()
		returns = append(returns, r)
		if r > 0 {
			winning++
		} else {
			losing++
		}
	}

	var winRate float64
	if len(trips) > 0 {
		winRate = float64(winning) / float64(len(trips)) * 100
	}

	var totalReturn float64
	if initial > 0 {
		totalReturn = (final - initial) / initial * 100
	}

	return Summary{
		Steps:         steps,
		InitialCash:   initial,
		FinalEquity:   final,
		TotalReturn:   totalReturn,
		TotalTrades:   len(trades),
		RoundTrips:    len(trips),
		WinningTrips:  winning,
		LosingTrips:   losing,
		WinRate:       winRate,
		MaxDrawdown:   maxDrawdown(curve) * 100,
		SharpeRatio:   sharpeRatio(stepReturns(curve)),
		OpenPositions: len(ledger.Positions()),
	}
}

// roundTrips pairs each sell with the preceding buy on the same ticker.
// Strategies here hold at most one open position per ticker, so the
// pairing is unambiguous.
func roundTrips(trades []core.Trade) []roundTrip {
	open := make(map[string]float64)
	var trips []roundTrip

	for _, t := range trades {
		switch t.Action {
		case core.ActionBuy:
			if _, held := open[t.Ticker]; !held {
				open[t.Ticker] = t.Price
			}
		case core.ActionSell:
			if entry, held := open[t.Ticker]; held {
				trips = append(trips, roundTrip{entryPrice: entry, exitPrice: t.Price})
				delete(open, t.Ticker)
			}
		}
	}
	return trips
}

// stepReturns converts an equity curve into per-step fractional returns.
func stepReturns(curve []float64) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (curve[i]-curve[i-1])/curve[i-1])
	}
	return out
}

// maxDrawdown finds the largest peak-to-trough decline of the equity curve.
func maxDrawdown(curve []float64) float64 {
	var maxDD float64
	var peak float64

	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio computes risk-adjusted return from per-step returns.
// Assumes a risk-free rate of 0 and annualizes over ~252 trading days.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))
	if stdDev == 0 {
		return 0
	}

	return (mean * 252) / (stdDev * math.Sqrt(252))
}
