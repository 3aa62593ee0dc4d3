package core

import "time"

// Candle represents one OHLCV observation for a ticker at a timestamp.
// Candles are immutable once produced by a feed.
type Candle struct {
	Ticker   string
	Interval string // "1m", "1h", "1d"
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	Time     time.Time
}

// IsValid checks if the candle has required fields
func (c Candle) IsValid() bool {
	return c.Ticker != "" && c.Close > 0
}

// Snapshot holds all tickers' candles sharing one timestamp. Tickers with
// no data at the timestamp are simply absent. Tickers preserves the feed's
// registration order so replays are deterministic.
type Snapshot struct {
	Time    time.Time
	Tickers []string
	Candles map[string]Candle
}

// Prices returns the close price of every ticker present in the snapshot.
func (s Snapshot) Prices() map[string]float64 {
	prices := make(map[string]float64, len(s.Candles))
	for ticker, candle := range s.Candles {
		prices[ticker] = candle.Close
	}
	return prices
}

// Action represents a trade direction
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Signal is a strategy's proposed trade. It is a proposal only: the
// portfolio ledger validates and executes it, or rejects it.
type Signal struct {
	Action   Action
	Quantity int64
}

// Trade records one executed, fully-filled market order. Records are
// append-only and immutable once written.
type Trade struct {
	Time       time.Time `json:"timestamp"`
	Ticker     string    `json:"ticker"`
	Action     Action    `json:"action"`
	Quantity   int64     `json:"quantity"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
	// CashDelta is the signed change to cash: negative for a BUY
	// (cost plus commission), positive for a SELL (revenue minus commission).
	CashDelta float64 `json:"cash_delta"`
}
