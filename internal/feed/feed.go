// Package feed provides historical market data loading and the candle
// stream that replays it in timestamp order.
package feed

import (
	"context"
	"sort"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

// HistoryProvider fetches historical OHLCV data for a set of tickers.
// Implementations skip tickers with no data and fail only when nothing
// could be loaded at all.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, tickers []string, interval, period string) (*History, error)
}

// History holds per-ticker candle series in a deterministic ticker order.
// The order tickers are added is the order snapshots iterate them.
type History struct {
	tickers []string
	candles map[string][]core.Candle
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{candles: make(map[string][]core.Candle)}
}

// Add registers a ticker's candle series. Empty series are ignored.
// Candles must already be ordered by ascending timestamp.
func (h *History) Add(ticker string, candles []core.Candle) {
	if len(candles) == 0 {
		return
	}
	if _, exists := h.candles[ticker]; !exists {
		h.tickers = append(h.tickers, ticker)
	}
	h.candles[ticker] = candles
}

// Tickers returns the registered tickers in registration order.
func (h *History) Tickers() []string {
	out := make([]string, len(h.tickers))
	copy(out, h.tickers)
	return out
}

// Candles returns the series for a ticker, or nil if absent.
func (h *History) Candles(ticker string) []core.Candle {
	return h.candles[ticker]
}

// Len returns the number of tickers with data.
func (h *History) Len() int {
	return len(h.tickers)
}

// Stream replays a History as a lazy, forward-only sequence of snapshots
// with strictly increasing timestamps. The timestamp domain is the union
// of all per-ticker timestamps: a ticker with no candle at a timestamp is
// absent from that snapshot, so consumers must tolerate gaps. A Stream is
// consumed by exactly one engine and cannot be restarted.
type Stream struct {
	history    *History
	timestamps []time.Time
	cursors    map[string]int
	pos        int
}

// NewStream builds a stream over already-fetched history. It fails with
// ErrDataUnavailable when no ticker has any data, rather than yielding an
// empty stream silently.
func NewStream(history *History) (*Stream, error) {
	if history == nil || history.Len() == 0 {
		return nil, core.ErrDataUnavailable
	}

	// Union of all per-ticker timestamps, deduplicated and sorted
	seen := make(map[int64]struct{})
	var timestamps []time.Time
	for _, ticker := range history.tickers {
		for _, candle := range history.candles[ticker] {
			key := candle.Time.UnixNano()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			timestamps = append(timestamps, candle.Time)
		}
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	return &Stream{
		history:    history,
		timestamps: timestamps,
		cursors:    make(map[string]int, history.Len()),
	}, nil
}

// Next produces the snapshot for the next timestamp, or false at end of
// stream. Ticker order within a snapshot follows History registration
// order so replays are deterministic.
func (s *Stream) Next() (core.Snapshot, bool) {
	for s.pos < len(s.timestamps) {
		ts := s.timestamps[s.pos]
		s.pos++

		snapshot := core.Snapshot{
			Time:    ts,
			Candles: make(map[string]core.Candle),
		}
		for _, ticker := range s.history.tickers {
			series := s.history.candles[ticker]
			cursor := s.cursors[ticker]
			// Per-ticker series are ordered, so a single cursor walk
			// finds the candle at ts if it exists.
			for cursor < len(series) && series[cursor].Time.Before(ts) {
				cursor++
			}
			if cursor < len(series) && series[cursor].Time.Equal(ts) {
				snapshot.Tickers = append(snapshot.Tickers, ticker)
				snapshot.Candles[ticker] = series[cursor]
				cursor++
			}
			s.cursors[ticker] = cursor
		}

		if len(snapshot.Tickers) > 0 {
			return snapshot, true
		}
	}
	return core.Snapshot{}, false
}

// Remaining reports how many timestamps have not yet been produced.
func (s *Stream) Remaining() int {
	return len(s.timestamps) - s.pos
}
