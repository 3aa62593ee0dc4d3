// Package yahoo implements a feed.HistoryProvider backed by the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"go.uber.org/zap"
)

const (
	baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// validSymbol matches stock symbols like AAPL, MSFT, 600519.SS, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// validRanges are the period values the chart API accepts.
var validRanges = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "10y": {}, "60d": {}, "max": {},
}

// Yahoo fetches historical OHLCV from Yahoo Finance.
type Yahoo struct {
	client *http.Client
	logger *zap.Logger
}

// New creates a new Yahoo provider.
func New(logger *zap.Logger) *Yahoo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// FetchHistory fetches candle history for all tickers. A ticker with no
// data is logged and skipped; the call fails with ErrDataUnavailable only
// when no ticker yields any data.
func (y *Yahoo) FetchHistory(ctx context.Context, tickers []string, interval, period string) (*feed.History, error) {
	if _, ok := validRanges[period]; !ok {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unsupported period: %s", period))
	}

	history := feed.NewHistory()
	for _, ticker := range tickers {
		candles, err := y.fetchTicker(ctx, ticker, interval, period)
		if err != nil {
			y.logger.Warn("no data for ticker, skipping",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}
		history.Add(ticker, candles)
	}

	if history.Len() == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no data for any of %d tickers", len(tickers)))
	}

	y.logger.Info("history loaded",
		zap.Int("requested", len(tickers)),
		zap.Int("loaded", history.Len()),
		zap.String("interval", interval),
		zap.String("period", period),
	)
	return history, nil
}

// fetchTicker fetches one ticker's candle series.
func (y *Yahoo) fetchTicker(ctx context.Context, ticker, interval, period string) ([]core.Candle, error) {
	if err := validateSymbol(ticker); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		baseURL, ticker, y.toYahooInterval(interval), period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data for ticker: %s", ticker)
	}

	r := result.Chart.Result[0]
	timestamps := r.Timestamp
	quotes := r.Indicators.Quote[0]

	candles := make([]core.Candle, 0, len(timestamps))
	for i, ts := range timestamps {
		if quotes.Open[i] == nil {
			continue // Skip missing data
		}
		candles = append(candles, core.Candle{
			Ticker:   ticker,
			Interval: interval,
			Open:     *quotes.Open[i],
			High:     *quotes.High[i],
			Low:      *quotes.Low[i],
			Close:    *quotes.Close[i],
			Volume:   int64(*quotes.Volume[i]),
			Time:     time.Unix(int64(ts), 0).UTC(),
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no usable candles for ticker: %s", ticker)
	}
	return candles, nil
}

func (y *Yahoo) toYahooInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "1h", "1d", "1wk":
		return interval
	default:
		return "1d"
	}
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
