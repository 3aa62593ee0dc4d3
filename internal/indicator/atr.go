package indicator

import "math"

// ATR calculates the Average True Range using Wilder's smoothing.
// highs, lows and closes must be the same length. Returns slice of
// length: len(closes) - period + 1.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n < period || len(highs) != n || len(lows) != n {
		return []float64{}
	}

	// True range series; the first bar has no prior close
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	// Seed with a simple mean, then Wilder smoothing
	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)

	result := make([]float64, 0, n-period+1)
	result = append(result, atr)
	for i := period; i < n; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		result = append(result, atr)
	}

	return result
}
