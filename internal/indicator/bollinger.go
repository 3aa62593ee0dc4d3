package indicator

import "math"

// Bands holds aligned Bollinger Band series: a moving-average center line
// plus upper/lower lines at k standard deviations.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger calculates Bollinger Bands over a rolling window. The standard
// deviation is the population deviation of each window, matching the usual
// charting convention. All three series have length len(prices)-period+1.
func Bollinger(prices []float64, period int, k float64) Bands {
	if period <= 0 || len(prices) < period {
		return Bands{}
	}

	n := len(prices) - period + 1
	b := Bands{
		Middle: make([]float64, 0, n),
		Upper:  make([]float64, 0, n),
		Lower:  make([]float64, 0, n),
	}

	for i := 0; i < n; i++ {
		window := prices[i : i+period]

		var sum float64
		for _, p := range window {
			sum += p
		}
		mean := sum / float64(period)

		var variance float64
		for _, p := range window {
			variance += (p - mean) * (p - mean)
		}
		std := math.Sqrt(variance / float64(period))

		b.Middle = append(b.Middle, mean)
		b.Upper = append(b.Upper, mean+k*std)
		b.Lower = append(b.Lower, mean-k*std)
	}

	return b
}
