package indicator

import (
	"math"
	"testing"
)

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{2, 4, 6, 8, 10}

	sma := SMA(prices, 2)

	want := []float64{3, 5, 7, 9}
	if len(sma) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(sma))
	}
	for i, v := range want {
		if sma[i] != v {
			t.Errorf("sma[%d] = %f, want %f", i, sma[i], v)
		}
	}
}

func TestSMA_WindowEqualsLength(t *testing.T) {
	sma := SMA([]float64{3, 6, 9}, 3)

	if len(sma) != 1 || sma[0] != 6 {
		t.Errorf("expected [6], got %v", sma)
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	if sma := SMA([]float64{10, 11}, 5); len(sma) != 0 {
		t.Errorf("expected empty slice, got %d values", len(sma))
	}
}

func TestEMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := EMA(prices, 3)

	if len(ema) != 4 {
		t.Fatalf("expected 4 values, got %d", len(ema))
	}

	// Seeded with the SMA of the first window.
	if ema[0] != 11 {
		t.Errorf("first value should equal the seed SMA, got %f", ema[0])
	}

	// alpha = 2/(3+1) = 0.5, so ema[1] = 0.5*13 + 0.5*11 = 12.
	if !almostEqual(ema[1], 12, 1e-9) {
		t.Errorf("ema[1] = %f, want 12", ema[1])
	}

	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("monotone input should produce increasing EMA, ema[%d]=%f <= ema[%d]=%f",
				i, ema[i], i-1, ema[i-1])
		}
	}
}

func TestEMA_NotEnoughData(t *testing.T) {
	if ema := EMA([]float64{10, 11}, 5); len(ema) != 0 {
		t.Errorf("expected empty slice, got %d values", len(ema))
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
