package indicator

import "testing"

func TestATR_Calculate(t *testing.T) {
	highs := []float64{12, 14, 14}
	lows := []float64{10, 11, 12}
	closes := []float64{11, 13, 12}

	atr := ATR(highs, lows, closes, 2)

	// TR = [2, 3, 2]; seed = 2.5; wilder next = (2.5 + 2) / 2 = 2.25
	expected := []float64{2.5, 2.25}

	if len(atr) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(atr))
	}
	for i, want := range expected {
		if !almostEqual(atr[i], want, 1e-9) {
			t.Errorf("atr[%d] = %f, want %f", i, atr[i], want)
		}
	}
}

func TestATR_UsesGapFromPriorClose(t *testing.T) {
	// Second bar gaps above the first close, so TR comes from high-prevClose
	highs := []float64{11, 20}
	lows := []float64{10, 19}
	closes := []float64{10.5, 19.5}

	atr := ATR(highs, lows, closes, 2)

	if len(atr) != 1 {
		t.Fatalf("expected 1 value, got %d", len(atr))
	}
	// TR = [1, 9.5]; seed = 5.25
	if !almostEqual(atr[0], 5.25, 1e-9) {
		t.Errorf("atr[0] = %f, want 5.25", atr[0])
	}
}

func TestATR_NotEnoughData(t *testing.T) {
	if atr := ATR([]float64{12}, []float64{10}, []float64{11}, 2); len(atr) != 0 {
		t.Errorf("expected empty slice, got %d values", len(atr))
	}
}

func TestATR_MismatchedLengths(t *testing.T) {
	if atr := ATR([]float64{12, 13}, []float64{10}, []float64{11, 12}, 2); len(atr) != 0 {
		t.Errorf("expected empty slice for mismatched inputs, got %d values", len(atr))
	}
}
