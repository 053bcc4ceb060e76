package strategy

import "testing"

func TestClassifyTrendBands(t *testing.T) {
	cases := []struct {
		name   string
		price  float64
		avg    float64
		buffer float64
		label  Label
		bull   bool
	}{
		{"well above band", 1.1050, 1.1000, 0.002, StrongBull, true},
		{"well below band", 1.0950, 1.1000, 0.002, StrongBear, false},
		{"hugging above", 1.1010, 1.1000, 0.002, Neutral, true},
		{"hugging below", 1.0990, 1.1000, 0.002, Neutral, false},
		{"exactly on average", 1.1000, 1.1000, 0.002, Neutral, false},
		{"zero buffer above", 1.1001, 1.1000, 0, StrongBull, true},
		{"zero buffer equal", 1.1000, 1.1000, 0, Neutral, false},
	}
	for _, tc := range cases {
		got := ClassifyTrend(tc.price, tc.avg, tc.buffer)
		if got.Label != tc.label {
			t.Fatalf("%s: expected label %s, got %s", tc.name, tc.label, got.Label)
		}
		if got.Bull != tc.bull {
			t.Fatalf("%s: expected bull=%v, got %v", tc.name, tc.bull, got.Bull)
		}
	}
}

func TestClassifyTrendBandIsSymmetric(t *testing.T) {
	avg, buffer := 100.0, 0.01
	up := ClassifyTrend(avg*(1+buffer)+1e-9, avg, buffer)
	down := ClassifyTrend(avg*(1-buffer)-1e-9, avg, buffer)
	if up.Label != StrongBull || down.Label != StrongBear {
		t.Fatalf("expected symmetric strong labels just outside the band, got %s / %s", up.Label, down.Label)
	}
}
