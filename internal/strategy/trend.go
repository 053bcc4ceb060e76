package strategy

// Label is the buffered trend classification of price against the trend average.
type Label string

const (
	// StrongBull means price is above the trend average by more than the buffer.
	StrongBull Label = "STRONG_BULL"
	// StrongBear means price is below the trend average by more than the buffer.
	StrongBear Label = "STRONG_BEAR"
	// Neutral means price is hugging the trend average inside the buffer band.
	Neutral Label = "NEUTRAL"
)

// Trend describes where price sits relative to the trend average.
type Trend struct {
	Label Label
	Bull  bool // simple binary read: price strictly above the trend average
}

// ClassifyTrend buckets price against the trend average using a symmetric
// percentage buffer. The buffer suppresses false trend confirmations while
// price oscillates within noise distance of the average.
func ClassifyTrend(price, trendAvg, buffer float64) Trend {
	bullLine := trendAvg * (1 + buffer)
	bearLine := trendAvg * (1 - buffer)

	t := Trend{Label: Neutral, Bull: price > trendAvg}
	switch {
	case price > bullLine:
		t.Label = StrongBull
	case price < bearLine:
		t.Label = StrongBear
	}
	return t
}
