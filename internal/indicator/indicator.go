// Package indicator computes the oscillator and trend series the strategy layer consumes.
package indicator

import (
	"errors"
	"math"
)

// ErrInsufficientData marks a price history too short to seed the trend window.
// Callers skip the instrument for the cycle; this is never fatal.
var ErrInsufficientData = errors.New("insufficient history for trend window")

// FlatOscillator is the documented tie-break when gain and loss averages are
// both zero (perfectly flat prices). 50 is neutral: it sits strictly between
// every entry/exit threshold pair, so it can never produce a crossing on its own.
const FlatOscillator = 50.0

// Series holds the oscillator and trend values aligned to the input bars.
// Oscillator entries before the window is complete are NaN.
type Series struct {
	Oscillator []float64
	Trend      []float64
}

// Len returns the number of aligned entries.
func (s Series) Len() int { return len(s.Trend) }

// Last returns the final oscillator and trend values.
func (s Series) Last() (osc, trend float64) {
	n := s.Len()
	return s.Oscillator[n-1], s.Trend[n-1]
}

// Prev returns the next-to-last oscillator value.
func (s Series) Prev() float64 { return s.Oscillator[s.Len()-2] }

// Ready reports whether the last two oscillator values are usable for crossing detection.
func (s Series) Ready() bool {
	if s.Len() < 2 {
		return false
	}
	return !math.IsNaN(s.Prev()) && !math.IsNaN(s.Oscillator[s.Len()-1])
}

// Compute derives the oscillator (simple-average RSI variant) and the
// exponential trend average from closing prices. It returns
// ErrInsufficientData when fewer than trendPeriod+1 closes are supplied.
func Compute(closes []float64, oscPeriod, trendPeriod int) (Series, error) {
	if oscPeriod <= 0 || trendPeriod <= 0 {
		return Series{}, errors.New("periods must be positive")
	}
	if len(closes) < trendPeriod+1 {
		return Series{}, ErrInsufficientData
	}
	return Series{
		Oscillator: oscillator(closes, oscPeriod),
		Trend:      trendAverage(closes, trendPeriod),
	}, nil
}

// oscillator returns the RSI-style series: per-step deltas split into gains and
// losses, simple moving averages over the window, 100 - 100/(1+rs).
// Positions before the window has oscPeriod deltas are NaN.
func oscillator(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	out[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			out[i] = math.NaN()
			continue
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = FlatOscillator
		case avgLoss == 0:
			// Infinite relative strength collapses to exactly 100.
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// trendAverage is a recursive exponential average seeded with the first close.
// The seed biases early output toward the first price; that bias is accepted,
// which is why callers demand trendPeriod+1 bars before trusting the series.
func trendAverage(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	alpha := 2.0 / (float64(period) + 1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}
