package paper

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
)

// SyntheticBars replays a deterministic sinusoidal price path so the paper
// binary can run offline. The path is anchored to wall-clock bar indices, so
// successive polls see the window advance the way a live feed would. The sine
// guarantees the oscillator sweeps both extremes and price crosses its own
// trend average, which is exactly what the decision rules need exercised.
type SyntheticBars struct {
	Base      float64       // mid price, per-symbol offset applied on top
	Amplitude float64       // fractional swing around the mid
	CycleBars int           // bars per full sine cycle
	Step      time.Duration // bar duration
}

// NewSyntheticBars returns a generator with defaults suitable for FX-scale prices.
func NewSyntheticBars() *SyntheticBars {
	return &SyntheticBars{
		Base:      1.1000,
		Amplitude: 0.02,
		CycleBars: 60,
		Step:      time.Minute,
	}
}

// Bars generates the lookback most recent bars for the symbol, oldest first.
func (s *SyntheticBars) Bars(ctx context.Context, symbol string, lookback int) ([]signal.Bar, error) {
	if lookback <= 0 {
		return nil, nil
	}
	offset := float64(seed(symbol)%100) / 10000 // small per-symbol phase/price shift
	last := time.Now().Truncate(s.Step)
	lastIdx := last.UnixNano() / int64(s.Step)

	out := make([]signal.Bar, lookback)
	for i := 0; i < lookback; i++ {
		idx := lastIdx - int64(lookback-1-i)
		phase := 2 * math.Pi * (float64(idx)/float64(s.CycleBars) + offset*100)
		price := (s.Base + offset) * (1 + s.Amplitude*math.Sin(phase))
		out[i] = signal.Bar{
			Symbol: symbol,
			Close:  price,
			Ts:     last.Add(-time.Duration(lookback-1-i) * s.Step),
		}
	}
	return out, nil
}

func seed(symbol string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return h.Sum32()
}
