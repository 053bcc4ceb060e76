package strategy

import (
	"fmt"
	"math"

	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
)

// MeanReversion trades oscillator threshold crossings filtered by the trend
// label. Entries demand a strict crossing plus either a strong trend or a
// panic override (previous oscillator reading at an extreme); exits fire on
// easier level checks so gains are locked before the oscillator fully reverses.
type MeanReversion struct {
	params Params
}

// NewMeanReversion builds the strategy, substituting defaults for unset knobs.
func NewMeanReversion(params Params) *MeanReversion {
	if params.BuyEntry <= 0 {
		params.BuyEntry = 30
	}
	if params.SellEntry <= 0 {
		params.SellEntry = 70
	}
	if params.ExitLong <= 0 {
		params.ExitLong = 65
	}
	if params.ExitShort <= 0 {
		params.ExitShort = 35
	}
	if params.PanicBuy <= 0 {
		params.PanicBuy = 15
	}
	if params.PanicSell <= 0 {
		params.PanicSell = 85
	}
	if params.TrendBuffer < 0 {
		params.TrendBuffer = 0
	}
	return &MeanReversion{params: params}
}

// Name returns the configured identifier for logging.
func (s *MeanReversion) Name() string { return "MeanReversion" }

// Evaluate maps one snapshot to exactly one decision. State lives entirely in
// the signed position: flat permits entries, an open position permits only the
// matching exit. Undefined oscillator readings always hold.
func (s *MeanReversion) Evaluate(snap Snapshot) signal.Decision {
	hold := func(reason string) signal.Decision {
		return signal.Decision{Symbol: snap.Symbol, Action: signal.Hold, Reason: reason, Ts: snap.Ts}
	}
	if math.IsNaN(snap.OscPrev) || math.IsNaN(snap.OscCurr) {
		return hold("oscillator warming up")
	}

	p := s.params
	switch {
	case snap.Position > 0:
		if snap.OscCurr >= p.ExitLong {
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.ExitLong,
				Reason: fmt.Sprintf("take profit: osc %.1f >= %.1f", snap.OscCurr, p.ExitLong),
				Ts:     snap.Ts,
			}
		}
		return hold("holding long")

	case snap.Position < 0:
		if snap.OscCurr <= p.ExitShort {
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.ExitShort,
				Reason: fmt.Sprintf("take profit: osc %.1f <= %.1f", snap.OscCurr, p.ExitShort),
				Ts:     snap.Ts,
			}
		}
		return hold("holding short")
	}

	trend := ClassifyTrend(snap.Price, snap.TrendAvg, p.TrendBuffer)

	if crossedUp(snap.OscPrev, snap.OscCurr, p.BuyEntry) {
		panicEntry := snap.OscPrev < p.PanicBuy
		switch {
		case trend.Label == StrongBull:
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.EntryLong,
				Reason: fmt.Sprintf("bullish dip: osc %.1f->%.1f, strong bull", snap.OscPrev, snap.OscCurr),
				Ts:     snap.Ts,
			}
		case panicEntry:
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.EntryLong,
				Reason: fmt.Sprintf("panic reversal: prev osc %.1f below %.1f", snap.OscPrev, p.PanicBuy),
				Ts:     snap.Ts,
			}
		case trend.Bull:
			// Price above the average but inside the buffer band.
			return hold("buffer protect: weak bull, entry suppressed")
		default:
			return hold("trend filter: bearish, long entry rejected")
		}
	}

	if crossedDown(snap.OscPrev, snap.OscCurr, p.SellEntry) {
		// The safety switch outranks every override, panic included.
		if p.LongOnly {
			return hold("long-only mode: short entry blocked")
		}
		panicEntry := snap.OscPrev > p.PanicSell
		switch {
		case trend.Label == StrongBear:
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.EntryShort,
				Reason: fmt.Sprintf("bearish pop: osc %.1f->%.1f, strong bear", snap.OscPrev, snap.OscCurr),
				Ts:     snap.Ts,
			}
		case panicEntry:
			return signal.Decision{
				Symbol: snap.Symbol,
				Action: signal.EntryShort,
				Reason: fmt.Sprintf("panic reversal: prev osc %.1f above %.1f", snap.OscPrev, p.PanicSell),
				Ts:     snap.Ts,
			}
		case !trend.Bull:
			return hold("buffer protect: weak bear, entry suppressed")
		default:
			return hold("trend filter: bullish, short entry rejected")
		}
	}

	return hold("no crossing")
}

// crossedUp reports a strict upward crossing: previous strictly below the
// threshold, current on or past it. Level checks without the crossing would
// re-trigger every cycle while the oscillator sits past the threshold.
func crossedUp(prev, curr, threshold float64) bool {
	return prev < threshold && curr >= threshold
}

// crossedDown is the mirrored strict downward crossing.
func crossedDown(prev, curr, threshold float64) bool {
	return prev > threshold && curr <= threshold
}
