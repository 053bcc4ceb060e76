// Package strategy contains the trend classifier and the decision rules that
// turn indicator snapshots into trading actions.
package strategy

import (
	"strings"
	"time"

	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
)

// Snapshot carries everything one evaluation needs. Position is the signed
// broker quantity at the start of the cycle; the core never mutates it.
type Snapshot struct {
	Symbol   string
	Price    float64
	OscPrev  float64
	OscCurr  float64
	TrendAvg float64
	Position float64
	Ts       time.Time
}

// Strategy defines behaviour shared by strategy implementations used by the engine.
type Strategy interface {
	Evaluate(snap Snapshot) signal.Decision
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	BuyEntry    float64
	SellEntry   float64
	ExitLong    float64
	ExitShort   float64
	PanicBuy    float64
	PanicSell   float64
	TrendBuffer float64
	LongOnly    bool
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "reversion", "mean_reversion", "both":
		return NewMeanReversion(params)
	case "long_only":
		params.LongOnly = true
		return NewMeanReversion(params)
	default:
		return NewMeanReversion(params)
	}
}
