// Package broker defines the capability interfaces the decision core needs
// from a brokerage and hosts the live adapter implementing them.
package broker

import (
	"context"

	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
)

// PriceSource supplies historical closed bars for one instrument, oldest first.
// Implementations may return fewer bars than requested; callers treat a short
// history as insufficient data, not as an error.
type PriceSource interface {
	Bars(ctx context.Context, symbol string, lookback int) ([]signal.Bar, error)
}

// AccountSource reports home-currency cash and the signed open position per
// instrument (positive long, negative short, zero flat).
type AccountSource interface {
	CashBalance(ctx context.Context) (float64, error)
	Position(ctx context.Context, symbol string) (float64, error)
}
