// Package paper simulates an account and venue so the decision core can run
// offline with no brokerage connectivity.
package paper

import (
	"errors"
	"math"
	"sync"

	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
)

// FillRecorder captures paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

const epsilon = 1e-9

// positionState tracks one symbol. Qty is signed: positive long, negative short.
type positionState struct {
	Qty     float64
	AvgCost float64
}

// Account tracks virtual cash, realized PnL, and signed per-symbol positions
// while trading in paper mode. Shorts credit sale proceeds to cash; margin
// requirements are not modeled.
type Account struct {
	mu           sync.Mutex
	startingCash float64
	cash         float64
	realizedPnL  float64
	maxAbsQty    float64
	positions    map[string]positionState
}

// PositionSnapshot exposes a read-only view of a single symbol position.
type PositionSnapshot struct {
	Qty         float64
	AvgCost     float64
	MarketValue float64
	Unrealized  float64
}

// Snapshot represents a thread-safe view of the account state, optionally marked to market using provided prices.
type Snapshot struct {
	Cash        float64
	RealizedPnL float64
	Equity      float64
	Positions   map[string]PositionSnapshot
}

// NewAccount constructs an account populated with starting cash and an
// optional cap on absolute position size per symbol.
func NewAccount(startingCash, maxAbsQtyPerSymbol float64) *Account {
	return &Account{
		startingCash: startingCash,
		cash:         startingCash,
		maxAbsQty:    maxAbsQtyPerSymbol,
		positions:    make(map[string]positionState),
	}
}

// StartingCash returns the initial bankroll used to compute drawdown.
func (a *Account) StartingCash() float64 { return a.startingCash }

// MarketFill executes a market order at the provided price, mutating balances
// if successful. Buys reduce cash, sells add to it; a fill against an open
// position realizes PnL on the closed quantity, and any excess flips the
// position to the opposite side at the fill price.
func (a *Account) MarketFill(symbol string, side execution.Side, qty, price float64) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	if price <= 0 {
		return errors.New("price must be positive")
	}
	dir := 1.0
	switch side {
	case execution.Buy:
	case execution.Sell:
		dir = -1
	default:
		return errors.New("unknown order side")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.positions[symbol]
	if side == execution.Buy && qty*price > a.cash+epsilon && state.Qty >= 0 {
		return errors.New("insufficient cash for buy")
	}
	newQty := state.Qty + dir*qty
	if a.maxAbsQty > 0 && math.Abs(newQty) > a.maxAbsQty+epsilon {
		return errors.New("position limit exceeded")
	}

	remaining := qty
	if state.Qty*dir < 0 {
		closeQty := math.Min(remaining, math.Abs(state.Qty))
		posDir := 1.0
		if state.Qty < 0 {
			posDir = -1
		}
		a.realizedPnL += (price - state.AvgCost) * closeQty * posDir
		remaining -= closeQty
		state.Qty += dir * closeQty
	}
	if remaining > epsilon {
		prevAbs := math.Abs(state.Qty)
		openQty := state.Qty + dir*remaining
		avg := price
		if prevAbs > epsilon {
			avg = (prevAbs*state.AvgCost + remaining*price) / math.Abs(openQty)
		}
		state = positionState{Qty: openQty, AvgCost: avg}
	}

	a.cash -= dir * qty * price
	if math.Abs(state.Qty) <= epsilon {
		delete(a.positions, symbol)
	} else {
		a.positions[symbol] = state
	}
	return nil
}

// Snapshot returns a copy of balances, optionally marked using the supplied prices map.
func (a *Account) Snapshot(prices map[string]float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	positions := make(map[string]PositionSnapshot, len(a.positions))
	equity := a.cash
	for sym, pos := range a.positions {
		mark := prices[sym]
		marketValue := pos.Qty * mark
		unrealized := (mark - pos.AvgCost) * pos.Qty
		if mark == 0 {
			marketValue = 0
			unrealized = 0
		}
		positions[sym] = PositionSnapshot{
			Qty:         pos.Qty,
			AvgCost:     pos.AvgCost,
			MarketValue: marketValue,
			Unrealized:  unrealized,
		}
		equity += marketValue
	}

	return Snapshot{
		Cash:        a.cash,
		RealizedPnL: a.realizedPnL,
		Equity:      equity,
		Positions:   positions,
	}
}

// AvailableCash reports free cash that can be deployed into new entries.
func (a *Account) AvailableCash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Position returns the signed position size for the supplied symbol.
func (a *Account) Position(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[symbol].Qty
}

// RealizedPnL returns total closed-trade profit and loss.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL
}
