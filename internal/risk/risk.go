// Package risk encodes guard-rails and sizing rules applied before any order is routed.
package risk

import "github.com/shopspring/decimal"

// Limits gates whether an entry may be sized at all.
type Limits struct {
	// CashFloor is the minimum free cash required before opening a position.
	CashFloor float64
	// MaxNotionalPerTrade caps the home-currency spend per entry; zero disables the cap.
	MaxNotionalPerTrade float64
}

// AllowCash reports whether free cash clears the liquidity floor.
func (l Limits) AllowCash(cash float64) bool { return cash >= l.CashFloor }

// AllowNotional reports whether a planned spend fits under the per-trade cap.
func (l Limits) AllowNotional(notional float64) bool {
	return l.MaxNotionalPerTrade <= 0 || notional <= l.MaxNotionalPerTrade
}

// Sizer converts free cash into integer order quantities.
type Sizer struct {
	// Allocation is the fraction of free cash deployed per entry.
	Allocation float64
	Limits     Limits
}

// SizeEntry returns the unit quantity for a new position, or ok=false when the
// cycle should skip: cash under the floor, spend over the notional cap, or a
// resulting quantity of zero. Skips are no-ops, never errors.
//
// homeBase marks instruments whose base currency is the account's home
// currency; their quantity is denominated directly in that currency, so the
// spend itself is the quantity. All other instruments divide the spend by
// price to convert it into instrument units.
func (s Sizer) SizeEntry(cash, price float64, homeBase bool) (int64, bool) {
	if !s.Limits.AllowCash(cash) {
		return 0, false
	}
	spendable := decimal.NewFromFloat(cash).Mul(decimal.NewFromFloat(s.Allocation))
	if !s.Limits.AllowNotional(spendable.InexactFloat64()) {
		return 0, false
	}

	qty := spendable
	if !homeBase {
		if price <= 0 {
			return 0, false
		}
		qty = spendable.Div(decimal.NewFromFloat(price))
	}
	units := qty.Floor().IntPart()
	if units <= 0 {
		return 0, false
	}
	return units, true
}

// SizeExit returns the full absolute position as an order quantity; partial
// exits are not supported.
func SizeExit(position float64) int64 {
	qty := decimal.NewFromFloat(position).Abs().Floor().IntPart()
	return qty
}
