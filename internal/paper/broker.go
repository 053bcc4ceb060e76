package paper

import (
	"context"
	"time"

	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
)

// Broker glues the simulated account to the engine's account and order
// capabilities. Orders fill immediately at the order's reference price.
type Broker struct {
	account  *Account
	recorder FillRecorder
	now      func() time.Time
}

// NewBroker wraps an account with an optional fill recorder.
func NewBroker(account *Account, recorder FillRecorder) *Broker {
	return &Broker{account: account, recorder: recorder, now: time.Now}
}

// CashBalance reports the simulated free cash.
func (b *Broker) CashBalance(ctx context.Context) (float64, error) {
	return b.account.AvailableCash(), nil
}

// Position reports the signed simulated position for the symbol.
func (b *Broker) Position(ctx context.Context, symbol string) (float64, error) {
	return b.account.Position(symbol), nil
}

// SubmitMarket fills the order against the account and records the fill.
func (b *Broker) SubmitMarket(ctx context.Context, order execution.Order) error {
	if err := b.account.MarketFill(order.Symbol, order.Side, float64(order.Qty), order.Price); err != nil {
		return err
	}
	if b.recorder != nil {
		b.recorder.Record(execution.Fill{
			Symbol: order.Symbol,
			Side:   order.Side,
			Qty:    order.Qty,
			Price:  order.Price,
			Ts:     b.now(),
		})
	}
	return nil
}
