// Package execution handles order lifecycle and interaction with the brokerage venue.
package execution

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mistikfr/ibkr-execution-engine/internal/metrics"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy indicates a long-opening or short-covering order.
	Buy Side = "BUY"
	// Sell indicates a long-closing or short-opening order.
	Sell Side = "SELL"
)

// Order represents a market order placement request.
type Order struct {
	Symbol string
	Side   Side
	Qty    int64
	Price  float64 // reference price for logging/paper fills; venue fills at market
	GTC    bool    // good-till-cancelled so resting orders survive disconnects
}

// Fill records an executed order for ledgers and recorders.
type Fill struct {
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Qty    int64     `json:"qty"`
	Price  float64   `json:"price"`
	Ts     time.Time `json:"ts"`
}

// Sink routes validated orders to a venue (live brokerage or paper account).
type Sink interface {
	SubmitMarket(ctx context.Context, order Order) error
}

// Executor validates orders and forwards them to the configured sink.
type Executor struct {
	log  zerolog.Logger
	sink Sink
}

// NewExecutor wires a zerolog logger and an order sink.
func NewExecutor(log zerolog.Logger, sink Sink) *Executor {
	return &Executor{log: log, sink: sink}
}

// Submit routes one order. Submission failures are returned to the caller so
// the scheduler can isolate them per instrument; they are never fatal here.
func (e *Executor) Submit(ctx context.Context, order Order) error {
	if order.Qty <= 0 {
		return errors.New("order quantity must be positive")
	}
	if order.Side != Buy && order.Side != Sell {
		return errors.New("unknown order side")
	}
	e.log.Info().
		Str("sym", order.Symbol).
		Str("side", string(order.Side)).
		Int64("qty", order.Qty).
		Float64("px", order.Price).
		Msg("submit order")
	if err := e.sink.SubmitMarket(ctx, order); err != nil {
		return err
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	return nil
}
