package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
)

// Alpaca adapts the brokerage REST API to the engine's capability interfaces:
// PriceSource and AccountSource for reads, execution.Sink for order routing.
type Alpaca struct {
	trading *alpaca.Client
	data    *marketdata.Client
	tf      marketdata.TimeFrame
	tfMin   int
	feed    marketdata.Feed
	log     zerolog.Logger
}

// AlpacaOpts carries connectivity settings for the live adapter.
type AlpacaOpts struct {
	APIKey          string
	APISecret       string
	BaseURL         string
	DataBaseURL     string
	DataFeed        string
	BarTimeframeMin int
}

// NewAlpaca builds the adapter. Credentials are validated lazily by the first call.
func NewAlpaca(opts AlpacaOpts, log zerolog.Logger) *Alpaca {
	if opts.BarTimeframeMin <= 0 {
		opts.BarTimeframeMin = 15
	}
	return &Alpaca{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    opts.APIKey,
			APISecret: opts.APISecret,
			BaseURL:   opts.BaseURL,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    opts.APIKey,
			APISecret: opts.APISecret,
			BaseURL:   opts.DataBaseURL,
		}),
		tf:    marketdata.NewTimeFrame(opts.BarTimeframeMin, marketdata.Min),
		tfMin: opts.BarTimeframeMin,
		feed:  marketdata.Feed(opts.DataFeed),
		log:   log,
	}
}

// Bars fetches up to lookback recent closed bars, oldest first. The start is
// padded to three times the nominal span so weekends and halts still leave
// enough bars to fill the window.
func (a *Alpaca) Bars(ctx context.Context, symbol string, lookback int) ([]signal.Bar, error) {
	span := time.Duration(lookback*a.tfMin) * time.Minute
	req := marketdata.GetBarsRequest{
		TimeFrame:  a.tf,
		Start:      time.Now().Add(-3 * span),
		TotalLimit: 3 * lookback,
		Feed:       a.feed,
	}
	bars, err := a.data.GetBars(symbol, req)
	if err != nil {
		return nil, fmt.Errorf("get bars %s: %w", symbol, err)
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	out := make([]signal.Bar, len(bars))
	for i, b := range bars {
		out[i] = signal.Bar{Symbol: symbol, Close: b.Close, Ts: b.Timestamp}
	}
	return out, nil
}

// CashBalance returns the account's home-currency cash.
func (a *Alpaca) CashBalance(ctx context.Context) (float64, error) {
	acct, err := a.trading.GetAccount()
	if err != nil {
		return 0, fmt.Errorf("get account: %w", err)
	}
	return acct.Cash.InexactFloat64(), nil
}

// Position returns the signed open quantity for the symbol, zero when flat.
func (a *Alpaca) Position(ctx context.Context, symbol string) (float64, error) {
	pos, err := a.trading.GetPosition(symbol)
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return 0, nil
		}
		return 0, fmt.Errorf("get position %s: %w", symbol, err)
	}
	return pos.Qty.InexactFloat64(), nil
}

// SubmitMarket routes a market order, GTC when requested so resting orders
// survive disconnects.
func (a *Alpaca) SubmitMarket(ctx context.Context, order execution.Order) error {
	qty := decimal.NewFromInt(order.Qty)
	side := alpaca.Buy
	if order.Side == execution.Sell {
		side = alpaca.Sell
	}
	tif := alpaca.Day
	if order.GTC {
		tif = alpaca.GTC
	}
	placed, err := a.trading.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      order.Symbol,
		Qty:         &qty,
		Side:        side,
		Type:        alpaca.Market,
		TimeInForce: tif,
	})
	if err != nil {
		return fmt.Errorf("place order %s %s: %w", order.Side, order.Symbol, err)
	}
	a.log.Info().
		Str("sym", order.Symbol).
		Str("side", string(order.Side)).
		Int64("qty", order.Qty).
		Str("order_id", placed.ID).
		Str("status", string(placed.Status)).
		Msg("order routed")
	return nil
}
