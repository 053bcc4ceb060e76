package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mistikfr/ibkr-execution-engine/internal/config"
	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
	"github.com/mistikfr/ibkr-execution-engine/internal/strategy"
)

type fakePrices struct {
	bars map[string][]float64
	err  map[string]error
}

func (f *fakePrices) Bars(_ context.Context, symbol string, _ int) ([]signal.Bar, error) {
	if err := f.err[symbol]; err != nil {
		return nil, err
	}
	closes := f.bars[symbol]
	out := make([]signal.Bar, len(closes))
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = signal.Bar{Symbol: symbol, Close: c, Ts: base.Add(time.Duration(i) * 15 * time.Minute)}
	}
	return out, nil
}

type fakeAccount struct {
	cash      float64
	positions map[string]float64
}

func (f *fakeAccount) CashBalance(context.Context) (float64, error) { return f.cash, nil }
func (f *fakeAccount) Position(_ context.Context, symbol string) (float64, error) {
	return f.positions[symbol], nil
}

type fakeSink struct{ orders []execution.Order }

func (f *fakeSink) SubmitMarket(_ context.Context, o execution.Order) error {
	f.orders = append(f.orders, o)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Strategy: config.Strategy{Params: config.StrategyParams{OscPeriod: 3, TrendPeriod: 4}},
		Risk:     config.Risk{AllocationFraction: 0.33, CashFloor: 2000},
		Instruments: []config.Instrument{
			{Symbol: "USDJPY", HomeBase: true},
		},
	}
}

func newTestEngine(cfg *config.Config, prices *fakePrices, account *fakeAccount, sink *fakeSink) *Engine {
	strat := strategy.NewMeanReversion(strategy.Params{})
	exec := execution.NewExecutor(zerolog.Nop(), sink)
	return New(cfg, strat, prices, account, exec, zerolog.Nop())
}

// Falling closes leave the oscillator at 0 (panic zone), then one up bar lifts
// it to ~33, crossing the default buy entry of 30 with the panic override.
var entryCloses = []float64{100, 99, 98, 97, 96, 97}

// Rising closes pin the oscillator at 100, past the long exit target of 65.
var exitCloses = []float64{100, 99, 98, 99, 100, 101}

func TestEvaluateEntryThenExitRoundTrip(t *testing.T) {
	prices := &fakePrices{bars: map[string][]float64{"USDJPY": entryCloses}}
	account := &fakeAccount{cash: 10000, positions: map[string]float64{}}
	sink := &fakeSink{}
	eng := newTestEngine(testConfig(), prices, account, sink)
	ctx := context.Background()

	if err := eng.Evaluate(ctx, config.Instrument{Symbol: "USDJPY", HomeBase: true}); err != nil {
		t.Fatalf("entry cycle returned error: %v", err)
	}
	if len(sink.orders) != 1 {
		t.Fatalf("expected one entry order, got %d", len(sink.orders))
	}
	entry := sink.orders[0]
	if entry.Side != execution.Buy || entry.Qty != 3300 {
		t.Fatalf("expected BUY 3300 (33%% of 10000, home-currency base), got %s %d", entry.Side, entry.Qty)
	}
	if !entry.GTC {
		t.Fatalf("expected GTC entry order")
	}

	// Next cycle: position open, oscillator past the exit target.
	prices.bars["USDJPY"] = exitCloses
	account.positions["USDJPY"] = 3300
	if err := eng.Evaluate(ctx, config.Instrument{Symbol: "USDJPY", HomeBase: true}); err != nil {
		t.Fatalf("exit cycle returned error: %v", err)
	}
	if len(sink.orders) != 2 {
		t.Fatalf("expected exit order, got %d orders", len(sink.orders))
	}
	exit := sink.orders[1]
	if exit.Side != execution.Sell || exit.Qty != 3300 {
		t.Fatalf("expected SELL of full position 3300, got %s %d", exit.Side, exit.Qty)
	}
}

func TestEvaluateInsufficientHistorySkips(t *testing.T) {
	prices := &fakePrices{bars: map[string][]float64{"USDJPY": {100, 99, 98}}}
	account := &fakeAccount{cash: 10000, positions: map[string]float64{}}
	sink := &fakeSink{}
	eng := newTestEngine(testConfig(), prices, account, sink)

	if err := eng.Evaluate(context.Background(), config.Instrument{Symbol: "USDJPY", HomeBase: true}); err != nil {
		t.Fatalf("insufficient history must not be an error, got %v", err)
	}
	if len(sink.orders) != 0 {
		t.Fatalf("expected no orders on insufficient history")
	}
}

func TestEvaluateLiquidityFloorSkipsEntry(t *testing.T) {
	prices := &fakePrices{bars: map[string][]float64{"USDJPY": entryCloses}}
	account := &fakeAccount{cash: 1500, positions: map[string]float64{}}
	sink := &fakeSink{}
	eng := newTestEngine(testConfig(), prices, account, sink)

	if err := eng.Evaluate(context.Background(), config.Instrument{Symbol: "USDJPY", HomeBase: true}); err != nil {
		t.Fatalf("liquidity skip must not be an error, got %v", err)
	}
	if len(sink.orders) != 0 {
		t.Fatalf("expected entry suppressed below the cash floor")
	}
}

func TestRunCycleIsolatesPerInstrumentFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Instruments = []config.Instrument{
		{Symbol: "EURUSD"},
		{Symbol: "USDJPY", HomeBase: true},
	}
	prices := &fakePrices{
		bars: map[string][]float64{"USDJPY": entryCloses},
		err:  map[string]error{"EURUSD": errors.New("no data feed")},
	}
	account := &fakeAccount{cash: 10000, positions: map[string]float64{}}
	sink := &fakeSink{}
	eng := newTestEngine(cfg, prices, account, sink)

	eng.RunCycle(context.Background())

	if len(sink.orders) != 1 || sink.orders[0].Symbol != "USDJPY" {
		t.Fatalf("expected the healthy instrument to still trade, got %+v", sink.orders)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	prices := &fakePrices{bars: map[string][]float64{"USDJPY": {100, 99, 98}}}
	account := &fakeAccount{cash: 10000, positions: map[string]float64{}}
	cfg := testConfig()
	cfg.Engine.PollIntervalMs = 5
	eng := newTestEngine(cfg, prices, account, &fakeSink{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := eng.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
