package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mistikfr/ibkr-execution-engine/internal/config"
	"github.com/mistikfr/ibkr-execution-engine/internal/engine"
	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/paper"
	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
	"github.com/mistikfr/ibkr-execution-engine/internal/strategy"
)

// scriptedBars swaps the close sequence between cycles so the round trip is deterministic.
type scriptedBars struct {
	closes []float64
}

func (s *scriptedBars) Bars(_ context.Context, symbol string, _ int) ([]signal.Bar, error) {
	out := make([]signal.Bar, len(s.closes))
	for i, c := range s.closes {
		out[i] = signal.Bar{Symbol: symbol, Close: c}
	}
	return out, nil
}

func TestPaperRoundTripRecordsFills(t *testing.T) {
	cfg := &config.Config{
		Strategy:    config.Strategy{Params: config.StrategyParams{OscPeriod: 3, TrendPeriod: 4}},
		Risk:        config.Risk{AllocationFraction: 0.33, CashFloor: 2000},
		Instruments: []config.Instrument{{Symbol: "EURUSD"}},
	}

	account := paper.NewAccount(10000, 0)
	ledger := paper.NewLedger(0)
	venue := paper.NewBroker(account, ledger)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	exec := execution.NewExecutor(logger, venue)
	strat := strategy.Build(cfg.Strategy.Mode, strategy.Params{})

	// Falling closes put the previous oscillator reading in the panic zone;
	// the final up bar crosses the buy entry and opens a long. The 33%
	// allocation of 10000 spends 3300, so floor(3300/0.97) = 3402 units.
	prices := &scriptedBars{closes: []float64{1.00, 0.99, 0.98, 0.97, 0.96, 0.97}}
	eng := engine.New(cfg, strat, prices, venue, exec, zerolog.New(&buf))
	ctx := context.Background()

	eng.RunCycle(ctx)
	if pos := account.Position("EURUSD"); pos != 3402 {
		t.Fatalf("expected long position 3402 after entry cycle, got %.0f", pos)
	}

	// Rising closes pin the oscillator at 100; the open long takes profit.
	prices.closes = []float64{1.00, 0.99, 0.98, 0.99, 1.00, 1.01}
	eng.RunCycle(ctx)
	if pos := account.Position("EURUSD"); pos != 0 {
		t.Fatalf("expected flat after exit cycle, got %.0f", pos)
	}

	fills := ledger.Snapshot()
	if len(fills) != 2 {
		t.Fatalf("expected entry and exit fills, got %d", len(fills))
	}
	if fills[0].Side != execution.Buy || fills[1].Side != execution.Sell {
		t.Fatalf("unexpected fill sides: %+v", fills)
	}
	if fills[0].Qty != 3402 || fills[1].Qty != 3402 {
		t.Fatalf("exit must unwind the full entry quantity: %+v", fills)
	}
	if account.RealizedPnL() <= 0 {
		t.Fatalf("round trip bought at 0.97 and sold at 1.01, expected profit, got %.2f", account.RealizedPnL())
	}
	if !strings.Contains(buf.String(), "submit order") {
		t.Fatalf("expected executor log output, got %s", buf.String())
	}
}
