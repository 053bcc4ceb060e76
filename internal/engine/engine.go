// Package engine runs the snapshot-polling evaluation loop: fetch bars,
// compute indicators, evaluate the strategy, size and route orders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mistikfr/ibkr-execution-engine/internal/broker"
	"github.com/mistikfr/ibkr-execution-engine/internal/config"
	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/indicator"
	"github.com/mistikfr/ibkr-execution-engine/internal/metrics"
	"github.com/mistikfr/ibkr-execution-engine/internal/risk"
	"github.com/mistikfr/ibkr-execution-engine/internal/signal"
	"github.com/mistikfr/ibkr-execution-engine/internal/strategy"
)

// Watch-zone bounds: oscillator readings beyond these get a heads-up log line
// before any threshold actually crosses.
const (
	watchLow  = 35.0
	watchHigh = 65.0
)

const (
	skipFetchError       = "fetch_error"
	skipInsufficientData = "insufficient_data"
	skipLiquidity        = "liquidity"
)

// Engine evaluates every configured instrument once per polling tick. The core
// decision path is pure; all I/O goes through the injected capabilities, and a
// failure for one instrument never aborts the rest of the tick.
type Engine struct {
	log          zerolog.Logger
	strat        strategy.Strategy
	sizer        risk.Sizer
	prices       broker.PriceSource
	account      broker.AccountSource
	exec         *execution.Executor
	instruments  []config.Instrument
	oscPeriod    int
	trendPeriod  int
	lookback     int
	pollInterval time.Duration
}

// New assembles an engine from configuration and injected collaborators,
// substituting defaults for unset knobs.
func New(cfg *config.Config, strat strategy.Strategy, prices broker.PriceSource, account broker.AccountSource, exec *execution.Executor, log zerolog.Logger) *Engine {
	oscPeriod := cfg.Strategy.Params.OscPeriod
	if oscPeriod <= 0 {
		oscPeriod = 14
	}
	trendPeriod := cfg.Strategy.Params.TrendPeriod
	if trendPeriod <= 0 {
		trendPeriod = 200
	}
	lookback := cfg.Engine.LookbackBars
	if lookback < trendPeriod+1 {
		lookback = trendPeriod + 1
	}
	pollInterval := time.Duration(cfg.Engine.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	allocation := cfg.Risk.AllocationFraction
	if allocation <= 0 {
		allocation = 0.33
	}
	floor := cfg.Risk.CashFloor
	if floor <= 0 {
		floor = 2000
	}

	return &Engine{
		log:     log,
		strat:   strat,
		sizer:   risk.Sizer{Allocation: allocation, Limits: risk.Limits{CashFloor: floor, MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade}},
		prices:  prices,
		account: account,
		exec:    exec,

		instruments:  cfg.Instruments,
		oscPeriod:    oscPeriod,
		trendPeriod:  trendPeriod,
		lookback:     lookback,
		pollInterval: pollInterval,
	}
}

// Run evaluates all instruments, then repeats every poll interval until the
// context is canceled. The interval also serves as the minimum delay between
// ticks demanded by upstream data-provider rate limits.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info().
		Str("strategy", e.strat.Name()).
		Int("instruments", len(e.instruments)).
		Dur("poll", e.pollInterval).
		Msg("engine started")

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		e.RunCycle(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle performs one evaluation pass over every instrument. Errors are
// logged and isolated per instrument.
func (e *Engine) RunCycle(ctx context.Context) {
	for _, inst := range e.instruments {
		if err := e.Evaluate(ctx, inst); err != nil {
			e.log.Error().Err(err).Str("sym", inst.Symbol).Msg("evaluation failed")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Evaluate runs the full decision path for one instrument: history, indicators,
// trend classification, decision, sizing, routing.
func (e *Engine) Evaluate(ctx context.Context, inst config.Instrument) error {
	metrics.EvaluationsTotal.WithLabelValues(inst.Symbol).Inc()

	bars, err := e.prices.Bars(ctx, inst.Symbol, e.lookback)
	if err != nil {
		metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipFetchError).Inc()
		return fmt.Errorf("fetch bars: %w", err)
	}

	series, err := indicator.Compute(signal.Closes(bars), e.oscPeriod, e.trendPeriod)
	if errors.Is(err, indicator.ErrInsufficientData) {
		metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipInsufficientData).Inc()
		e.log.Info().Str("sym", inst.Symbol).Int("bars", len(bars)).Msg("buffering data for trend window")
		return nil
	}
	if err != nil {
		return fmt.Errorf("compute indicators: %w", err)
	}
	if !series.Ready() {
		metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipInsufficientData).Inc()
		e.log.Info().Str("sym", inst.Symbol).Msg("oscillator warming up")
		return nil
	}

	last := bars[len(bars)-1]
	oscCurr, trendAvg := series.Last()
	oscPrev := series.Prev()

	position, err := e.account.Position(ctx, inst.Symbol)
	if err != nil {
		metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipFetchError).Inc()
		return fmt.Errorf("fetch position: %w", err)
	}

	if oscCurr < watchLow || oscCurr > watchHigh {
		e.log.Info().
			Str("sym", inst.Symbol).
			Float64("prev", oscPrev).
			Float64("curr", oscCurr).
			Msg("watch: oscillator near threshold")
	}
	e.log.Debug().
		Str("sym", inst.Symbol).
		Float64("px", last.Close).
		Float64("osc", oscCurr).
		Float64("trend", trendAvg).
		Float64("pos", position).
		Msg("cycle state")

	decision := e.strat.Evaluate(strategy.Snapshot{
		Symbol:   inst.Symbol,
		Price:    last.Close,
		OscPrev:  oscPrev,
		OscCurr:  oscCurr,
		TrendAvg: trendAvg,
		Position: position,
		Ts:       last.Ts,
	})
	metrics.DecisionsTotal.WithLabelValues(inst.Symbol, string(decision.Action)).Inc()

	switch {
	case decision.Action.IsEntry():
		cash, err := e.account.CashBalance(ctx)
		if err != nil {
			metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipFetchError).Inc()
			return fmt.Errorf("fetch cash balance: %w", err)
		}
		qty, ok := e.sizer.SizeEntry(cash, last.Close, inst.HomeBase)
		if !ok {
			metrics.SkipsTotal.WithLabelValues(inst.Symbol, skipLiquidity).Inc()
			e.log.Warn().
				Str("sym", inst.Symbol).
				Float64("cash", cash).
				Str("reason", decision.Reason).
				Msg("entry skipped: insufficient liquidity")
			return nil
		}
		side := execution.Buy
		if decision.Action == signal.EntryShort {
			side = execution.Sell
		}
		e.log.Info().Str("sym", inst.Symbol).Str("action", string(decision.Action)).Str("reason", decision.Reason).Msg("signal")
		return e.exec.Submit(ctx, execution.Order{Symbol: inst.Symbol, Side: side, Qty: qty, Price: last.Close, GTC: true})

	case decision.Action.IsExit():
		qty := risk.SizeExit(position)
		if qty <= 0 {
			return nil
		}
		side := execution.Sell
		if decision.Action == signal.ExitShort {
			side = execution.Buy
		}
		e.log.Info().Str("sym", inst.Symbol).Str("action", string(decision.Action)).Str("reason", decision.Reason).Msg("signal")
		return e.exec.Submit(ctx, execution.Order{Symbol: inst.Symbol, Side: side, Qty: qty, Price: last.Close, GTC: true})
	}

	e.log.Debug().Str("sym", inst.Symbol).Str("reason", decision.Reason).Msg("hold")
	return nil
}
