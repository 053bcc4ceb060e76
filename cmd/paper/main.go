// Binary paper runs the identical decision core against a simulated account
// and a deterministic synthetic price path. No external connectivity.
package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/mistikfr/ibkr-execution-engine/internal/config"
	"github.com/mistikfr/ibkr-execution-engine/internal/engine"
	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/metrics"
	"github.com/mistikfr/ibkr-execution-engine/internal/paper"
	"github.com/mistikfr/ibkr-execution-engine/internal/strategy"
	"github.com/mistikfr/ibkr-execution-engine/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := util.NewLogger("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startingCash := cfg.Paper.StartingCash
	if startingCash <= 0 {
		startingCash = 10000
	}
	account := paper.NewAccount(startingCash, 0)

	var recorder paper.FillRecorder = paper.NewLedger(0)
	if cfg.Paper.FillsPath != "" {
		jsonl, err := paper.NewJSONLRecorder(cfg.Paper.FillsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open fills recorder")
		}
		defer jsonl.Close()
		recorder = jsonl
	}
	venue := paper.NewBroker(account, recorder)

	strat := strategy.Build(cfg.Strategy.Mode, strategy.Params{
		BuyEntry:    cfg.Strategy.Params.BuyEntry,
		SellEntry:   cfg.Strategy.Params.SellEntry,
		ExitLong:    cfg.Strategy.Params.ExitLong,
		ExitShort:   cfg.Strategy.Params.ExitShort,
		PanicBuy:    cfg.Strategy.Params.PanicBuy,
		PanicSell:   cfg.Strategy.Params.PanicSell,
		TrendBuffer: cfg.Strategy.Params.TrendBuffer,
	})
	exec := execution.NewExecutor(log, venue)

	eng := engine.New(cfg, strat, paper.NewSyntheticBars(), venue, exec, log)
	log.Info().Float64("cash", startingCash).Msg("paper engine started")
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("engine stopped")
	}

	snap := account.Snapshot(nil)
	log.Info().
		Float64("cash", snap.Cash).
		Float64("realized_pnl", snap.RealizedPnL).
		Msg("shutting down")
}
