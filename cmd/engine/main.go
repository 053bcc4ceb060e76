// Binary engine runs the live snapshot-polling execution loop against the brokerage.
package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mistikfr/ibkr-execution-engine/internal/broker"
	"github.com/mistikfr/ibkr-execution-engine/internal/config"
	"github.com/mistikfr/ibkr-execution-engine/internal/engine"
	"github.com/mistikfr/ibkr-execution-engine/internal/execution"
	"github.com/mistikfr/ibkr-execution-engine/internal/metrics"
	"github.com/mistikfr/ibkr-execution-engine/internal/strategy"
	"github.com/mistikfr/ibkr-execution-engine/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	_ = godotenv.Load() // best-effort; real env always wins

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

	apiKey := os.Getenv("APCA_API_KEY_ID")
	apiSecret := os.Getenv("APCA_API_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		log.Fatal().Msg("missing APCA_API_KEY_ID / APCA_API_SECRET_KEY in environment")
	}

	venue := broker.NewAlpaca(broker.AlpacaOpts{
		APIKey:          apiKey,
		APISecret:       apiSecret,
		BaseURL:         cfg.Broker.BaseURL,
		DataBaseURL:     cfg.Broker.DataBaseURL,
		DataFeed:        cfg.Broker.DataFeed,
		BarTimeframeMin: cfg.Engine.BarTimeframeMin,
	}, log)

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

	eng := engine.New(cfg, strat, venue, venue, exec, log)
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("engine stopped")
	}
	log.Info().Msg("shutting down")
}
