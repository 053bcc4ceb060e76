// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Broker describes brokerage connectivity. API credentials come from the
// environment (APCA_API_KEY_ID / APCA_API_SECRET_KEY), never from this file.
type Broker struct {
	BaseURL     string `yaml:"base_url"`
	DataBaseURL string `yaml:"data_base_url"`
	DataFeed    string `yaml:"data_feed"`
}

// Instrument pre-maps a tradable symbol to its quoting convention so the sizer
// never has to resolve it at decision time.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	// HomeBase is true when the instrument's base currency is the account's
	// home currency; quantities are then denominated directly in that currency.
	HomeBase bool `yaml:"home_base"`
}

// Engine tunes the polling scheduler.
type Engine struct {
	PollIntervalMs  int `yaml:"poll_interval_ms"`
	LookbackBars    int `yaml:"lookback_bars"`
	BarTimeframeMin int `yaml:"bar_timeframe_min"`
}

// StrategyParams groups tunable knobs for the decision rules.
type StrategyParams struct {
	OscPeriod   int     `yaml:"osc_period"`
	TrendPeriod int     `yaml:"trend_period"`
	BuyEntry    float64 `yaml:"buy_entry"`
	SellEntry   float64 `yaml:"sell_entry"`
	ExitLong    float64 `yaml:"exit_long"`
	ExitShort   float64 `yaml:"exit_short"`
	PanicBuy    float64 `yaml:"panic_buy"`
	PanicSell   float64 `yaml:"panic_sell"`
	TrendBuffer float64 `yaml:"trend_buffer"`
}

// Strategy specifies which strategy mode is active along with the parameter bundle.
type Strategy struct {
	Mode   string         `yaml:"mode"`
	Params StrategyParams `yaml:"params"`
}

// Risk encodes sizing and liquidity guard-rails.
type Risk struct {
	AllocationFraction  float64 `yaml:"allocation_fraction"`
	CashFloor           float64 `yaml:"cash_floor"`
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
}

// Paper captures paper-trading account settings.
type Paper struct {
	StartingCash float64 `yaml:"starting_cash"`
	FillsPath    string  `yaml:"fills_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App          `yaml:"app"`
	Broker      Broker       `yaml:"broker"`
	Engine      Engine       `yaml:"engine"`
	Strategy    Strategy     `yaml:"strategy"`
	Risk        Risk         `yaml:"risk"`
	Instruments []Instrument `yaml:"instruments"`
	Paper       Paper        `yaml:"paper"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
