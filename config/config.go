// Package config loads and validates the application configuration
// (YAML file plus environment overrides, via viper) shared by the
// trading loop and backtester entry points.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Mode     string         `mapstructure:"mode"` // "paper" or "live"
	Symbols  []string       `mapstructure:"symbols"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Paper    PaperConfig    `mapstructure:"paper"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
}

// ExchangeConfig names the exchange and holds its live-mode credentials.
type ExchangeConfig struct {
	Name      string `mapstructure:"name"` // "binance"
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Testnet   bool   `mapstructure:"testnet"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// StrategyConfig holds the signal engine's indicator parameters and
// candle window size.
type StrategyConfig struct {
	Timeframe       string  `mapstructure:"timeframe"`
	OHLCVLimit      int     `mapstructure:"ohlcv_limit"`
	RSIPeriod       int     `mapstructure:"rsi_period"`
	RSIOversold     float64 `mapstructure:"rsi_oversold"`
	RSIOverbought   float64 `mapstructure:"rsi_overbought"`
	MACDFast        int     `mapstructure:"macd_fast"`
	MACDSlow        int     `mapstructure:"macd_slow"`
	MACDSignal      int     `mapstructure:"macd_signal"`
	VolumeMAPeriod  int     `mapstructure:"volume_ma_period"`
	VolumeSpikeMult float64 `mapstructure:"volume_spike_mult"`
}

// RiskConfig holds the risk governor's limits.
type RiskConfig struct {
	MaxPositionPct        float64 `mapstructure:"max_position_pct"`
	StopLossPct           float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct         float64 `mapstructure:"take_profit_pct"`
	DailyDrawdownLimitPct float64 `mapstructure:"daily_drawdown_limit_pct"`
}

// PaperConfig holds the paper-trading simulator's starting balance and
// fee model.
type PaperConfig struct {
	StartingCashUSDT float64 `mapstructure:"starting_cash_usdt"`
	FeePct           float64 `mapstructure:"fee_pct"`
}

// RedisConfig holds the market-data cache's connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_seconds"`
}

// PostgresConfig holds the trade log sink's connection string. This
// substitutes the flat-file trade log with a durable, queryable store.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// TelegramConfig holds the notifier's bot credentials. This substitutes
// a webhook-based notifier with a push-based chat bot.
type TelegramConfig struct {
	BotToken string  `mapstructure:"bot_token"`
	ChatIDs  []int64 `mapstructure:"chat_ids"`
}

// RuntimeConfig holds loop-level settings not owned by any one
// component.
type RuntimeConfig struct {
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	LogLevel            string `mapstructure:"log_level"`
}

// Load reads configuration from configPath (or the default search
// path when empty), applies environment overrides, fills defaults and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CRYPTOCORE")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "paper")
	v.SetDefault("symbols", []string{"BTC/USDT"})

	v.SetDefault("exchange.name", "binance")
	v.SetDefault("exchange.testnet", true)
	v.SetDefault("exchange.timeout_ms", 10000)

	v.SetDefault("strategy.timeframe", "1h")
	v.SetDefault("strategy.ohlcv_limit", 200)
	v.SetDefault("strategy.rsi_period", 14)
	v.SetDefault("strategy.rsi_oversold", 30.0)
	v.SetDefault("strategy.rsi_overbought", 70.0)
	v.SetDefault("strategy.macd_fast", 12)
	v.SetDefault("strategy.macd_slow", 26)
	v.SetDefault("strategy.macd_signal", 9)
	v.SetDefault("strategy.volume_ma_period", 20)
	v.SetDefault("strategy.volume_spike_mult", 1.2)

	v.SetDefault("risk.max_position_pct", 0.1)
	v.SetDefault("risk.stop_loss_pct", 0.02)
	v.SetDefault("risk.take_profit_pct", 0.04)
	v.SetDefault("risk.daily_drawdown_limit_pct", 0.05)

	v.SetDefault("paper.starting_cash_usdt", 10000.0)
	v.SetDefault("paper.fee_pct", 0.001)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_seconds", 60)

	v.SetDefault("runtime.poll_interval_seconds", 60)
	v.SetDefault("runtime.log_level", "info")
}
