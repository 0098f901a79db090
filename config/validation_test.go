package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Mode:    "paper",
		Symbols: []string{"BTC/USDT"},
		Exchange: ExchangeConfig{
			Name: "binance",
		},
		Strategy: StrategyConfig{
			Timeframe:       "1h",
			OHLCVLimit:      200,
			RSIPeriod:       14,
			RSIOversold:     30,
			RSIOverbought:   70,
			MACDFast:        12,
			MACDSlow:        26,
			MACDSignal:      9,
			VolumeMAPeriod:  20,
			VolumeSpikeMult: 1.2,
		},
		Risk: RiskConfig{
			MaxPositionPct:        0.1,
			StopLossPct:           0.02,
			TakeProfitPct:         0.04,
			DailyDrawdownLimitPct: 0.05,
		},
		Paper: PaperConfig{
			StartingCashUSDT: 10000,
			FeePct:           0.001,
		},
		Runtime: RuntimeConfig{
			PollIntervalSeconds: 60,
			LogLevel:            "info",
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "sandbox"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode")
}

func TestValidateRejectsLowercaseSymbol(t *testing.T) {
	cfg := validConfig()
	cfg.Symbols = []string{"btc/usdt"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbols")
}

func TestValidateRejectsMixedQuoteCurrencies(t *testing.T) {
	cfg := validConfig()
	cfg.Symbols = []string{"BTC/USDT", "ETH/USDC"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same quote currency")
}

func TestValidateAcceptsSharedQuoteCurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Symbols = []string{"BTC/USDT", "ETH/USDT"}
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadTimeframe(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy.Timeframe = "1x"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeframe")
}

func TestValidateRejectsOhlcvLimitBelowFifty(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy.OHLCVLimit = 10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ohlcv_limit")
}

func TestValidateRejectsOutOfRangeRiskFraction(t *testing.T) {
	cfg := validConfig()
	cfg.Risk.StopLossPct = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_loss_pct")
}

func TestValidateLiveModeRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "live"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "api_secret")
}

func TestValidateLiveModeWithCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "live"
	cfg.Exchange.APIKey = "key"
	cfg.Exchange.APISecret = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidateAccumulatesMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "bogus"
	cfg.Symbols = nil
	err := cfg.Validate()
	require.Error(t, err)
	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(verrs), 2)
}
