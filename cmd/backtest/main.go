// Command backtest replays historical candles through the signal
// engine and risk governor and reports the resulting performance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/ajitpratap0/cryptocore/backtest"
	"github.com/ajitpratap0/cryptocore/config"
	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/execution"
	"github.com/ajitpratap0/cryptocore/market"
	"github.com/ajitpratap0/cryptocore/risk"
	"github.com/ajitpratap0/cryptocore/signal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	configPath = flag.String("config", "", "path to config file")
	exchange   = flag.String("exchange", "binance", "exchange to source candles from")
	symbolsArg = flag.String("symbols", "", "comma-separated symbols, overrides config")
	startArg   = flag.String("start", "", "ISO-8601 start date or datetime (required)")
	endArg     = flag.String("end", "", "ISO-8601 end date or datetime (required)")
	timeframe  = flag.String("timeframe", "", "overrides config strategy timeframe")
	outputJSON = flag.String("output-json", "", "write the JSON report here instead of stdout")
	verbose    = flag.Bool("verbose", false, "enable debug logging")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backtest:", err)
		os.Exit(1)
	}
}

func run() error {
	if *startArg == "" || *endArg == "" {
		return fmt.Errorf("--start and --end are required")
	}

	if *exchange != "binance" && *exchange != "binanceus" {
		return fmt.Errorf("unsupported exchange %q", *exchange)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	start, err := parseBoundary(*startArg, false)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parseBoundary(*endArg, true)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	symbols := cfg.Symbols
	if *symbolsArg != "" {
		symbols = parseSymbols(*symbolsArg)
	}

	tf := cfg.Strategy.Timeframe
	if *timeframe != "" {
		tf = *timeframe
	}
	timeframeSeconds, err := core.ParseTimeframeSeconds(tf)
	if err != nil {
		return fmt.Errorf("--timeframe: %w", err)
	}

	binanceClient, usedExchange, err := initExchange(context.Background(), cfg, *exchange)
	if err != nil {
		return fmt.Errorf("init exchange: %w", err)
	}
	if usedExchange != "binance" {
		fmt.Fprintf(os.Stderr, "Note: falling back to exchange %q due to API restrictions.\n", usedExchange)
	}
	source := market.NewBinanceSource(binanceClient)

	warmup := cfg.Strategy.OHLCVLimit
	if warmup < 50 {
		warmup = 50
	}
	fetchFrom := start.Add(-time.Duration(warmup) * time.Duration(timeframeSeconds) * time.Second)

	candles := make(map[string][]core.Candle, len(symbols))
	for _, symbol := range symbols {
		binanceSymbol := strings.ReplaceAll(symbol, "/", "")
		window, err := source.FetchHistory(context.Background(), binanceSymbol, tf, fetchFrom, end)
		if err != nil {
			return fmt.Errorf("fetch candles for %s: %w", symbol, err)
		}
		candles[symbol] = window
		log.Info().Str("symbol", symbol).Int("candles", len(window)).Msg("loaded history")
	}

	simCfg := backtest.Config{
		Symbols:      symbols,
		Timeframe:    tf,
		Start:        start,
		End:          end,
		WarmupWindow: warmup,
		StartingCash: cfg.Paper.StartingCashUSDT,
		Engine: signal.New(signal.Config{
			OHLCVLimit:      cfg.Strategy.OHLCVLimit,
			RSIPeriod:       cfg.Strategy.RSIPeriod,
			RSIOversold:     cfg.Strategy.RSIOversold,
			RSIOverbought:   cfg.Strategy.RSIOverbought,
			MACDFast:        cfg.Strategy.MACDFast,
			MACDSlow:        cfg.Strategy.MACDSlow,
			MACDSignal:      cfg.Strategy.MACDSignal,
			VolumeMAPeriod:  cfg.Strategy.VolumeMAPeriod,
			VolumeSpikeMult: cfg.Strategy.VolumeSpikeMult,
		}),
		Governor: risk.New(risk.Limits{
			DailyDrawdownLimit: cfg.Risk.DailyDrawdownLimitPct,
			MaxPositionPct:     cfg.Risk.MaxPositionPct,
			StopLossPct:        cfg.Risk.StopLossPct,
			TakeProfitPct:      cfg.Risk.TakeProfitPct,
		}),
		PaperBackend: execution.NewPaperBackend(cfg.Paper.FeePct),
	}

	result, err := backtest.Run(context.Background(), simCfg, candles)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	report := buildReport(symbols, tf, start, end, result)
	return writeReport(report)
}

// binanceUSBaseURL is used when binance.com rejects requests from a
// restricted region (HTTP 451).
const binanceUSBaseURL = "https://api.binance.us"

// initExchange builds a Binance client and probes connectivity.
// Binance's global API is unreachable from some regions (HTTP 451); if
// exchangeID is "binance" and that happens, it falls back to binance.us
// automatically and reports the exchange id actually used.
func initExchange(ctx context.Context, cfg *config.Config, exchangeID string) (*binance.Client, string, error) {
	client := binance.NewClient(cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	if cfg.Exchange.Testnet {
		binance.UseTestnet = true
	}
	if exchangeID == "binanceus" {
		client.BaseURL = binanceUSBaseURL
	}

	_, err := client.NewExchangeInfoService().Do(ctx)
	if err == nil {
		return client, exchangeID, nil
	}
	if exchangeID != "binance" {
		return nil, "", fmt.Errorf("connect to %s: %w", exchangeID, err)
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "451") && !strings.Contains(msg, "restricted location") {
		return nil, "", fmt.Errorf("connect to binance: %w", err)
	}

	client.BaseURL = binanceUSBaseURL
	if _, err := client.NewExchangeInfoService().Do(ctx); err != nil {
		return nil, "", fmt.Errorf("connect to binanceus fallback: %w", err)
	}
	return client, "binanceus", nil
}

// parseBoundary parses an ISO-8601 date or datetime, normalizing a
// trailing "Z" to UTC. A date-only value is treated as the start of
// that day unless endOfDay is set, in which case it is the last instant
// of that day.
func parseBoundary(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			return t.UTC().Add(24*time.Hour - time.Nanosecond), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date or datetime %q", value)
}

func parseSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// report is the JSON document written to --output-json or stdout.
type report struct {
	Symbols  []string           `json:"symbols"`
	Timeframe string            `json:"timeframe"`
	StartUTC time.Time          `json:"start_utc"`
	EndUTC   time.Time          `json:"end_utc"`
	Metrics  backtest.Metrics   `json:"metrics"`
	Trades   []reportTrade      `json:"trades"`
}

// reportTrade matches TradeRecord's fields minus mode, per the backtest
// output contract.
type reportTrade struct {
	Timestamp   time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Side        core.Side `json:"side"`
	Amount      float64   `json:"amount"`
	Price       float64   `json:"price"`
	Fee         float64   `json:"fee"`
	RealizedPnL float64   `json:"realized_pnl"`
	Reason      string    `json:"reason"`
	OrderID     string    `json:"order_id,omitempty"`
}

func buildReport(symbols []string, timeframe string, start, end time.Time, result backtest.Result) report {
	trades := make([]reportTrade, len(result.Trades))
	for i, t := range result.Trades {
		trades[i] = reportTrade{
			Timestamp:   t.Timestamp,
			Symbol:      t.Symbol,
			Side:        t.Side,
			Amount:      t.Amount,
			Price:       t.Price,
			Fee:         t.Fee,
			RealizedPnL: t.RealizedPnL,
			Reason:      t.Reason,
			OrderID:     t.OrderID,
		}
	}
	return report{
		Symbols:   symbols,
		Timeframe: timeframe,
		StartUTC:  start,
		EndUTC:    end,
		Metrics:   result.Metrics,
		Trades:    trades,
	}
}

func writeReport(r report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if *outputJSON == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(*outputJSON, out, 0o600); err != nil {
		return fmt.Errorf("write report to %s: %w", *outputJSON, err)
	}
	log.Info().Str("file", *outputJSON).Msg("report written")
	return nil
}
