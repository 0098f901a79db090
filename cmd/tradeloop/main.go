// Command tradeloop runs the live/paper trading loop against a single
// exchange account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/ajitpratap0/cryptocore/config"
	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/execution"
	"github.com/ajitpratap0/cryptocore/market"
	"github.com/ajitpratap0/cryptocore/notify"
	"github.com/ajitpratap0/cryptocore/risk"
	"github.com/ajitpratap0/cryptocore/signal"
	"github.com/ajitpratap0/cryptocore/tradelog"
	"github.com/ajitpratap0/cryptocore/tradeloop"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	once := flag.Bool("once", false, "run a single tick then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tradeloop:", err)
		os.Exit(1)
	}
	config.InitLogger(cfg.Runtime.LogLevel)

	loop, cleanup, err := buildLoop(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("tradeloop: failed to build loop")
	}
	defer cleanup()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := loop.Tick(ctx, time.Now().UTC()); err != nil {
			log.Fatal().Err(err).Msg("tradeloop: tick failed")
		}
		return
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gCtx)
	})

	if err := g.Wait(); err != nil && gCtx.Err() == nil {
		log.Fatal().Err(err).Msg("tradeloop: run failed")
	}
	log.Info().Msg("tradeloop: shutdown complete")
}

// buildLoop wires every dependency named in the config into a
// tradeloop.Loop, and returns a cleanup func that closes external
// connections.
func buildLoop(cfg *config.Config) (*tradeloop.Loop, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	notifier := buildNotifier(cfg)

	sink, sinkCleanup, err := buildSink(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	cleanups = append(cleanups, sinkCleanup)

	engine := signal.New(signal.Config{
		OHLCVLimit:      cfg.Strategy.OHLCVLimit,
		RSIPeriod:       cfg.Strategy.RSIPeriod,
		RSIOversold:     cfg.Strategy.RSIOversold,
		RSIOverbought:   cfg.Strategy.RSIOverbought,
		MACDFast:        cfg.Strategy.MACDFast,
		MACDSlow:        cfg.Strategy.MACDSlow,
		MACDSignal:      cfg.Strategy.MACDSignal,
		VolumeMAPeriod:  cfg.Strategy.VolumeMAPeriod,
		VolumeSpikeMult: cfg.Strategy.VolumeSpikeMult,
	})

	governor := risk.New(risk.Limits{
		DailyDrawdownLimit: cfg.Risk.DailyDrawdownLimitPct,
		MaxPositionPct:     cfg.Risk.MaxPositionPct,
		StopLossPct:        cfg.Risk.StopLossPct,
		TakeProfitPct:      cfg.Risk.TakeProfitPct,
	})

	exchangeBreaker := risk.NewBreaker("exchange", risk.DefaultExchangeBreakerSettings())

	binanceClient := binance.NewClient(cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	if cfg.Exchange.Testnet {
		binance.UseTestnet = true
	}
	source := market.NewBinanceSource(binanceClient)

	cache, cacheCleanup := buildCache(cfg)
	cleanups = append(cleanups, cacheCleanup)
	pipeline := market.New(source, cache, time.Duration(cfg.Redis.TTLSec)*time.Second)

	mode := core.ModePaper
	var backend tradeloop.Backend
	var freeQuote tradeloop.FreeQuoteSource
	startingCash := cfg.Paper.StartingCashUSDT

	if cfg.Mode == "live" {
		mode = core.ModeLive
		liveBackend := execution.NewLiveBackend(binanceClient, execution.DefaultRetryConfig(), execution.DefaultRateLimit())
		if err := liveBackend.LoadSymbolInfo(context.Background(), cfg.Symbols); err != nil {
			return nil, cleanup, fmt.Errorf("tradeloop: load symbol info: %w", err)
		}
		backend = tradeloop.LiveBackend{Inner: liveBackend}
		freeQuote = liveFreeQuote{backend: liveBackend, quoteAsset: "USDT"}
		startingCash = 0
	} else {
		backend = tradeloop.PaperBackend{Inner: execution.NewPaperBackend(cfg.Paper.FeePct)}
	}

	loopCfg := tradeloop.Config{
		Mode:            mode,
		Symbols:         cfg.Symbols,
		Timeframe:       cfg.Strategy.Timeframe,
		OHLCVLimit:      cfg.Strategy.OHLCVLimit,
		PollInterval:    time.Duration(cfg.Runtime.PollIntervalSeconds) * time.Second,
		Pipeline:        pipeline,
		Engine:          engine,
		Governor:        governor,
		Backend:         backend,
		Notifier:        notifier,
		Sink:            sink,
		ExchangeBreaker: exchangeBreaker,
	}
	loop := tradeloop.New(loopCfg, startingCash)

	if freeQuote == nil {
		freeQuote = tradeloop.PortfolioCashFreeQuote{Portfolio: loop.Portfolio}
	}
	loop.SetFreeQuote(freeQuote)

	return loop, cleanup, nil
}

// liveFreeQuote adapts execution.LiveBackend.FreeQuote to
// tradeloop.FreeQuoteSource.
type liveFreeQuote struct {
	backend    *execution.LiveBackend
	quoteAsset string
}

func (f liveFreeQuote) FreeQuote(ctx context.Context) (float64, bool, error) {
	amount, err := f.backend.FreeQuote(ctx, f.quoteAsset)
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Telegram.BotToken == "" {
		return notify.NoOp{}
	}
	tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs)
	if err != nil {
		log.Warn().Err(err).Msg("tradeloop: failed to init telegram notifier, falling back to no-op")
		return notify.NoOp{}
	}
	return tg
}

func buildSink(cfg *config.Config) (tradelog.Sink, func(), error) {
	if cfg.Postgres.DSN == "" {
		mem := tradelog.NewMemory()
		return mem, func() { _ = mem.Close() }, nil
	}
	pool, err := pgxpool.New(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return nil, func() {}, fmt.Errorf("tradeloop: connect postgres: %w", err)
	}
	if _, err := pool.Exec(context.Background(), tradelog.Schema); err != nil {
		pool.Close()
		return nil, func() {}, fmt.Errorf("tradeloop: apply trade log schema: %w", err)
	}
	sink := tradelog.NewPostgres(pool)
	return sink, func() { pool.Close() }, nil
}

func buildCache(cfg *config.Config) (market.Cache, func()) {
	if cfg.Redis.Addr == "" {
		return market.NewMemCache(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return market.NewRedisCache(client), func() { _ = client.Close() }
}
