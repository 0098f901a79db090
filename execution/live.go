package execution

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/ajitpratap0/cryptocore/core"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RetryConfig controls the exponential backoff applied to transient
// exchange errors.
type RetryConfig struct {
	MaxAttempts int
	Backoff     []time.Duration // one entry per retry, in order
}

// DefaultRetryConfig makes up to three attempts in total, waiting 1s then
// 2s between them, per the live backend's error-handling policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff:     []time.Duration{time.Second, 2 * time.Second},
	}
}

// IsRetryable classifies an error as transient (network/availability)
// by substring match against the exchange's error text. Permanent
// errors — rejected orders, insufficient funds — are not retryable and
// must fail immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"too many requests",
		"rate limit",
		"-1001", // Binance internal error
		"-1021", // timestamp outside recvWindow
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// withRetry runs op, retrying transient failures up to cfg.MaxAttempts
// times total with the configured backoff between attempts. A
// non-retryable error returns immediately.
func withRetry(ctx context.Context, cfg RetryConfig, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := time.Second
		if attempt < len(cfg.Backoff) {
			delay = cfg.Backoff[attempt]
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("execution: exchange call failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// symbolFilters holds the exchange precision rules for one symbol,
// cached from exchange info at startup.
type symbolFilters struct {
	stepSize     float64
	minNotional  float64
	quoteAsset   string
}

// LiveBackend executes orders against Binance. It is safe for
// concurrent use; symbol filters are loaded once and cached.
type LiveBackend struct {
	client  *binance.Client
	retry   RetryConfig
	limiter *rate.Limiter

	mu      sync.RWMutex
	filters map[string]symbolFilters
}

// DefaultRateLimit matches Binance's weight-1 endpoints (order
// placement, account balance): 10 requests/second, bursting to 20.
func DefaultRateLimit() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(10), 20)
}

// NewLiveBackend returns a LiveBackend wrapping client. limiter throttles
// every outbound call (order placement, balance lookups); pass nil to
// disable throttling.
func NewLiveBackend(client *binance.Client, retry RetryConfig, limiter *rate.Limiter) *LiveBackend {
	return &LiveBackend{
		client:  client,
		retry:   retry,
		limiter: limiter,
		filters: make(map[string]symbolFilters),
	}
}

// wait blocks until the rate limiter admits one call, or returns
// immediately when no limiter is configured.
func (b *LiveBackend) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}

// LoadSymbolInfo fetches and caches exchange precision rules for every
// symbol in symbols. It should be called once at startup.
func (b *LiveBackend) LoadSymbolInfo(ctx context.Context, symbols []string) error {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return fmt.Errorf("execution: fetch exchange info: %w", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range info.Symbols {
		if !wanted[s.Symbol] {
			continue
		}
		f := symbolFilters{quoteAsset: s.QuoteAsset}
		for _, filter := range s.Filters {
			switch filter["filterType"] {
			case "LOT_SIZE":
				if v, ok := filter["stepSize"].(string); ok {
					f.stepSize, _ = strconv.ParseFloat(v, 64)
				}
			case "MIN_NOTIONAL", "NOTIONAL":
				if v, ok := filter["minNotional"].(string); ok {
					f.minNotional, _ = strconv.ParseFloat(v, 64)
				}
			}
		}
		b.filters[s.Symbol] = f
	}
	return nil
}

// roundAmount truncates amount down to the symbol's LOT_SIZE step.
func (b *LiveBackend) roundAmount(symbol string, amount float64) float64 {
	b.mu.RLock()
	f, ok := b.filters[symbol]
	b.mu.RUnlock()
	if !ok || f.stepSize <= 0 {
		return amount
	}
	steps := math.Floor(amount / f.stepSize)
	return steps * f.stepSize
}

// Buy submits a market buy for quoteToSpend worth of symbol at the
// latest price, rounds the resulting amount to exchange precision, and
// returns the parsed Fill.
func (b *LiveBackend) Buy(ctx context.Context, symbol string, quoteToSpend, refPrice float64) (core.Fill, error) {
	amount := b.roundAmount(symbol, quoteToSpend/refPrice)
	return b.submitMarketOrder(ctx, symbol, binance.SideTypeBuy, amount)
}

// Sell submits a market sell for amount of symbol, rounded to exchange
// precision.
func (b *LiveBackend) Sell(ctx context.Context, symbol string, amount float64) (core.Fill, error) {
	amount = b.roundAmount(symbol, amount)
	return b.submitMarketOrder(ctx, symbol, binance.SideTypeSell, amount)
}

// FreeQuote returns the exchange's free balance of quoteAsset.
func (b *LiveBackend) FreeQuote(ctx context.Context, quoteAsset string) (float64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, fmt.Errorf("execution: rate limiter: %w", err)
	}

	var free float64
	err := withRetry(ctx, b.retry, func() error {
		account, err := b.client.NewGetAccountService().Do(ctx)
		if err != nil {
			return err
		}
		for _, bal := range account.Balances {
			if bal.Asset == quoteAsset {
				free, err = strconv.ParseFloat(bal.Free, 64)
				return err
			}
		}
		free = 0
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("execution: fetch free balance for %s: %w", quoteAsset, err)
	}
	return free, nil
}

func (b *LiveBackend) submitMarketOrder(ctx context.Context, symbol string, side binance.SideType, amount float64) (core.Fill, error) {
	if amount <= 0 {
		return core.Fill{}, fmt.Errorf("execution: rounded order amount is not positive")
	}
	if err := b.wait(ctx); err != nil {
		return core.Fill{}, fmt.Errorf("execution: rate limiter: %w", err)
	}

	var resp *binance.CreateOrderResponse
	err := withRetry(ctx, b.retry, func() error {
		var opErr error
		resp, opErr = b.client.NewCreateOrderService().
			Symbol(symbol).
			Side(side).
			Type(binance.OrderTypeMarket).
			Quantity(strconv.FormatFloat(amount, 'f', -1, 64)).
			Do(ctx)
		return opErr
	})
	if err != nil {
		return core.Fill{}, fmt.Errorf("execution: place order on %s: %w", symbol, err)
	}

	b.mu.RLock()
	quoteAsset := b.filters[symbol].quoteAsset
	b.mu.RUnlock()

	return parseFill(resp, quoteAsset)
}

// parseFill converts a Binance order response into the uniform Fill
// contract: summed filled quantity, volume-weighted average price, and
// total fee expressed in quote currency. A fee reported in any asset
// other than quoteAsset is treated as a base-currency fee and converted
// at the price of the fill it belongs to.
func parseFill(resp *binance.CreateOrderResponse, quoteAsset string) (core.Fill, error) {
	var filledQty, quoteSpent, feeQuote float64

	for _, f := range resp.Fills {
		qty, _ := strconv.ParseFloat(f.Quantity, 64)
		price, _ := strconv.ParseFloat(f.Price, 64)
		commission, _ := strconv.ParseFloat(f.Commission, 64)

		filledQty += qty
		quoteSpent += qty * price

		if f.CommissionAsset == quoteAsset {
			feeQuote += commission
		} else {
			// base-currency fee: convert at this fill's price
			feeQuote += commission * price
		}
	}

	if filledQty == 0 {
		qty, err := strconv.ParseFloat(resp.ExecutedQuantity, 64)
		if err != nil {
			return core.Fill{}, fmt.Errorf("execution: parse executed quantity: %w", err)
		}
		filledQty = qty
	}

	avgPrice := 0.0
	if filledQty > 0 && quoteSpent > 0 {
		avgPrice = quoteSpent / filledQty
	} else if p, err := strconv.ParseFloat(resp.Price, 64); err == nil && p > 0 {
		avgPrice = p
	}

	log.Debug().
		Str("order_id", strconv.FormatInt(resp.OrderID, 10)).
		Float64("amount", filledQty).
		Float64("price", avgPrice).
		Float64("fee_quote", feeQuote).
		Msg("parsed exchange fill")

	return core.Fill{
		Amount:   filledQty,
		Price:    avgPrice,
		FeeQuote: feeQuote,
		OrderID:  strconv.FormatInt(resp.OrderID, 10),
	}, nil
}
