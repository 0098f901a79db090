package risk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures a Breaker's trip threshold and recovery
// window.
type BreakerSettings struct {
	MinRequests     uint32
	FailureRatio    float64
	OpenTimeout     time.Duration
	HalfOpenMaxReqs uint32
	CountInterval   time.Duration
}

// DefaultExchangeBreakerSettings are reasonable defaults for wrapping
// outbound exchange calls: five requests and 60% failures trips the
// breaker for thirty seconds.
func DefaultExchangeBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:     5,
		FailureRatio:    0.6,
		OpenTimeout:     30 * time.Second,
		HalfOpenMaxReqs: 3,
		CountInterval:   10 * time.Second,
	}
}

var (
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptocore_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half_open)",
		},
		[]string{"name"},
	)
	breakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptocore_circuit_breaker_requests_total",
			Help: "Requests observed through a circuit breaker",
		},
		[]string{"name", "result"},
	)
)

// Breaker wraps a named upstream dependency (the execution backend or
// the market-data pipeline) in a gobreaker circuit breaker. It trips
// independently of, and reacts faster than, the daily drawdown
// kill-switch — it decides only whether a call is attempted, never
// whether a signal is a buy, sell or hold.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker returns a Breaker named name with the given settings.
func NewBreaker(name string, settings BreakerSettings) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.HalfOpenMaxReqs,
		Interval:    settings.CountInterval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		OnStateChange: func(_ string, _ gobreaker.State, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	breakerState.WithLabelValues(name).Set(stateValue(cb.State()))
	return &Breaker{name: name, cb: cb}
}

// Execute runs fn through the breaker. It returns gobreaker.ErrOpenState
// or gobreaker.ErrTooManyRequests without invoking fn when the breaker
// is not accepting calls.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		callErr := fn()
		return nil, callErr
	})
	if err != nil {
		breakerRequests.WithLabelValues(b.name, "failure").Inc()
		return err
	}
	breakerRequests.WithLabelValues(b.name, "success").Inc()
	return nil
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
