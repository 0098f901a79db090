// Package notify sends operator-facing alerts. The trading loop sends one
// when the daily kill-switch trips; opened/closed positions and failed
// orders are logged, not sent as notifications. It substitutes a Telegram bot for the discord webhook spec.md names,
// the concrete alerting channel this corpus actually wires.
package notify

import "context"

// Notifier delivers a short text alert. Implementations must not block
// the trading loop for long; Send should be called with a short
// per-call timeout in ctx.
type Notifier interface {
	Send(ctx context.Context, title, message string) error
}

// NoOp discards every notification. Used when no alerting channel is
// configured.
type NoOp struct{}

func (NoOp) Send(context.Context, string, string) error { return nil }
