// Package tradelog persists append-only TradeRecords. spec.md names
// SQLite as the concrete trade log, but SQLite is out of this corpus's
// scope (no SQLite driver anywhere in it) and an explicit Non-goal of
// the spec; Postgres via jackc/pgx is the corpus's actual persistence
// stack, so Sink is implemented against it instead.
package tradelog

import (
	"context"

	"github.com/ajitpratap0/cryptocore/core"
)

// Sink appends TradeRecords to durable storage. Implementations must
// not reorder or drop records; Append should be fast enough not to
// stall the tick that produced the fill.
type Sink interface {
	Append(ctx context.Context, record core.TradeRecord) error
	Close() error
}
