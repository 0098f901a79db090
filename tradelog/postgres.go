package tradelog

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the subset of *pgxpool.Pool the sink needs. Narrowing to
// an interface lets tests substitute pgxmock without a live database.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Postgres is a Sink backed by an append-only `trades` table, indexed
// on timestamp_ms.
type Postgres struct {
	pool execer
}

// NewPostgres wraps an existing pool as a Sink. Callers own the pool's
// lifecycle beyond Close.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// NewPostgresWithExecer wires a Sink against anything satisfying
// execer — a real pool or a pgxmock.PgxPoolIface in tests.
func NewPostgresWithExecer(pool execer) *Postgres {
	return &Postgres{pool: pool}
}

// Schema is the DDL for the trades table. cmd/tradeloop applies it at
// startup (it is idempotent); the Postgres sink itself never runs DDL.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id              BIGSERIAL PRIMARY KEY,
	timestamp_ms    BIGINT NOT NULL,
	symbol          TEXT NOT NULL,
	side            TEXT NOT NULL,
	amount          DOUBLE PRECISION NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	fee             DOUBLE PRECISION NOT NULL,
	realized_pnl    DOUBLE PRECISION NOT NULL,
	reason          TEXT NOT NULL,
	mode            TEXT NOT NULL,
	order_id        TEXT
);
CREATE INDEX IF NOT EXISTS trades_timestamp_ms_idx ON trades (timestamp_ms);
`

func (p *Postgres) Append(ctx context.Context, record core.TradeRecord) error {
	const query = `
		INSERT INTO trades (
			timestamp_ms, symbol, side, amount, price, fee, realized_pnl, reason, mode, order_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := p.pool.Exec(ctx, query,
		record.Timestamp.UnixMilli(),
		record.Symbol,
		string(record.Side),
		record.Amount,
		record.Price,
		record.Fee,
		record.RealizedPnL,
		record.Reason,
		string(record.Mode),
		nullableString(record.OrderID),
	)
	if err != nil {
		return fmt.Errorf("tradelog: insert trade record: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool, if it supports being
// closed directly (a *pgxpool.Pool does; a pgxmock pool is closed by
// the test itself).
func (p *Postgres) Close() error {
	if closer, ok := p.pool.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
