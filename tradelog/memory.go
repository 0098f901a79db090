package tradelog

import (
	"context"
	"sync"

	"github.com/ajitpratap0/cryptocore/core"
)

// Memory is an in-process Sink for tests and for operators running
// without a database.
type Memory struct {
	mu      sync.Mutex
	records []core.TradeRecord
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, record core.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *Memory) Close() error { return nil }

// Records returns a copy of every record appended so far, in order.
func (m *Memory) Records() []core.TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.TradeRecord, len(m.records))
	copy(out, m.records)
	return out
}
