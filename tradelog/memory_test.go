package tradelog

import (
	"context"
	"testing"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAppendPreservesOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, core.TradeRecord{Symbol: "BTCUSDT", Side: core.SideBuy}))
	require.NoError(t, m.Append(ctx, core.TradeRecord{Symbol: "ETHUSDT", Side: core.SideSell}))

	records := m.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "BTCUSDT", records[0].Symbol)
	assert.Equal(t, "ETHUSDT", records[1].Symbol)
}
