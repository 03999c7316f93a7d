package watchlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "wl.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	f := &collector.MockFetcher{Profiles: map[string]*model.Profile{
		"HOOD": {Symbol: "HOOD", CompanyName: "Robinhood Markets", Sector: "Financial Services", MarketCap: 15e9},
		"AAPL": {Symbol: "AAPL", CompanyName: "Apple Inc.", Sector: "Technology", MarketCap: 3e12},
	}}
	return NewManager(s, f, zap.NewNop())
}

func TestSeed(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	require.NoError(t, m.Seed(ctx))

	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 20)
	assert.Equal(t, "AAPL", active[0])

	require.NoError(t, m.Remove(ctx, "aapl"))
	require.NoError(t, m.Seed(ctx))
	active, err = m.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 19, "a removed default is not re-seeded")
}

func TestAddRemoveToggle(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	item, err := m.Add(ctx, " hood ", "")
	require.NoError(t, err)
	assert.Equal(t, "HOOD", item.Symbol)
	assert.Equal(t, "Robinhood Markets", item.CompanyName)
	assert.Equal(t, "Mid Cap", item.MarketCap)

	_, err = m.Add(ctx, "ZZZZ", "")
	assert.ErrorIs(t, err, collector.ErrUnknownSymbol)

	require.NoError(t, m.SetActive(ctx, "HOOD", false))
	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = m.Add(ctx, "HOOD", "Robinhood")
	require.NoError(t, err, "re-adding reactivates")
	active, err = m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HOOD"}, active)

	assert.ErrorIs(t, m.Remove(ctx, "TSLA"), ErrNotFound)
	assert.ErrorIs(t, m.SetActive(ctx, "TSLA", true), ErrNotFound)
	require.NoError(t, m.Remove(ctx, "HOOD"))
}

func TestCapBucket(t *testing.T) {
	assert.Equal(t, "Large Cap", CapBucket(2.5e12))
	assert.Equal(t, "Mid Cap", CapBucket(200e9))
	assert.Equal(t, "Small Cap", CapBucket(5e9))
	assert.Equal(t, "Micro Cap", CapBucket(2e9))
	assert.Equal(t, "Unknown", CapBucket(0))
}
