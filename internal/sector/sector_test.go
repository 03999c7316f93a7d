package sector

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

func linearBars(start, step float64, n int) []model.OHLCV {
	end := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: end.AddDate(0, 0, i-n+1), Close: start + step*float64(i)}
	}
	return bars
}

func TestMeasure(t *testing.T) {
	bars := linearBars(100, 1, 67)
	p := Measure(ETF{"Technology", "XLK"}, bars, 10)

	assert.Equal(t, "XLK", p.ETF)
	assert.Equal(t, 166.0, p.CurrentPrice)
	assert.Equal(t, 0.61, p.Performance1D)
	assert.Equal(t, 3.11, p.Performance1W)
	assert.Equal(t, 15.28, p.Performance1M)
	assert.Equal(t, 66.0, p.Performance3M)
	assert.Equal(t, 56.0, p.RelativeStrength)
	assert.Greater(t, p.Volatility, 0.0)
}

func TestMeasure_ShortHistory(t *testing.T) {
	p := Measure(ETF{"Energy", "XLE"}, linearBars(50, 5, 2), 0)
	assert.Equal(t, 10.0, p.Performance1D)
	assert.Zero(t, p.Performance1W)
	assert.Zero(t, p.Performance1M)
	assert.Equal(t, 10.0, p.Performance3M)
	assert.Zero(t, p.Volatility, "one return has no sample deviation")
}

func TestMeasure_VolatilitySkipsUndefinedReturns(t *testing.T) {
	bars := linearBars(100, 1, 67)
	bars[10].Close = math.NaN()
	p := Measure(ETF{"Utilities", "XLU"}, bars, 0)
	assert.Greater(t, p.Volatility, 0.0)
	assert.False(t, math.IsNaN(p.Volatility))
	assert.Equal(t, 66.0, p.Performance3M)
}

func TestRefresh(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "sector.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	bars := map[string][]model.OHLCV{Benchmark: linearBars(100, 0.1, 67)}
	for i, etf := range ETFs {
		bars[etf.Symbol] = linearBars(100, float64(i)*0.05, 67)
	}
	f := &collector.MockFetcher{Bars: bars, Fail: map[string]error{"XLRE": errors.New("timeout")}}
	svc := NewService(f, db, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 28, 18, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	out, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, out, len(ETFs)-1)
	assert.Equal(t, -6.6, out[0].RelativeStrength, "flat technology ETF trails SPY's 6.6%")

	date, saved, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-28", date)
	require.Len(t, saved, len(ETFs)-1)
	assert.Equal(t, "XLB", saved[0].ETF, "ordered by 3-month performance")
}

func TestRefresh_NothingPriced(t *testing.T) {
	f := &collector.MockFetcher{Bars: map[string][]model.OHLCV{}}
	for _, etf := range ETFs {
		f.Bars[etf.Symbol] = linearBars(10, 0, 1)
	}
	svc := NewService(f, nil, zap.NewNop())
	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoSectors)
}
