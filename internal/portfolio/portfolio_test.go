package portfolio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

type stubAnalyzer struct {
	prices map[string]float64
	calls  int
}

func (s *stubAnalyzer) AnalyzeSymbol(_ context.Context, symbol string, _ analyzer.Env) (*model.StockAnalysis, error) {
	s.calls++
	price, ok := s.prices[symbol]
	if !ok {
		return nil, analyzer.ErrNoPriceData
	}
	return &model.StockAnalysis{
		Symbol:       symbol,
		CurrentPrice: price,
		Signal:       model.Buy,
		Confidence:   62.5,
		ProbabilityRanges: map[string]model.ProbabilityBand{
			"1_week":   {ExpectedPrice: price * 1.01},
			"1_month":  {ExpectedPrice: price * 1.04},
			"3_months": {ExpectedPrice: price * 1.12},
		},
	}, nil
}

func newManager(t *testing.T, prices map[string]float64) (*Manager, *stubAnalyzer, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "pf.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a := &stubAnalyzer{prices: prices}
	f := &collector.MockFetcher{Bars: map[string][]model.OHLCV{
		"AAPL": {{Time: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), Close: 202}},
		"NVDA": {{Time: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), Close: 90}},
	}}
	m := NewManager(s, a, f, analyzer.DefaultRiskFreeRate, zap.NewNop())
	m.now = func() time.Time { return time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC) }
	return m, a, s
}

func TestAdd(t *testing.T) {
	m, _, s := newManager(t, map[string]float64{"AAPL": 200})
	ctx := context.Background()

	res, err := m.Add(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.CurrentPrice)

	holdings, err := m.Holdings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "2024-06-03", holdings[0].AddedDate)
	assert.Equal(t, model.Buy, holdings[0].SignalWhenAdded)

	preds, err := s.ListPredictions(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.NotEmpty(t, preds[0].ID)
	assert.InDelta(t, 224.0, preds[0].Targets["3_months"], 1e-9)
	assert.Empty(t, preds[0].Actuals)

	_, err = m.Add(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrAlreadyHeld)

	_, err = m.Add(ctx, "NOPE")
	assert.ErrorIs(t, err, analyzer.ErrNoPriceData)
}

func TestRemoveAndClear(t *testing.T) {
	m, _, _ := newManager(t, map[string]float64{"AAPL": 200, "MSFT": 400})
	ctx := context.Background()

	_, err := m.Add(ctx, "AAPL")
	require.NoError(t, err)
	_, err = m.Add(ctx, "MSFT")
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, "msft"))
	assert.ErrorIs(t, m.Remove(ctx, "MSFT"), ErrNotHeld)

	n, err := m.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	holdings, err := m.Holdings(ctx)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestPerformance(t *testing.T) {
	m, a, _ := newManager(t, map[string]float64{"AAPL": 200, "MSFT": 400})
	ctx := context.Background()

	_, err := m.Add(ctx, "AAPL")
	require.NoError(t, err)
	_, err = m.Add(ctx, "MSFT")
	require.NoError(t, err)

	a.prices["AAPL"] = 210
	a.prices["MSFT"] = 380
	n, err := m.UpdatePrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	perf, err := m.Performance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 600.0, perf.TotalInvested)
	assert.Equal(t, 590.0, perf.TotalCurrent)
	assert.Equal(t, -10.0, perf.TotalGain)
	assert.Equal(t, -1.67, perf.TotalGainPercent)

	bySymbol := map[string]model.HoldingPerformance{}
	for _, s := range perf.Stocks {
		bySymbol[s.Symbol] = s
	}
	assert.Equal(t, 10.0, bySymbol["AAPL"].Gain)
	assert.Equal(t, 5.0, bySymbol["AAPL"].GainPercent)
	assert.Equal(t, -20.0, bySymbol["MSFT"].Gain)
	assert.Equal(t, -5.0, bySymbol["MSFT"].GainPercent)
}

func TestPerformance_Empty(t *testing.T) {
	m, _, _ := newManager(t, nil)
	perf, err := m.Performance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, perf.TotalInvested)
	assert.Zero(t, perf.TotalGainPercent)
	assert.Empty(t, perf.Stocks)
}

func TestUpdatePrices_KeepsFailures(t *testing.T) {
	m, a, _ := newManager(t, map[string]float64{"AAPL": 200})
	ctx := context.Background()
	_, err := m.Add(ctx, "AAPL")
	require.NoError(t, err)

	delete(a.prices, "AAPL")
	n, err := m.UpdatePrices(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	holdings, err := m.Holdings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, holdings[0].CurrentPrice)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, Accuracy(110, 110))
	assert.InDelta(t, 90.0, Accuracy(99, 110), 1e-9)
	assert.InDelta(t, 90.0, Accuracy(121, 110), 1e-9)
	assert.Equal(t, 0.0, Accuracy(400, 100))
	assert.Equal(t, 0.0, Accuracy(10, 0))
}

func TestResolvePredictions(t *testing.T) {
	m, _, s := newManager(t, map[string]float64{"AAPL": 200, "NVDA": 100})
	ctx := context.Background()
	_, err := m.Add(ctx, "AAPL")
	require.NoError(t, err)
	_, err = m.Add(ctx, "NVDA")
	require.NoError(t, err)

	added := m.now()
	n, err := m.ResolvePredictions(ctx, added.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Zero(t, n, "nothing elapsed yet")

	n, err = m.ResolvePredictions(ctx, added.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, 4, n, "1 week and 1 month for two symbols")

	preds, err := s.ListPredictions(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, 202.0, preds[0].Actuals["1_week"])
	assert.InDelta(t, Accuracy(202, 202), preds[0].Accuracy["1_week"], 1e-9)
	assert.InDelta(t, Accuracy(202, 208), preds[0].Accuracy["1_month"], 1e-9)
	_, resolved := preds[0].Actuals["3_months"]
	assert.False(t, resolved)

	n, err = m.ResolvePredictions(ctx, added.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Zero(t, n, "already resolved horizons are skipped")
}

func TestResolvePredictions_PriceUnavailable(t *testing.T) {
	m, _, _ := newManager(t, map[string]float64{"TSLA": 250})
	m.fetcher = &collector.MockFetcher{Fail: map[string]error{"TSLA": errors.New("down")}}
	ctx := context.Background()
	_, err := m.Add(ctx, "TSLA")
	require.NoError(t, err)

	n, err := m.ResolvePredictions(ctx, m.now().AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, n)
}
