package analyzer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/model"
)

var end = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func barsFrom(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, i-len(closes)+1),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_500_000,
		}
	}
	return bars
}

func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + rng.NormFloat64()*0.015
		closes[i] = price
	}
	return closes
}

func steadyRise(n int, step float64) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1 + step
	}
	return closes
}

func TestAnalyze_FullHistory(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		bars := barsFrom(randomWalk(300, seed))
		res, err := Analyze("RAND", bars, Env{RiskFreeRate: DefaultRiskFreeRate})
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.Contains(t, model.SignalLabels, res.Signal)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 100.0)
		assert.GreaterOrEqual(t, res.RSI, 0.0)
		assert.LessOrEqual(t, res.RSI, 100.0)
		assert.False(t, res.RiskMetrics.Placeholder)
		assert.Len(t, res.ProbabilityRanges, 3)
		assert.Nil(t, res.RelativePerformance)
		assert.GreaterOrEqual(t, res.TechnicalDetails.BBPosition, 0.0)
		assert.LessOrEqual(t, res.TechnicalDetails.BBPosition, 100.0)
		assert.Equal(t, int64(1_500_000), res.Volume)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	bars := barsFrom(randomWalk(260, 42))
	env := Env{Benchmark: calculator.ReturnsByDate(barsFrom(randomWalk(260, 43))), RiskFreeRate: DefaultRiskFreeRate}

	first, err := Analyze("AAA", bars, env)
	require.NoError(t, err)
	second, err := Analyze("AAA", bars, env)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NotNil(t, first.RelativePerformance)
}

func TestAnalyze_SteadyRise(t *testing.T) {
	res, err := Analyze("UP", barsFrom(steadyRise(300, 0.005)), Env{RiskFreeRate: DefaultRiskFreeRate})
	require.NoError(t, err)

	// overbought -3, strong uptrend +2, positive momentum +1, inside the bands 0
	assert.Equal(t, 0, res.Strength, res.TechnicalDetails.Reasons)
	assert.Equal(t, model.Hold, res.Signal)
	assert.Equal(t, 50.0, res.Confidence)
	assert.Equal(t, 100.0, res.RSI)
	assert.Equal(t, []string{"Overbought (RSI > 70)", "Strong uptrend", "Positive momentum"}, res.TechnicalDetails.Reasons)
	assert.Equal(t, 0.0, res.RiskMetrics.MaxDrawdownPct)
	assert.Greater(t, res.TechnicalDetails.MA20, res.TechnicalDetails.MA50)
	assert.Less(t, res.TechnicalDetails.MA50, res.CurrentPrice)
}

func TestAnalyze_BenchmarkIdenticalToStock(t *testing.T) {
	bars := barsFrom(randomWalk(120, 9))
	env := Env{Benchmark: calculator.ReturnsByDate(bars), RiskFreeRate: DefaultRiskFreeRate}
	res, err := Analyze("SPY", bars, env)
	require.NoError(t, err)
	require.NotNil(t, res.RelativePerformance)
	assert.InDelta(t, 1.0, res.RelativePerformance.Beta, 1e-9)
	assert.InDelta(t, 0.0, res.RelativePerformance.AlphaPct, 1e-9)
	assert.InDelta(t, 1.0, res.RelativePerformance.Correlation, 1e-9)
	assert.InDelta(t, 0.0, res.RelativePerformance.RelativePerformancePct, 1e-9)
}

func TestAnalyze_ShortHistoryUsesDefaults(t *testing.T) {
	bars := barsFrom(randomWalk(25, 3))
	res, err := Analyze("NEW", bars, Env{RiskFreeRate: DefaultRiskFreeRate})
	require.NoError(t, err)

	assert.True(t, res.RiskMetrics.Placeholder)
	assert.True(t, res.ProbabilityRanges["1_week"].Placeholder)
	assert.Equal(t, res.CurrentPrice, res.TechnicalDetails.MA50)
	assert.Equal(t, res.CurrentPrice, res.TechnicalDetails.MA200)
	assert.NotEqual(t, res.CurrentPrice, res.TechnicalDetails.MA20)
}

func TestAnalyze_NoResult(t *testing.T) {
	_, err := Analyze("NONE", nil, Env{})
	assert.ErrorIs(t, err, ErrNoPriceData)

	_, err = Analyze("ONE", barsFrom([]float64{10}), Env{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Analyze("SHORT", barsFrom(randomWalk(10, 1)), Env{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	closes := randomWalk(260, 5)
	closes[len(closes)-1] = math.NaN()
	res, err := Analyze("NAN", barsFrom(closes), Env{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func newTestAnalyzer(f collector.Fetcher, delay time.Duration) *Analyzer {
	return New(f, zap.NewNop(), nil, Options{HistoryDays: 260, SymbolDelay: delay})
}

func TestAnalyzeBatch_PartialFailure(t *testing.T) {
	f := &collector.MockFetcher{
		Price: 120,
		End:   end,
		Bars: map[string][]model.OHLCV{
			"GOOD":  barsFrom(randomWalk(260, 11)),
			"SHORT": barsFrom(randomWalk(8, 12)),
			"EMPTY": {},
		},
		Fail: map[string]error{"DOWN": errors.New("provider unavailable")},
	}
	a := newTestAnalyzer(f, time.Millisecond)

	res := a.AnalyzeBatch(context.Background(), []string{"GOOD", "DOWN", "SHORT", "EMPTY", "GEN"}, Env{RiskFreeRate: DefaultRiskFreeRate})
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RunID)

	var analyzed []string
	for _, r := range res.Results {
		analyzed = append(analyzed, r.Symbol)
	}
	assert.Equal(t, []string{"GOOD", "GEN"}, analyzed)
	assert.Equal(t, []string{"DOWN", "SHORT", "EMPTY"}, res.Failed)
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	a := newTestAnalyzer(&collector.MockFetcher{Price: 50, End: end}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.AnalyzeBatch(ctx, []string{"A", "B", "C"}, Env{})
	assert.Empty(t, res.Results)
	assert.Equal(t, []string{"A", "B", "C"}, res.Failed)
}

func TestAnalyzeSymbol_WrapsErrors(t *testing.T) {
	f := &collector.MockFetcher{Bars: map[string][]model.OHLCV{"EMPTY": nil}, End: end}
	a := newTestAnalyzer(f, 0)
	_, err := a.AnalyzeSymbol(context.Background(), "EMPTY", Env{})
	assert.ErrorIs(t, err, ErrNoPriceData)
}

func TestLoadEnv(t *testing.T) {
	f := &collector.MockFetcher{
		Price: 400,
		End:   end,
		Fail:  map[string]error{"DOWN": errors.New("timeout")},
	}
	a := New(f, zap.NewNop(), nil, Options{BenchmarkDays: 63})

	env := a.LoadEnv(context.Background(), "SPY", 0.05)
	assert.Equal(t, 0.05, env.RiskFreeRate)
	assert.Len(t, env.Benchmark, 62)
	assert.True(t, slices.IsSortedFunc(env.Benchmark, func(x, y model.ReturnPoint) int { return x.Time.Compare(y.Time) }))

	env = a.LoadEnv(context.Background(), "DOWN", 0.05)
	assert.Empty(t, env.Benchmark)
	assert.Equal(t, 0.05, env.RiskFreeRate)
}
