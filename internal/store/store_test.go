package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestWatchlist(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := []model.WatchlistItem{
		{Symbol: "MSFT", CompanyName: "Microsoft", Sector: "Technology", MarketCap: "Large", IsActive: true},
		{Symbol: "AAPL", CompanyName: "Apple", Sector: "Technology", MarketCap: "Large", IsActive: true},
	}
	n, err := s.SeedWatchlist(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SeedWatchlist(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "seeding twice adds nothing")

	err = s.InsertWatchlist(ctx, model.WatchlistItem{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, s.InsertWatchlist(ctx, model.WatchlistItem{Symbol: "PLTR", AddedByUser: true, IsActive: true}))

	require.NoError(t, s.SetWatchlistActive(ctx, "MSFT", false))
	assert.ErrorIs(t, s.SetWatchlistActive(ctx, "NOPE", true), ErrNotFound)

	active, err := s.ListWatchlist(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "AAPL", active[0].Symbol)
	assert.Equal(t, "PLTR", active[1].Symbol)
	assert.True(t, active[1].AddedByUser)

	all, err := s.ListWatchlist(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.DeleteWatchlist(ctx, "PLTR"))
	assert.ErrorIs(t, s.DeleteWatchlist(ctx, "PLTR"), ErrNotFound)
}

func TestHoldings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	h := model.Holding{Symbol: "NVDA", AddedDate: "2024-05-01", AddedPrice: 850, CurrentPrice: 850,
		SignalWhenAdded: model.Buy, ConfidenceWhenAdded: 66}
	require.NoError(t, s.InsertHolding(ctx, h))
	assert.ErrorIs(t, s.InsertHolding(ctx, h), ErrDuplicate)
	require.NoError(t, s.InsertHolding(ctx, model.Holding{Symbol: "AMD", AddedPrice: 150, CurrentPrice: 150}))

	require.NoError(t, s.UpdateHoldingPrice(ctx, "NVDA", 900))
	assert.ErrorIs(t, s.UpdateHoldingPrice(ctx, "TSLA", 1), ErrNotFound)

	list, err := s.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AMD", list[0].Symbol, "newest first")
	assert.Equal(t, 900.0, list[1].CurrentPrice)
	assert.Equal(t, model.Buy, list[1].SignalWhenAdded)

	require.NoError(t, s.DeleteHolding(ctx, "AMD"))
	n, err := s.ClearHoldings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPredictions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := model.Prediction{
		ID: "p-1", Symbol: "AAPL", PredictionDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Signal: model.StrongBuy, Confidence: 80, PriceWhenPredicted: 170,
		Targets: map[string]float64{"1_week": 172, "1_month": 178, "3_months": 190},
	}
	require.NoError(t, s.InsertPrediction(ctx, p))
	require.NoError(t, s.ResolvePrediction(ctx, "p-1", "1_week", 171, 99.4))
	assert.Error(t, s.ResolvePrediction(ctx, "p-1", "1_year", 1, 1))
	assert.ErrorIs(t, s.ResolvePrediction(ctx, "missing", "1_week", 1, 1), ErrNotFound)

	list, err := s.ListPredictions(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, p.PredictionDate, got.PredictionDate)
	assert.Equal(t, p.Targets, got.Targets)
	assert.Equal(t, map[string]float64{"1_week": 171}, got.Actuals)
	assert.Equal(t, map[string]float64{"1_week": 99.4}, got.Accuracy)
}

func TestRecordAnalysis(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []*model.StockAnalysis{
		{Symbol: "AAPL", CurrentPrice: 190, Signal: model.Buy, Confidence: 66, Strength: 2, RSI: 55,
			RiskMetrics: model.RiskMetrics{SharpeRatio: 1.2},
			RelativePerformance: &model.RelativePerformance{Beta: 1.1}},
		{Symbol: "NEW", CurrentPrice: 10, Signal: model.Hold, Confidence: 50},
	}
	require.NoError(t, s.RecordAnalysis(ctx, "run-1", results))
	require.NoError(t, s.RecordAnalysis(ctx, "run-2", results[:1]))

	hist, err := s.AnalysisHistory(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "run-2", hist[0].RunID)
	assert.True(t, hist[0].Beta.Valid)
	assert.Equal(t, 1.1, hist[0].Beta.Float64)

	hist, err = s.AnalysisHistory(ctx, "NEW", 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.False(t, hist[0].Beta.Valid)

	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordAnalysis(ctx, "x", results))
}

func TestAddOns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	articles := []model.Article{
		{Title: "Beats estimates", URL: "https://example.com/a", Sentiment: model.Sentiment{Score: 0.4, Label: "POSITIVE"}},
		{Title: "Misses", URL: "https://example.com/b", Sentiment: model.Sentiment{Score: -0.3, Label: "NEGATIVE"}},
	}
	require.NoError(t, s.UpsertNews(ctx, "AAPL", articles))
	require.NoError(t, s.UpsertNews(ctx, "AAPL", articles[:1]))
	n, err := s.CountNews(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	date, sectors, err := s.LatestSectors(ctx)
	require.NoError(t, err)
	assert.Empty(t, date)
	assert.Empty(t, sectors)

	require.NoError(t, s.SaveSectors(ctx, "2024-05-01", []model.SectorPerformance{
		{Sector: "Technology", ETF: "XLK", Performance3M: 8},
		{Sector: "Energy", ETF: "XLE", Performance3M: 12},
	}))
	require.NoError(t, s.SaveSectors(ctx, "2024-05-01", []model.SectorPerformance{
		{Sector: "Technology", ETF: "XLK", Performance3M: 15},
	}))
	date, sectors, err = s.LatestSectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", date)
	require.Len(t, sectors, 2)
	assert.Equal(t, "Technology", sectors[0].Sector)

	require.NoError(t, s.UpsertEarnings(ctx, "AAPL", []model.EarningsReport{
		{Date: "2024-05-02", FiscalQuarter: "2024-03-31", EstimatedEPS: 1.5, ActualEPS: 1.53, SurprisePercent: 2},
	}))
}
