package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/model"
)

type fakeAnalyzer struct {
	lastEnv  string
	symbols  []string
	failWith error
}

func (f *fakeAnalyzer) AnalyzeSymbol(_ context.Context, symbol string, env analyzer.Env) (*model.StockAnalysis, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.symbols = append(f.symbols, symbol)
	return &model.StockAnalysis{Symbol: symbol, Signal: model.Buy, Confidence: 60}, nil
}

func (f *fakeAnalyzer) AnalyzeBatch(_ context.Context, symbols []string, _ analyzer.Env) *analyzer.BatchResult {
	res := &analyzer.BatchResult{RunID: "run-1"}
	for _, s := range symbols {
		res.Results = append(res.Results, &model.StockAnalysis{Symbol: s, Signal: model.Hold, Confidence: 50})
	}
	return res
}

func (f *fakeAnalyzer) LoadEnv(_ context.Context, benchmark string, riskFree float64) analyzer.Env {
	f.lastEnv = benchmark
	return analyzer.Env{RiskFreeRate: riskFree}
}

type fakeWatchlist struct {
	symbols []string
	err     error
}

func (f fakeWatchlist) Active(context.Context) ([]string, error) { return f.symbols, f.err }

type fakeRecorder struct {
	runs map[string]int
	err  error
}

func (f *fakeRecorder) RecordAnalysis(_ context.Context, runID string, results []*model.StockAnalysis) error {
	if f.runs == nil {
		f.runs = map[string]int{}
	}
	f.runs[runID] = len(results)
	return f.err
}

func (f *fakeRecorder) Close() error { return nil }

func TestAnalyzeSymbol(t *testing.T) {
	a := &fakeAnalyzer{}
	svc := NewAnalysisService(a, fakeWatchlist{}, nil, "SPY", 0.045, zap.NewNop())

	res, err := svc.AnalyzeSymbol(context.Background(), " tsla ")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", res.Symbol)
	assert.Equal(t, "SPY", a.lastEnv)

	_, err = svc.AnalyzeSymbol(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrSymbolRequired)
}

func TestAnalyzeWatchlist(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewAnalysisService(&fakeAnalyzer{}, fakeWatchlist{symbols: []string{"AAPL", "MSFT"}}, rec, "SPY", 0.045, zap.NewNop())
	at := time.Date(2024, 6, 3, 16, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	last, _ := svc.Last()
	assert.Nil(t, last)

	res, err := svc.AnalyzeWatchlist(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 2, rec.runs["run-1"])

	last, lastAt := svc.Last()
	assert.Same(t, res, last)
	assert.Equal(t, at, lastAt)
}

func TestAnalyzeWatchlist_Errors(t *testing.T) {
	svc := NewAnalysisService(&fakeAnalyzer{}, fakeWatchlist{}, nil, "SPY", 0.045, zap.NewNop())
	_, err := svc.AnalyzeWatchlist(context.Background())
	assert.ErrorIs(t, err, ErrEmptyWatchlist)

	boom := errors.New("db locked")
	svc = NewAnalysisService(&fakeAnalyzer{}, fakeWatchlist{err: boom}, nil, "SPY", 0.045, zap.NewNop())
	_, err = svc.AnalyzeWatchlist(context.Background())
	assert.ErrorIs(t, err, boom)

	rec := &fakeRecorder{err: errors.New("disk full")}
	svc = NewAnalysisService(&fakeAnalyzer{}, fakeWatchlist{symbols: []string{"AAPL"}}, rec, "SPY", 0.045, zap.NewNop())
	res, err := svc.AnalyzeWatchlist(context.Background())
	require.NoError(t, err, "a failed record does not fail the run")
	assert.Len(t, res.Results, 1)
}

func TestTopSignals(t *testing.T) {
	results := []*model.StockAnalysis{
		{Symbol: "A", Signal: model.Buy, Confidence: 55},
		{Symbol: "B", Signal: model.Hold, Confidence: 90},
		{Symbol: "C", Signal: model.StrongBuy, Confidence: 80},
		{Symbol: "D", Signal: model.Buy, Confidence: 55},
		{Symbol: "E", Signal: model.Sell, Confidence: 70},
		{Symbol: "F", Signal: model.Buy, Confidence: 65},
	}
	top := TopSignals(results, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "C", top[0].Symbol)
	assert.Equal(t, "F", top[1].Symbol)
	assert.Equal(t, "A", top[2].Symbol, "ties keep input order")

	assert.Empty(t, TopSignals(results[1:2], 5))
}

func TestCountSignals(t *testing.T) {
	counts := CountSignals([]*model.StockAnalysis{
		{Signal: model.Buy}, {Signal: model.Buy}, {Signal: model.StrongSell},
	})
	assert.Equal(t, 2, counts[model.Buy])
	assert.Equal(t, 1, counts[model.StrongSell])
	assert.Zero(t, counts[model.Hold])
}
