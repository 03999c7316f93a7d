// Package service runs watchlist-wide analyses for the bot, the scheduler
// and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/model"
	"StockScope/internal/store"
	"StockScope/internal/watchlist"
)

var (
	// ErrEmptyWatchlist is returned when no symbol is active.
	ErrEmptyWatchlist = errors.New("no active symbols in watchlist")
	// ErrSymbolRequired is returned for a blank symbol.
	ErrSymbolRequired = errors.New("symbol required")
)

// Analyzer is the subset of *analyzer.Analyzer the service drives.
type Analyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string, env analyzer.Env) (*model.StockAnalysis, error)
	AnalyzeBatch(ctx context.Context, symbols []string, env analyzer.Env) *analyzer.BatchResult
	LoadEnv(ctx context.Context, benchmark string, riskFree float64) analyzer.Env
}

// Watchlist lists the symbols to analyze.
type Watchlist interface {
	Active(ctx context.Context) ([]string, error)
}

// AnalysisService analyzes single symbols and the whole watchlist, and keeps
// the latest watchlist run.
type AnalysisService struct {
	analyzer  Analyzer
	watchlist Watchlist
	recorder  store.Recorder
	benchmark string
	riskFree  float64
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.RWMutex
	last   *analyzer.BatchResult
	lastAt time.Time
}

func NewAnalysisService(a Analyzer, wl Watchlist, rec store.Recorder, benchmark string, riskFree float64, logger *zap.Logger) *AnalysisService {
	if rec == nil {
		rec = store.NewNoopRecorder()
	}
	return &AnalysisService{
		analyzer:  a,
		watchlist: wl,
		recorder:  rec,
		benchmark: benchmark,
		riskFree:  riskFree,
		logger:    logger,
		now:       time.Now,
	}
}

// AnalyzeSymbol analyzes one symbol against a freshly loaded benchmark.
func (s *AnalysisService) AnalyzeSymbol(ctx context.Context, symbol string) (*model.StockAnalysis, error) {
	symbol = watchlist.Normalize(symbol)
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	env := s.analyzer.LoadEnv(ctx, s.benchmark, s.riskFree)
	return s.analyzer.AnalyzeSymbol(ctx, symbol, env)
}

// AnalyzeWatchlist analyzes every active symbol and records the run.
func (s *AnalysisService) AnalyzeWatchlist(ctx context.Context) (*analyzer.BatchResult, error) {
	symbols, err := s.watchlist.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyWatchlist
	}

	env := s.analyzer.LoadEnv(ctx, s.benchmark, s.riskFree)
	res := s.analyzer.AnalyzeBatch(ctx, symbols, env)

	if len(res.Results) > 0 {
		if err := s.recorder.RecordAnalysis(ctx, res.RunID, res.Results); err != nil {
			s.logger.Error("record analysis failed", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.last, s.lastAt = res, s.now()
	s.mu.Unlock()
	return res, nil
}

// Last returns the latest watchlist run, or nil before the first one.
func (s *AnalysisService) Last() (*analyzer.BatchResult, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastAt
}

// TopSignals returns up to n BUY or STRONG BUY results by descending confidence.
func TopSignals(results []*model.StockAnalysis, n int) []*model.StockAnalysis {
	var buys []*model.StockAnalysis
	for _, r := range results {
		if r.Signal.IsBuy() {
			buys = append(buys, r)
		}
	}
	sort.SliceStable(buys, func(i, j int) bool {
		return buys[i].Confidence > buys[j].Confidence
	})
	if len(buys) > n {
		buys = buys[:n]
	}
	return buys
}

// CountSignals tallies results per label.
func CountSignals(results []*model.StockAnalysis) map[model.SignalLabel]int {
	counts := make(map[model.SignalLabel]int, len(model.SignalLabels))
	for _, r := range results {
		counts[r.Signal]++
	}
	return counts
}
