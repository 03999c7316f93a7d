// Package analyzer composes indicator preparation, signal generation, risk,
// relative performance and probability projection into one record per symbol.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/forecast"
	"StockScope/internal/model"
	"StockScope/internal/risk"
	"StockScope/internal/strategy"
)

var (
	// ErrNoPriceData means the provider returned no bars at all.
	ErrNoPriceData = errors.New("no price data")
	// ErrInsufficientData means the latest close or RSI is undefined.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// DefaultRiskFreeRate is the annualized rate used when none is configured.
const DefaultRiskFreeRate = 0.045

// Env carries the per-run inputs shared by every symbol.
type Env struct {
	// Benchmark may be empty, in which case relative performance is absent.
	Benchmark    model.ReturnSeries
	RiskFreeRate float64
}

// Options tunes fetching and pacing.
type Options struct {
	HistoryDays   int
	BenchmarkDays int
	// SymbolDelay is the minimum spacing between symbols in a batch.
	SymbolDelay time.Duration
}

// Analyzer fetches price history and analyzes symbols.
type Analyzer struct {
	fetcher collector.Fetcher
	logger  *zap.Logger
	tracer  trace.Tracer
	opts    Options
}

// New creates an Analyzer. A nil tracer disables spans.
func New(fetcher collector.Fetcher, logger *zap.Logger, tracer trace.Tracer, opts Options) *Analyzer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("analyzer")
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 252
	}
	if opts.BenchmarkDays <= 0 {
		opts.BenchmarkDays = 63
	}
	return &Analyzer{fetcher: fetcher, logger: logger, tracer: tracer, opts: opts}
}

// BatchResult is the outcome of analyzing several symbols.
type BatchResult struct {
	RunID   string                 `json:"run_id"`
	Results []*model.StockAnalysis `json:"results"`
	Failed  []string               `json:"failed"`
}

// Analyze builds the analysis record for one symbol from its bar history.
// It is a pure function of its inputs. A nil record always comes with
// ErrNoPriceData or ErrInsufficientData.
func Analyze(symbol string, bars []model.OHLCV, env Env) (*model.StockAnalysis, error) {
	if len(bars) == 0 {
		return nil, ErrNoPriceData
	}
	series := calculator.Prepare(bars)
	if series == nil {
		return nil, ErrInsufficientData
	}
	latest := series.Latest()
	if !latest.Close.Valid || !latest.RSI14.Valid {
		return nil, ErrInsufficientData
	}

	price := latest.Close.Float64
	returns := series.Returns()
	signal := strategy.Generate(latest)

	ma20 := latest.MA20.ValueOrZero()
	if !latest.MA20.Valid {
		ma20 = price
	}
	ma50 := latest.MA50.ValueOrZero()
	if !latest.MA50.Valid {
		ma50 = price
	}
	ma200 := latest.MA200.ValueOrZero()
	if !latest.MA200.Valid {
		ma200 = price
	}
	bbUpper, bbLower := price*1.02, price*0.98
	if latest.BBUpper.Valid && latest.BBLower.Valid {
		bbUpper, bbLower = latest.BBUpper.Float64, latest.BBLower.Float64
	}

	return &model.StockAnalysis{
		Symbol:              symbol,
		CurrentPrice:        round(price, 2),
		Signal:              signal.Label,
		Confidence:          round(signal.Confidence, 1),
		Strength:            signal.Strength,
		RSI:                 round(latest.RSI14.Float64, 1),
		Volume:              int64(latest.Volume),
		VolatilityPct:       round(latest.Volatility20d.ValueOrZero()*100, 1),
		ProbabilityRanges:   forecast.ProbabilityRanges(returns, price),
		RiskMetrics:         risk.Metrics(returns, env.RiskFreeRate),
		RelativePerformance: risk.Relative(returns, env.Benchmark, env.RiskFreeRate),
		TechnicalDetails: model.TechnicalDetails{
			MA20:       round(ma20, 2),
			MA50:       round(ma50, 2),
			MA200:      round(ma200, 2),
			MACD:       round(latest.MACD.ValueOrZero(), 3),
			BBPosition: round(calculator.BandPosition(price, bbUpper, bbLower), 1),
			Reasons:    signal.Reasons,
		},
	}, nil
}

// AnalyzeSymbol fetches the history for symbol and analyzes it.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string, env Env) (*model.StockAnalysis, error) {
	ctx, span := a.tracer.Start(ctx, "analyzer.analyze-symbol",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	bars, err := a.fetcher.FetchDailyBars(ctx, symbol, a.opts.HistoryDays)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	result, err := Analyze(symbol, bars, env)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	span.SetAttributes(attribute.String("signal", string(result.Signal)))
	return result, nil
}

// AnalyzeBatch analyzes symbols one after another, spaced by SymbolDelay.
// A failing symbol is listed in Failed and never aborts the batch. When ctx
// is cancelled the remaining symbols are reported as failed.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, symbols []string, env Env) *BatchResult {
	ctx, span := a.tracer.Start(ctx, "analyzer.analyze-batch",
		trace.WithAttributes(attribute.Int("symbols", len(symbols))))
	defer span.End()

	res := &BatchResult{RunID: uuid.NewString()}
	limit := rate.Inf
	if a.opts.SymbolDelay > 0 {
		limit = rate.Every(a.opts.SymbolDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for i, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			res.Failed = append(res.Failed, symbols[i:]...)
			a.logger.Warn("batch interrupted", zap.String("run_id", res.RunID), zap.Error(err),
				zap.Int("remaining", len(symbols)-i))
			break
		}
		result, err := a.AnalyzeSymbol(ctx, symbol, env)
		if err != nil {
			res.Failed = append(res.Failed, symbol)
			a.logger.Warn("analysis failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		res.Results = append(res.Results, result)
		a.logger.Debug("analyzed",
			zap.String("symbol", symbol),
			zap.String("signal", string(result.Signal)),
			zap.Float64("confidence", result.Confidence),
		)
	}

	a.logger.Info("batch analysis complete",
		zap.String("run_id", res.RunID),
		zap.Int("analyzed", len(res.Results)),
		zap.Strings("failed", res.Failed),
	)
	span.SetAttributes(attribute.Int("analyzed", len(res.Results)), attribute.Int("failed", len(res.Failed)))
	return res
}

// LoadEnv fetches the benchmark once for a run. An unavailable benchmark is
// logged and leaves Env.Benchmark empty.
func (a *Analyzer) LoadEnv(ctx context.Context, benchmark string, riskFree float64) Env {
	env := Env{RiskFreeRate: riskFree}
	if benchmark == "" {
		return env
	}
	bars, err := a.fetcher.FetchDailyBars(ctx, benchmark, a.opts.BenchmarkDays)
	if err != nil {
		a.logger.Warn("benchmark unavailable", zap.String("benchmark", benchmark), zap.Error(err))
		return env
	}
	env.Benchmark = calculator.ReturnsByDate(bars)
	a.logger.Debug("benchmark loaded", zap.String("benchmark", benchmark), zap.Int("returns", len(env.Benchmark)))
	return env
}

func round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
