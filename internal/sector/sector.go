// Package sector compares the SPDR sector ETFs against the S&P 500.
package sector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/model"
)

// Benchmark is the ETF every sector is measured against.
const Benchmark = "SPY"

// lookback covers three months of trading days plus the base bar.
const lookback = 67

// ETF pairs a sector with the fund that tracks it.
type ETF struct {
	Sector string
	Symbol string
}

var ETFs = []ETF{
	{"Technology", "XLK"},
	{"Healthcare", "XLV"},
	{"Financial Services", "XLF"},
	{"Consumer Discretionary", "XLY"},
	{"Communication Services", "XLC"},
	{"Industrials", "XLI"},
	{"Consumer Defensive", "XLP"},
	{"Energy", "XLE"},
	{"Utilities", "XLU"},
	{"Real Estate", "XLRE"},
	{"Materials", "XLB"},
}

// ErrNoSectors is returned when no ETF could be priced.
var ErrNoSectors = errors.New("no sector data")

// Store persists one snapshot per day.
type Store interface {
	SaveSectors(ctx context.Context, date string, sectors []model.SectorPerformance) error
	LatestSectors(ctx context.Context) (string, []model.SectorPerformance, error)
}

type Service struct {
	fetcher collector.Fetcher
	store   Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(fetcher collector.Fetcher, store Store, logger *zap.Logger) *Service {
	return &Service{fetcher: fetcher, store: store, logger: logger, now: time.Now}
}

// Refresh prices every sector ETF, stores the snapshot under today's date and
// returns it. ETFs that fail to load are skipped.
func (s *Service) Refresh(ctx context.Context) ([]model.SectorPerformance, error) {
	var spy3m float64
	if bars, err := s.fetcher.FetchDailyBars(ctx, Benchmark, lookback); err != nil {
		s.logger.Warn("benchmark unavailable, relative strength is absolute", zap.Error(err))
	} else {
		spy3m = threeMonth(calculator.Closes(bars))
	}

	out := make([]model.SectorPerformance, 0, len(ETFs))
	for _, etf := range ETFs {
		bars, err := s.fetcher.FetchDailyBars(ctx, etf.Symbol, lookback)
		if err == nil && len(bars) < 2 {
			err = fmt.Errorf("only %d bars", len(bars))
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("sector skipped", zap.String("etf", etf.Symbol), zap.Error(err))
			continue
		}
		out = append(out, Measure(etf, bars, spy3m))
	}
	if len(out) == 0 {
		return nil, ErrNoSectors
	}

	date := s.now().Format("2006-01-02")
	if err := s.store.SaveSectors(ctx, date, out); err != nil {
		return out, fmt.Errorf("save sectors: %w", err)
	}
	s.logger.Info("sector snapshot saved", zap.String("date", date), zap.Int("sectors", len(out)))
	return out, nil
}

// Latest returns the most recent stored snapshot.
func (s *Service) Latest(ctx context.Context) (string, []model.SectorPerformance, error) {
	return s.store.LatestSectors(ctx)
}

// Measure computes one sector's performance from its bar history, which must
// hold at least one bar. Every figure is a percentage rounded to cents.
func Measure(etf ETF, bars []model.OHLCV, benchmark3m float64) model.SectorPerformance {
	closes := calculator.Closes(bars)
	perf3m := threeMonth(closes)
	return model.SectorPerformance{
		Sector:           etf.Sector,
		ETF:              etf.Symbol,
		CurrentPrice:     round2(closes[len(closes)-1]),
		Performance1D:    round2(calculator.PeriodReturn(closes, 1)),
		Performance1W:    round2(calculator.PeriodReturn(closes, 5)),
		Performance1M:    round2(calculator.PeriodReturn(closes, 22)),
		Performance3M:    round2(perf3m),
		Volatility:       round2(volatility(calculator.ReturnsByDate(bars).Values())),
		RelativeStrength: round2(perf3m - benchmark3m),
	}
}

// threeMonth measures from 66 bars back, or from the first bar of a shorter history.
func threeMonth(closes []float64) float64 {
	return calculator.PeriodReturn(closes, min(lookback-1, len(closes)-1))
}

// volatility annualizes the sample deviation of daily returns.
func volatility(returns []float64) float64 {
	sd := calculator.StdDev(returns)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(calculator.TradingDaysPerYear) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
