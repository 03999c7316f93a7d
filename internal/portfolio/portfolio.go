// Package portfolio tracks the holdings of the single dashboard user and the
// predictions recorded when each holding was added.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/store"
	"StockScope/internal/watchlist"
)

var (
	// ErrAlreadyHeld is returned when adding a symbol already in the portfolio.
	ErrAlreadyHeld = errors.New("already in portfolio")
	// ErrNotHeld is returned when removing a symbol that is not held.
	ErrNotHeld = errors.New("not in portfolio")
)

// Store is the persistence the portfolio needs.
type Store interface {
	InsertHolding(ctx context.Context, h model.Holding) error
	ListHoldings(ctx context.Context) ([]model.Holding, error)
	DeleteHolding(ctx context.Context, symbol string) error
	ClearHoldings(ctx context.Context) (int, error)
	UpdateHoldingPrice(ctx context.Context, symbol string, price float64) error
	InsertPrediction(ctx context.Context, p model.Prediction) error
	ListPredictions(ctx context.Context, symbol string) ([]model.Prediction, error)
	ResolvePrediction(ctx context.Context, id, horizon string, actual, accuracy float64) error
}

// Analyzer produces a fresh analysis for one symbol.
type Analyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string, env analyzer.Env) (*model.StockAnalysis, error)
}

// Manager adds, removes and values holdings.
type Manager struct {
	store    Store
	analyzer Analyzer
	fetcher  collector.Fetcher
	riskFree float64
	logger   *zap.Logger
	now      func() time.Time
}

func NewManager(s Store, a Analyzer, f collector.Fetcher, riskFree float64, logger *zap.Logger) *Manager {
	return &Manager{store: s, analyzer: a, fetcher: f, riskFree: riskFree, logger: logger, now: time.Now}
}

// Add analyzes symbol, holds it at the current price and records a prediction
// with the expected price of every horizon.
func (m *Manager) Add(ctx context.Context, symbol string) (*model.StockAnalysis, error) {
	symbol = watchlist.Normalize(symbol)
	analysis, err := m.analyzer.AnalyzeSymbol(ctx, symbol, analyzer.Env{RiskFreeRate: m.riskFree})
	if err != nil {
		return nil, err
	}

	now := m.now()
	err = m.store.InsertHolding(ctx, model.Holding{
		Symbol:              symbol,
		AddedDate:           now.Format("2006-01-02"),
		AddedPrice:          analysis.CurrentPrice,
		CurrentPrice:        analysis.CurrentPrice,
		SignalWhenAdded:     analysis.Signal,
		ConfidenceWhenAdded: analysis.Confidence,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrAlreadyHeld
	}
	if err != nil {
		return nil, fmt.Errorf("insert holding %s: %w", symbol, err)
	}

	targets := make(map[string]float64, len(analysis.ProbabilityRanges))
	for h, band := range analysis.ProbabilityRanges {
		targets[h] = band.ExpectedPrice
	}
	pred := model.Prediction{
		ID:                 uuid.NewString(),
		Symbol:             symbol,
		PredictionDate:     now,
		Signal:             analysis.Signal,
		Confidence:         analysis.Confidence,
		PriceWhenPredicted: analysis.CurrentPrice,
		Targets:            targets,
	}
	if err := m.store.InsertPrediction(ctx, pred); err != nil {
		// the holding stands without its prediction
		m.logger.Warn("save prediction failed", zap.String("symbol", symbol), zap.Error(err))
	}

	m.logger.Info("portfolio holding added",
		zap.String("symbol", symbol),
		zap.Float64("price", analysis.CurrentPrice),
		zap.String("signal", string(analysis.Signal)),
	)
	return analysis, nil
}

// Remove drops a holding.
func (m *Manager) Remove(ctx context.Context, symbol string) error {
	err := m.store.DeleteHolding(ctx, watchlist.Normalize(symbol))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotHeld
	}
	return err
}

// Clear drops every holding and returns how many there were.
func (m *Manager) Clear(ctx context.Context) (int, error) {
	return m.store.ClearHoldings(ctx)
}

// Holdings lists the current holdings.
func (m *Manager) Holdings(ctx context.Context) ([]model.Holding, error) {
	return m.store.ListHoldings(ctx)
}

// UpdatePrices re-analyzes every holding and stores its latest price. It
// returns the number updated; symbols that fail keep their old price.
func (m *Manager) UpdatePrices(ctx context.Context) (int, error) {
	holdings, err := m.store.ListHoldings(ctx)
	if err != nil {
		return 0, err
	}
	env := analyzer.Env{RiskFreeRate: m.riskFree}
	updated := 0
	for _, h := range holdings {
		analysis, err := m.analyzer.AnalyzeSymbol(ctx, h.Symbol, env)
		if err != nil {
			m.logger.Warn("price update failed", zap.String("symbol", h.Symbol), zap.Error(err))
			continue
		}
		if err := m.store.UpdateHoldingPrice(ctx, h.Symbol, analysis.CurrentPrice); err != nil {
			return updated, fmt.Errorf("update %s: %w", h.Symbol, err)
		}
		updated++
	}
	m.logger.Info("portfolio prices updated", zap.Int("updated", updated), zap.Int("holdings", len(holdings)))
	return updated, nil
}

var hundred = decimal.NewFromInt(100)

// Performance values every holding against its added price.
func (m *Manager) Performance(ctx context.Context) (*model.PortfolioPerformance, error) {
	holdings, err := m.store.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}

	perf := &model.PortfolioPerformance{Stocks: make([]model.HoldingPerformance, 0, len(holdings))}
	invested, current := decimal.Zero, decimal.Zero
	for _, h := range holdings {
		added := decimal.NewFromFloat(h.AddedPrice)
		now := decimal.NewFromFloat(h.CurrentPrice)
		gain := now.Sub(added)

		invested = invested.Add(added)
		current = current.Add(now)
		perf.Stocks = append(perf.Stocks, model.HoldingPerformance{
			Holding:     h,
			Gain:        gain.Round(2).InexactFloat64(),
			GainPercent: percent(gain, added),
		})
	}

	total := current.Sub(invested)
	perf.TotalInvested = invested.Round(2).InexactFloat64()
	perf.TotalCurrent = current.Round(2).InexactFloat64()
	perf.TotalGain = total.Round(2).InexactFloat64()
	perf.TotalGainPercent = percent(total, invested)
	return perf, nil
}

// percent returns part/whole in percent rounded to cents, or 0 for a non-positive whole.
func percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}
