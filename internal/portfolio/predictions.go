package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// HorizonDays is the calendar age at which each horizon's target is checked.
var HorizonDays = map[string]int{
	"1_week":   7,
	"1_month":  30,
	"3_months": 90,
}

// Accuracy scores how close actual came to target: 100 for a hit, falling
// by one point per percent of miss, floored at 0.
func Accuracy(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Max(0, 100-math.Abs(actual-target)/target*100)
}

// ResolvePredictions fills in the actual price of every horizon that has
// elapsed since its prediction and has no actual yet. It returns how many
// horizons were resolved.
func (m *Manager) ResolvePredictions(ctx context.Context, now time.Time) (int, error) {
	preds, err := m.store.ListPredictions(ctx, "")
	if err != nil {
		return 0, err
	}

	prices := make(map[string]float64)
	resolved := 0
	for _, p := range preds {
		for horizon, days := range HorizonDays {
			target, ok := p.Targets[horizon]
			if !ok {
				continue
			}
			if _, done := p.Actuals[horizon]; done {
				continue
			}
			if now.Before(p.PredictionDate.AddDate(0, 0, days)) {
				continue
			}
			price, err := m.latestPrice(ctx, p.Symbol, prices)
			if err != nil {
				m.logger.Warn("resolve prediction: price unavailable", zap.String("symbol", p.Symbol), zap.Error(err))
				break
			}
			if err := m.store.ResolvePrediction(ctx, p.ID, horizon, price, Accuracy(price, target)); err != nil {
				return resolved, fmt.Errorf("resolve %s %s: %w", p.ID, horizon, err)
			}
			resolved++
		}
	}
	if resolved > 0 {
		m.logger.Info("predictions resolved", zap.Int("horizons", resolved))
	}
	return resolved, nil
}

func (m *Manager) latestPrice(ctx context.Context, symbol string, cache map[string]float64) (float64, error) {
	if p, ok := cache[symbol]; ok {
		return p, nil
	}
	bars, err := m.fetcher.FetchDailyBars(ctx, symbol, 5)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no bars for %s", symbol)
	}
	price := bars[len(bars)-1].Close
	cache[symbol] = price
	return price, nil
}
