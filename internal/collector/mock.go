package collector

import (
	"context"
	"fmt"
	"time"

	"StockScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	// Bars overrides generated history per symbol.
	Bars     map[string][]model.OHLCV
	Profiles map[string]*model.Profile
	// Fail lists symbols that return an error.
	Fail map[string]error
	// End anchors generated bars; zero means today.
	End time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Fail[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return trimBars(bars, days), nil
	}
	return generateMockBars(m.Price, days, m.End), nil
}

func (m *MockFetcher) FetchProfile(_ context.Context, symbol string) (*model.Profile, error) {
	if err, ok := m.Fail[symbol]; ok {
		return nil, err
	}
	if p, ok := m.Profiles[symbol]; ok {
		return p, nil
	}
	if m.Profiles != nil {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrUnknownSymbol)
	}
	return &model.Profile{Symbol: symbol, CompanyName: symbol + " Inc.", Sector: "Technology", MarketCap: 50e9, Currency: "USD"}, nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
