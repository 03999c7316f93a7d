// Package watchlist manages the set of symbols analyzed in batch runs.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

// ErrNotFound is returned when a symbol is not on the watchlist.
var ErrNotFound = errors.New("symbol not in watchlist")

// Store is the persistence the watchlist needs.
type Store interface {
	SeedWatchlist(ctx context.Context, items []model.WatchlistItem) (int, error)
	InsertWatchlist(ctx context.Context, it model.WatchlistItem) error
	ListWatchlist(ctx context.Context, activeOnly bool) ([]model.WatchlistItem, error)
	DeleteWatchlist(ctx context.Context, symbol string) error
	SetWatchlistActive(ctx context.Context, symbol string, active bool) error
}

// Manager adds, removes and lists watchlist symbols.
type Manager struct {
	store   Store
	fetcher collector.Fetcher
	logger  *zap.Logger
}

func NewManager(s Store, fetcher collector.Fetcher, logger *zap.Logger) *Manager {
	return &Manager{store: s, fetcher: fetcher, logger: logger}
}

// Seed fills an empty watchlist with the default symbols. A watchlist that
// already has rows is left alone, so removed defaults stay removed.
func (m *Manager) Seed(ctx context.Context) error {
	existing, err := m.store.ListWatchlist(ctx, false)
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	n, err := m.store.SeedWatchlist(ctx, Defaults)
	if err != nil {
		return fmt.Errorf("seed watchlist: %w", err)
	}
	m.logger.Info("watchlist seeded", zap.Int("symbols", n))
	return nil
}

// Active returns the symbols included in batch runs.
func (m *Manager) Active(ctx context.Context) ([]string, error) {
	items, err := m.store.ListWatchlist(ctx, true)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}
	return symbols, nil
}

// List returns every tracked symbol with its details.
func (m *Manager) List(ctx context.Context) ([]model.WatchlistItem, error) {
	return m.store.ListWatchlist(ctx, false)
}

// Add validates symbol against the data provider and tracks it. Adding a
// symbol that is already tracked re-activates it.
func (m *Manager) Add(ctx context.Context, symbol, companyName string) (*model.WatchlistItem, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", collector.ErrUnknownSymbol)
	}
	profile, err := m.fetcher.FetchProfile(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", symbol, err)
	}

	item := model.WatchlistItem{
		Symbol:      symbol,
		CompanyName: companyName,
		Sector:      profile.Sector,
		MarketCap:   CapBucket(profile.MarketCap),
		AddedByUser: true,
		IsActive:    true,
	}
	if item.CompanyName == "" {
		item.CompanyName = profile.CompanyName
	}
	if item.Sector == "" {
		item.Sector = "Unknown"
	}

	err = m.store.InsertWatchlist(ctx, item)
	if errors.Is(err, store.ErrDuplicate) {
		err = m.store.SetWatchlistActive(ctx, symbol, true)
	}
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", symbol, err)
	}
	m.logger.Info("watchlist symbol added", zap.String("symbol", symbol), zap.String("company", item.CompanyName))
	return &item, nil
}

// Remove stops tracking symbol.
func (m *Manager) Remove(ctx context.Context, symbol string) error {
	return m.mapNotFound(m.store.DeleteWatchlist(ctx, Normalize(symbol)))
}

// SetActive includes or excludes symbol from batch runs without removing it.
func (m *Manager) SetActive(ctx context.Context, symbol string, active bool) error {
	return m.mapNotFound(m.store.SetWatchlistActive(ctx, Normalize(symbol), active))
}

func (m *Manager) mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Normalize upper-cases and trims a ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CapBucket classifies a market capitalization in dollars.
func CapBucket(marketCap float64) string {
	switch {
	case marketCap <= 0:
		return "Unknown"
	case marketCap > 200e9:
		return "Large Cap"
	case marketCap > 10e9:
		return "Mid Cap"
	case marketCap > 2e9:
		return "Small Cap"
	default:
		return "Micro Cap"
	}
}
