package store

import (
	"context"
	"time"

	"StockScope/internal/model"
)

// SeedWatchlist inserts items that are not yet present. Existing rows keep
// their state, so seeding on every start is safe.
func (s *SQLiteStore) SeedWatchlist(ctx context.Context, items []model.WatchlistItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	added := 0
	for _, it := range items {
		res, err := s.db.ExecContext(ctx, `INSERT INTO watchlist
			(symbol, company_name, sector, market_cap, added_by_user, is_active, created_at)
			VALUES (?,?,?,?,?,?,?) ON CONFLICT(symbol) DO NOTHING`,
			it.Symbol, it.CompanyName, it.Sector, it.MarketCap,
			boolToInt(it.AddedByUser), boolToInt(it.IsActive), now)
		if err != nil {
			return added, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// InsertWatchlist adds one symbol. It returns ErrDuplicate if it is already tracked.
func (s *SQLiteStore) InsertWatchlist(ctx context.Context, it model.WatchlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO watchlist
		(symbol, company_name, sector, market_cap, added_by_user, is_active, created_at)
		VALUES (?,?,?,?,?,?,?) ON CONFLICT(symbol) DO NOTHING`,
		it.Symbol, it.CompanyName, it.Sector, it.MarketCap,
		boolToInt(it.AddedByUser), boolToInt(it.IsActive), s.now().Unix())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return nil
}

// ListWatchlist returns tracked symbols ordered by symbol.
func (s *SQLiteStore) ListWatchlist(ctx context.Context, activeOnly bool) ([]model.WatchlistItem, error) {
	query := `SELECT symbol, company_name, sector, market_cap, added_by_user, is_active, created_at
		FROM watchlist`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY symbol`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WatchlistItem
	for rows.Next() {
		var it model.WatchlistItem
		var byUser, active int
		var created int64
		if err := rows.Scan(&it.Symbol, &it.CompanyName, &it.Sector, &it.MarketCap,
			&byUser, &active, &created); err != nil {
			return nil, err
		}
		it.AddedByUser = byUser == 1
		it.IsActive = active == 1
		it.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteWatchlist removes a symbol.
func (s *SQLiteStore) DeleteWatchlist(ctx context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// SetWatchlistActive toggles whether a symbol is included in batch runs.
func (s *SQLiteStore) SetWatchlistActive(ctx context.Context, symbol string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE watchlist SET is_active = ? WHERE symbol = ?`,
		boolToInt(active), symbol)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
