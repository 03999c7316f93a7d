package store

import (
	"context"
	"time"

	"StockScope/internal/model"
)

// InsertHolding adds a holding to the default portfolio. It returns
// ErrDuplicate if the symbol is already held.
func (s *SQLiteStore) InsertHolding(ctx context.Context, h model.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO user_portfolios
		(user_id, symbol, added_date, added_price, current_price, signal_when_added, confidence_when_added, created_at)
		VALUES (?,?,?,?,?,?,?,?) ON CONFLICT(user_id, symbol) DO NOTHING`,
		DefaultUser, h.Symbol, h.AddedDate, h.AddedPrice, h.CurrentPrice,
		string(h.SignalWhenAdded), h.ConfidenceWhenAdded, s.now().Unix())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return nil
}

// ListHoldings returns the default portfolio, newest first.
func (s *SQLiteStore) ListHoldings(ctx context.Context) ([]model.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, added_date, added_price, current_price,
		signal_when_added, confidence_when_added, created_at
		FROM user_portfolios WHERE user_id = ? ORDER BY created_at DESC, id DESC`, DefaultUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Holding
	for rows.Next() {
		var h model.Holding
		var signal string
		var created int64
		if err := rows.Scan(&h.Symbol, &h.AddedDate, &h.AddedPrice, &h.CurrentPrice,
			&signal, &h.ConfidenceWhenAdded, &created); err != nil {
			return nil, err
		}
		h.SignalWhenAdded = model.SignalLabel(signal)
		h.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHolding removes one holding.
func (s *SQLiteStore) DeleteHolding(ctx context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM user_portfolios WHERE user_id = ? AND symbol = ?`,
		DefaultUser, symbol)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// ClearHoldings empties the default portfolio and returns how many rows went.
func (s *SQLiteStore) ClearHoldings(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM user_portfolios WHERE user_id = ?`, DefaultUser)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// UpdateHoldingPrice sets the latest price of a holding.
func (s *SQLiteStore) UpdateHoldingPrice(ctx context.Context, symbol string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE user_portfolios SET current_price = ? WHERE user_id = ? AND symbol = ?`,
		price, DefaultUser, symbol)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
