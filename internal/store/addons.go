package store

import (
	"context"
	"time"

	"StockScope/internal/model"
)

// UpsertNews stores articles for symbol, refreshing sentiment of known URLs.
func (s *SQLiteStore) UpsertNews(ctx context.Context, symbol string, articles []model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	for _, a := range articles {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO news_sentiment
			(symbol, title, description, url, published_date, source, sentiment_score, sentiment_label, magnitude, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(symbol, url) DO UPDATE SET
				sentiment_score = excluded.sentiment_score,
				sentiment_label = excluded.sentiment_label,
				magnitude = excluded.magnitude`,
			symbol, a.Title, a.Description, a.URL, a.PublishedAt.Format(time.RFC3339), a.Source,
			a.Sentiment.Score, a.Sentiment.Label, a.Sentiment.Magnitude, now); err != nil {
			return err
		}
	}
	return nil
}

// CountNews returns how many articles are stored for symbol.
func (s *SQLiteStore) CountNews(ctx context.Context, symbol string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_sentiment WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

// SaveSectors stores one row per sector for date (YYYY-MM-DD), replacing earlier rows of the same day.
func (s *SQLiteStore) SaveSectors(ctx context.Context, date string, sectors []model.SectorPerformance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	for _, p := range sectors {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO sector_analysis
			(date, sector, etf, current_price, performance_1d, performance_1w, performance_1m, performance_3m,
			 volatility, relative_strength, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(date, sector) DO UPDATE SET
				etf = excluded.etf, current_price = excluded.current_price,
				performance_1d = excluded.performance_1d, performance_1w = excluded.performance_1w,
				performance_1m = excluded.performance_1m, performance_3m = excluded.performance_3m,
				volatility = excluded.volatility, relative_strength = excluded.relative_strength`,
			date, p.Sector, p.ETF, p.CurrentPrice, p.Performance1D, p.Performance1W, p.Performance1M,
			p.Performance3M, p.Volatility, p.RelativeStrength, now); err != nil {
			return err
		}
	}
	return nil
}

// LatestSectors returns the most recent saved day, ordered by 3-month performance.
func (s *SQLiteStore) LatestSectors(ctx context.Context) (string, []model.SectorPerformance, error) {
	var date string
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(date), '') FROM sector_analysis`).Scan(&date)
	if err != nil || date == "" {
		return "", nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT sector, etf, current_price, performance_1d, performance_1w,
		performance_1m, performance_3m, volatility, relative_strength
		FROM sector_analysis WHERE date = ? ORDER BY performance_3m DESC`, date)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var out []model.SectorPerformance
	for rows.Next() {
		var p model.SectorPerformance
		if err := rows.Scan(&p.Sector, &p.ETF, &p.CurrentPrice, &p.Performance1D, &p.Performance1W,
			&p.Performance1M, &p.Performance3M, &p.Volatility, &p.RelativeStrength); err != nil {
			return "", nil, err
		}
		out = append(out, p)
	}
	return date, out, rows.Err()
}

// UpsertEarnings stores reported quarters for symbol.
func (s *SQLiteStore) UpsertEarnings(ctx context.Context, symbol string, reports []model.EarningsReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	for _, r := range reports {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO earnings_calendar
			(symbol, earnings_date, fiscal_quarter, estimated_eps, reported_eps, surprise_percent, created_at)
			VALUES (?,?,?,?,?,?,?)
			ON CONFLICT(symbol, earnings_date) DO UPDATE SET
				estimated_eps = excluded.estimated_eps,
				reported_eps = excluded.reported_eps,
				surprise_percent = excluded.surprise_percent`,
			symbol, r.Date, r.FiscalQuarter, r.EstimatedEPS, r.ActualEPS, r.SurprisePercent, now); err != nil {
			return err
		}
	}
	return nil
}
