// Package store persists watchlists, portfolios, predictions, analysis
// history and add-on data in a single SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when an update or delete matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

// DefaultUser owns the single portfolio.
const DefaultUser = "default_user"

// SQLiteStore persists data to a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP handlers read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol        TEXT UNIQUE NOT NULL,
			company_name  TEXT,
			sector        TEXT,
			market_cap    TEXT,
			added_by_user INTEGER NOT NULL DEFAULT 1,
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS user_portfolios (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id               TEXT NOT NULL DEFAULT 'default_user',
			symbol                TEXT NOT NULL,
			added_date            TEXT,
			added_price           REAL,
			current_price         REAL,
			signal_when_added     TEXT,
			confidence_when_added REAL,
			created_at            INTEGER NOT NULL,
			UNIQUE(user_id, symbol)
		)`,

		`CREATE TABLE IF NOT EXISTS prediction_tracking (
			id                   TEXT PRIMARY KEY,
			symbol               TEXT NOT NULL,
			prediction_date      INTEGER NOT NULL,
			signal               TEXT,
			confidence           REAL,
			price_when_predicted REAL,
			target_price_1week   REAL,
			target_price_1month  REAL,
			target_price_3month  REAL,
			actual_price_1week   REAL,
			actual_price_1month  REAL,
			actual_price_3month  REAL,
			accuracy_1week       REAL,
			accuracy_1month      REAL,
			accuracy_3month      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_symbol ON prediction_tracking(symbol)`,

		`CREATE TABLE IF NOT EXISTS analysis_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			signal      TEXT,
			confidence  REAL,
			strength    INTEGER,
			price       REAL,
			rsi         REAL,
			sharpe      REAL,
			beta        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_symbol_ts ON analysis_history(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS news_sentiment (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol          TEXT,
			title           TEXT,
			description     TEXT,
			url             TEXT,
			published_date  TEXT,
			source          TEXT,
			sentiment_score REAL,
			sentiment_label TEXT,
			magnitude       REAL,
			created_at      INTEGER NOT NULL,
			UNIQUE(symbol, url)
		)`,

		`CREATE TABLE IF NOT EXISTS sector_analysis (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			date              TEXT,
			sector            TEXT,
			etf               TEXT,
			current_price     REAL,
			performance_1d    REAL,
			performance_1w    REAL,
			performance_1m    REAL,
			performance_3m    REAL,
			volatility        REAL,
			relative_strength REAL,
			created_at        INTEGER NOT NULL,
			UNIQUE(date, sector)
		)`,

		`CREATE TABLE IF NOT EXISTS earnings_calendar (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol           TEXT,
			earnings_date    TEXT,
			fiscal_quarter   TEXT,
			estimated_eps    REAL,
			reported_eps     REAL,
			surprise_percent REAL,
			created_at       INTEGER NOT NULL,
			UNIQUE(symbol, earnings_date)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite store")
	return s.db.Close()
}

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
