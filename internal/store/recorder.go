package store

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// Recorder persists analysis runs for later review.
type Recorder interface {
	RecordAnalysis(ctx context.Context, runID string, results []*model.StockAnalysis) error
	Close() error
}

// AnalysisRecord is one row of analysis history.
type AnalysisRecord struct {
	RunID      string            `json:"run_id"`
	Time       time.Time         `json:"time"`
	Symbol     string            `json:"symbol"`
	Signal     model.SignalLabel `json:"signal"`
	Confidence float64           `json:"confidence"`
	Strength   int               `json:"strength"`
	Price      float64           `json:"price"`
	RSI        float64           `json:"rsi"`
	Sharpe     float64           `json:"sharpe"`
	// Beta is null when no benchmark was available.
	Beta null.Float `json:"beta"`
}

// RecordAnalysis stores one row per result in a single transaction.
func (s *SQLiteStore) RecordAnalysis(ctx context.Context, runID string, results []*model.StockAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analysis_history
		(run_id, timestamp, symbol, signal, confidence, strength, price, rsi, sharpe, beta)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, r := range results {
		var beta null.Float
		if r.RelativePerformance != nil {
			beta = null.FloatFrom(r.RelativePerformance.Beta)
		}
		if _, err := stmt.ExecContext(ctx, runID, now, r.Symbol, string(r.Signal), r.Confidence,
			r.Strength, r.CurrentPrice, r.RSI, r.RiskMetrics.SharpeRatio, beta); err != nil {
			return fmt.Errorf("record %s: %w", r.Symbol, err)
		}
	}
	return tx.Commit()
}

// AnalysisHistory returns the most recent rows for symbol, newest first.
func (s *SQLiteStore) AnalysisHistory(ctx context.Context, symbol string, limit int) ([]AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, timestamp, symbol, signal, confidence, strength,
		price, rsi, sharpe, beta FROM analysis_history WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var ts int64
		var signal string
		if err := rows.Scan(&rec.RunID, &ts, &rec.Symbol, &signal, &rec.Confidence, &rec.Strength,
			&rec.Price, &rec.RSI, &rec.Sharpe, &rec.Beta); err != nil {
			return nil, err
		}
		rec.Time = time.Unix(ts, 0).UTC()
		rec.Signal = model.SignalLabel(signal)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ context.Context, _ string, _ []*model.StockAnalysis) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
