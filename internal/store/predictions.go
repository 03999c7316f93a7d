package store

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// predictionColumns maps a horizon name to its column suffix.
var predictionColumns = map[string]string{
	"1_week":   "1week",
	"1_month":  "1month",
	"3_months": "3month",
}

// InsertPrediction records the targets of a new prediction.
func (s *SQLiteStore) InsertPrediction(ctx context.Context, p model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := func(h string) null.Float {
		if v, ok := p.Targets[h]; ok {
			return null.FloatFrom(v)
		}
		return null.Float{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO prediction_tracking
		(id, symbol, prediction_date, signal, confidence, price_when_predicted,
		 target_price_1week, target_price_1month, target_price_3month)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Symbol, p.PredictionDate.Unix(), string(p.Signal), p.Confidence, p.PriceWhenPredicted,
		target("1_week"), target("1_month"), target("3_months"))
	return err
}

// ListPredictions returns predictions, newest first. An empty symbol lists all.
func (s *SQLiteStore) ListPredictions(ctx context.Context, symbol string) ([]model.Prediction, error) {
	query := `SELECT id, symbol, prediction_date, signal, confidence, price_when_predicted,
		target_price_1week, target_price_1month, target_price_3month,
		actual_price_1week, actual_price_1month, actual_price_3month,
		accuracy_1week, accuracy_1month, accuracy_3month
		FROM prediction_tracking`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY prediction_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Prediction
	for rows.Next() {
		var p model.Prediction
		var date int64
		var signal string
		var targets, actuals, accuracy [3]null.Float
		if err := rows.Scan(&p.ID, &p.Symbol, &date, &signal, &p.Confidence, &p.PriceWhenPredicted,
			&targets[0], &targets[1], &targets[2],
			&actuals[0], &actuals[1], &actuals[2],
			&accuracy[0], &accuracy[1], &accuracy[2]); err != nil {
			return nil, err
		}
		p.PredictionDate = time.Unix(date, 0).UTC()
		p.Signal = model.SignalLabel(signal)
		p.Targets = collect(targets)
		p.Actuals = collect(actuals)
		p.Accuracy = collect(accuracy)
		out = append(out, p)
	}
	return out, rows.Err()
}

func collect(values [3]null.Float) map[string]float64 {
	out := make(map[string]float64)
	for i, h := range []string{"1_week", "1_month", "3_months"} {
		if values[i].Valid {
			out[h] = values[i].Float64
		}
	}
	return out
}

// ResolvePrediction fills the actual price and accuracy of one horizon.
func (s *SQLiteStore) ResolvePrediction(ctx context.Context, id, horizon string, actual, accuracy float64) error {
	suffix, ok := predictionColumns[horizon]
	if !ok {
		return fmt.Errorf("unknown horizon %q", horizon)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE prediction_tracking SET actual_price_%[1]s = ?, accuracy_%[1]s = ? WHERE id = ?`, suffix),
		actual, accuracy, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
