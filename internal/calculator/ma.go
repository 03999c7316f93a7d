package calculator

import (
	"errors"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

var errPeriod = errors.New("period must be positive")

// SMASeries computes the trailing simple moving average for every bar.
// Entries are invalid until the window is full or while it contains a missing value.
func SMASeries(values []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := make([]null.Float, len(values))
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if !allFinite(window) {
			continue
		}
		out[i] = null.FloatFrom(Mean(window))
	}
	return out, nil
}

// EMASeries computes the bias-adjusted exponential moving average with
// alpha = 2/(span+1). The weights of all observed values are renormalized at
// every step, so the series is defined from the first finite value.
func EMASeries(values []float64, span int) ([]null.Float, error) {
	if span <= 0 {
		return nil, errPeriod
	}
	decay := 1 - 2.0/float64(span+1)
	out := make([]null.Float, len(values))
	var num, den float64
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		num = v + decay*num
		den = 1 + decay*den
		out[i] = null.FloatFrom(num / den)
	}
	return out, nil
}

// Closes returns the close column of bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// floats unwraps a nullable series, mapping invalid entries to NaN.
func floats(series []null.Float) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		if v.Valid {
			out[i] = v.Float64
		} else {
			out[i] = nan
		}
	}
	return out
}
