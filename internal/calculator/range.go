package calculator

import (
	"errors"

	"github.com/guregu/null/v6"
)

// BollingerSeries returns the upper and lower bands: the trailing mean plus
// and minus k sample standard deviations.
func BollingerSeries(closes []float64, period int, k float64) (upper, lower []null.Float, err error) {
	if period < 2 {
		return nil, nil, errors.New("bollinger period must be at least 2")
	}
	upper = make([]null.Float, len(closes))
	lower = make([]null.Float, len(closes))
	for i := period - 1; i < len(closes); i++ {
		window := closes[i-period+1 : i+1]
		if !allFinite(window) {
			continue
		}
		mean, sd := Mean(window), StdDev(window)
		upper[i] = null.FloatFrom(mean + k*sd)
		lower[i] = null.FloatFrom(mean - k*sd)
	}
	return upper, lower, nil
}

// BandPosition returns where price sits within [lower, upper] on a 0-100 scale.
// Equal bands give the midpoint.
func BandPosition(price, upper, lower float64) float64 {
	if upper == lower {
		return 50
	}
	pos := (price - lower) / (upper - lower) * 100
	if pos < 0 {
		pos = 0
	}
	if pos > 100 {
		pos = 100
	}
	return pos
}

// PeriodReturn returns the percentage change over the last n bars, or 0 when
// the history is too short.
func PeriodReturn(closes []float64, n int) float64 {
	last := len(closes) - 1
	if n <= 0 || last-n < 0 || closes[last-n] == 0 {
		return 0
	}
	return (closes[last] - closes[last-n]) / closes[last-n] * 100
}
