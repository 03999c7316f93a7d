package calculator

import (
	"math"

	"github.com/guregu/null/v6"
)

var nan = math.NaN()

// RSISeries computes the relative strength index over a trailing window of
// price changes. Gains and losses are floored at zero and averaged with a
// simple mean. A window without losses yields 100.
// Requires period+1 closes before the first value is defined.
func RSISeries(closes []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := make([]null.Float, len(closes))
	for i := period; i < len(closes); i++ {
		window := closes[i-period : i+1]
		if !allFinite(window) {
			continue
		}
		var gain, loss float64
		for j := 1; j < len(window); j++ {
			change := window[j] - window[j-1]
			gain += math.Max(change, 0)
			loss += math.Max(-change, 0)
		}
		out[i] = null.FloatFrom(rsiFromAverages(gain/float64(period), loss/float64(period)))
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
