package calculator

import (
	"math"

	"github.com/guregu/null/v6"
)

// RollingVolatility returns the trailing sample deviation of returns scaled
// by sqrt(252). returns is aligned with the bars; its first entry is invalid.
func RollingVolatility(returns []null.Float, period int) ([]null.Float, error) {
	if period < 2 {
		return nil, errPeriod
	}
	values := floats(returns)
	out := make([]null.Float, len(values))
	annualize := math.Sqrt(TradingDaysPerYear)
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if !allFinite(window) {
			continue
		}
		out[i] = null.FloatFrom(StdDev(window) * annualize)
	}
	return out, nil
}
