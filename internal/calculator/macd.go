package calculator

import "github.com/guregu/null/v6"

// MACDSeries returns the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line).
func MACDSeries(closes []float64, fast, slow, signal int) (macd, signalLine []null.Float, err error) {
	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return nil, nil, err
	}
	macd = make([]null.Float, len(closes))
	for i := range closes {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			macd[i] = null.FloatFrom(fastEMA[i].Float64 - slowEMA[i].Float64)
		}
	}
	signalLine, err = EMASeries(floats(macd), signal)
	if err != nil {
		return nil, nil, err
	}
	return macd, signalLine, nil
}
