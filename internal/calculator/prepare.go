package calculator

import (
	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// Indicator windows.
const (
	ShortMAPeriod  = 20
	MidMAPeriod    = 50
	LongMAPeriod   = 200
	RSIPeriod      = 14
	MACDFast       = 12
	MACDSlow       = 26
	MACDSignal     = 9
	BollingerBars  = 20
	BollingerWidth = 2.0
	VolatilityBars = 20
)

// Series is a price history augmented with per-bar returns and indicators.
type Series struct {
	Bars      []model.OHLCV
	Snapshots []model.IndicatorSnapshot
}

// Prepare derives returns and every indicator column from an ascending bar
// history. It returns nil when there are fewer than two bars, since no return
// can be formed.
func Prepare(bars []model.OHLCV) *Series {
	if len(bars) < 2 {
		return nil
	}
	closes := Closes(bars)

	returns := make([]null.Float, len(closes))
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if isFinite(prev) && isFinite(cur) && prev != 0 {
			returns[i] = null.FloatFrom(cur/prev - 1)
		}
	}

	// Windows are constants, so none of these can fail.
	ma20, _ := SMASeries(closes, ShortMAPeriod)
	ma50, _ := SMASeries(closes, MidMAPeriod)
	ma200, _ := SMASeries(closes, LongMAPeriod)
	rsi, _ := RSISeries(closes, RSIPeriod)
	macd, macdSignal, _ := MACDSeries(closes, MACDFast, MACDSlow, MACDSignal)
	bbUpper, bbLower, _ := BollingerSeries(closes, BollingerBars, BollingerWidth)
	vol, _ := RollingVolatility(returns, VolatilityBars)

	snaps := make([]model.IndicatorSnapshot, len(bars))
	for i, b := range bars {
		snap := model.IndicatorSnapshot{
			Time:          b.Time,
			Volume:        b.Volume,
			Return:        returns[i],
			MA20:          ma20[i],
			MA50:          ma50[i],
			MA200:         ma200[i],
			RSI14:         rsi[i],
			MACD:          macd[i],
			MACDSignal:    macdSignal[i],
			BBUpper:       bbUpper[i],
			BBLower:       bbLower[i],
			Volatility20d: vol[i],
		}
		if isFinite(b.Close) {
			snap.Close = null.FloatFrom(b.Close)
		}
		snaps[i] = snap
	}
	return &Series{Bars: bars, Snapshots: snaps}
}

// Latest returns the snapshot of the most recent bar.
func (s *Series) Latest() model.IndicatorSnapshot {
	return s.Snapshots[len(s.Snapshots)-1]
}

// Returns lists the defined returns in order, dropping undefined ones.
func (s *Series) Returns() model.ReturnSeries {
	out := make(model.ReturnSeries, 0, len(s.Snapshots))
	for _, snap := range s.Snapshots {
		if snap.Return.Valid {
			out = append(out, model.ReturnPoint{Time: snap.Time, Return: snap.Return.Float64})
		}
	}
	return out
}

// Closes returns the raw close column.
func (s *Series) Closes() []float64 {
	return Closes(s.Bars)
}

// ReturnsByDate builds a return series directly from bars, as used for a
// benchmark that needs no indicators.
func ReturnsByDate(bars []model.OHLCV) model.ReturnSeries {
	s := Prepare(bars)
	if s == nil {
		return nil
	}
	return s.Returns()
}
