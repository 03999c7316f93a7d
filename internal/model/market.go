package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// ReturnPoint is one simple return, keyed by the session it closes.
type ReturnPoint struct {
	Time   time.Time `json:"time"`
	Return float64   `json:"return"`
}

// ReturnSeries is an ascending, NaN-free sequence of simple returns.
type ReturnSeries []ReturnPoint

// Values returns the bare return values in order.
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Return
	}
	return out
}

// Profile describes the listing behind a symbol.
type Profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Sector      string  `json:"sector"`
	MarketCap   float64 `json:"market_cap"`
	Currency    string  `json:"currency"`
}
