package strategy

import (
	"fmt"

	"StockScope/internal/model"
)

// vote is one rule's contribution to the signal strength.
type vote struct {
	Points int
	Reason string
}

// RSI thresholds.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// scoreRSI scores the 14-bar RSI. Caller guarantees it is defined.
func scoreRSI(rsi float64) vote {
	switch {
	case rsi < RSIOversold:
		return vote{3, "Oversold (RSI < 30)"}
	case rsi > RSIOverbought:
		return vote{-3, "Overbought (RSI > 70)"}
	default:
		return vote{0, fmt.Sprintf("RSI %.1f - Neutral zone", rsi)}
	}
}

// scoreTrend scores the alignment of price with the 20 and 50 bar averages.
// Without a 50-bar average only the position against the 20-bar average counts.
func scoreTrend(snap model.IndicatorSnapshot, price float64) (vote, bool) {
	if !snap.MA20.Valid {
		return vote{}, false
	}
	ma20 := snap.MA20.Float64
	if snap.MA50.Valid {
		ma50 := snap.MA50.Float64
		switch {
		case price > ma20 && ma20 > ma50:
			return vote{2, "Strong uptrend"}, true
		case price < ma20 && ma20 < ma50:
			return vote{-2, "Strong downtrend"}, true
		}
	}
	if price > ma20 {
		return vote{1, "Above 20-day average"}, true
	}
	return vote{-1, "Below 20-day average"}, true
}

func scoreMomentum(snap model.IndicatorSnapshot) (vote, bool) {
	if !snap.MACD.Valid || !snap.MACDSignal.Valid {
		return vote{}, false
	}
	if snap.MACD.Float64 > snap.MACDSignal.Float64 {
		return vote{1, "Positive momentum"}, true
	}
	return vote{-1, "Negative momentum"}, true
}

// scoreBands only votes when price has left the Bollinger envelope.
func scoreBands(snap model.IndicatorSnapshot, price float64) (vote, bool) {
	if !snap.BBUpper.Valid || !snap.BBLower.Valid {
		return vote{}, false
	}
	switch {
	case price < snap.BBLower.Float64:
		return vote{1, "Below lower Bollinger Band"}, true
	case price > snap.BBUpper.Float64:
		return vote{-1, "Above upper Bollinger Band"}, true
	}
	return vote{}, false
}
