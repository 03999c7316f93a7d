package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// IndicatorSnapshot holds the derived indicator values for one bar.
// A field is invalid until enough preceding bars exist to compute it.
type IndicatorSnapshot struct {
	Time       time.Time  `json:"time"`
	Close      null.Float `json:"close"`
	Volume     float64    `json:"volume"`
	Return     null.Float `json:"return"`
	MA20       null.Float `json:"ma_20"`
	MA50       null.Float `json:"ma_50"`
	MA200      null.Float `json:"ma_200"`
	RSI14      null.Float `json:"rsi_14"`
	MACD       null.Float `json:"macd"`
	MACDSignal null.Float `json:"macd_signal"`
	BBUpper    null.Float `json:"bb_upper"`
	BBLower    null.Float `json:"bb_lower"`
	// Volatility20d is the annualized 20-bar return deviation as a fraction.
	Volatility20d null.Float `json:"volatility_20d"`
}
