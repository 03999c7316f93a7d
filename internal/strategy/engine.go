package strategy

import (
	"math"

	"StockScope/internal/model"
)

// InsufficientDataReason is the only reason given when close or RSI is undefined.
const InsufficientDataReason = "Insufficient data for analysis"

// Bands maps a net strength to a label and confidence, checked in order.
var Bands = []struct {
	Match      func(strength int) bool
	Label      model.SignalLabel
	Base, Step float64
	Cap        float64
}{
	{func(s int) bool { return s >= 3 }, model.StrongBuy, 60, 5, 95},
	{func(s int) bool { return s >= 1 }, model.Buy, 50, 8, 85},
	{func(s int) bool { return s <= -3 }, model.StrongSell, 60, 5, 95},
	{func(s int) bool { return s <= -1 }, model.Sell, 50, 8, 85},
}

// mapStrength converts a net strength into a label and confidence.
func mapStrength(strength int) (model.SignalLabel, float64) {
	abs := math.Abs(float64(strength))
	for _, b := range Bands {
		if b.Match(strength) {
			return b.Label, math.Min(b.Cap, b.Base+b.Step*abs)
		}
	}
	return model.Hold, 50
}

// Generate scores the latest indicator snapshot. It is a pure function of its
// input. Undefined indicators are skipped; an undefined close or RSI yields
// the insufficient-data floor.
func Generate(snap model.IndicatorSnapshot) model.SignalResult {
	if !snap.Close.Valid || !snap.RSI14.Valid {
		return model.SignalResult{
			Label:      model.Hold,
			Confidence: 25,
			Strength:   0,
			Reasons:    []string{InsufficientDataReason},
		}
	}
	price := snap.Close.Float64

	votes := []vote{scoreRSI(snap.RSI14.Float64)}
	for _, score := range []func() (vote, bool){
		func() (vote, bool) { return scoreTrend(snap, price) },
		func() (vote, bool) { return scoreMomentum(snap) },
		func() (vote, bool) { return scoreBands(snap, price) },
	} {
		if v, ok := score(); ok {
			votes = append(votes, v)
		}
	}

	strength := 0
	reasons := make([]string, 0, len(votes))
	for _, v := range votes {
		strength += v.Points
		reasons = append(reasons, v.Reason)
	}

	label, confidence := mapStrength(strength)
	return model.SignalResult{
		Label:      label,
		Confidence: confidence,
		Strength:   strength,
		Reasons:    reasons,
	}
}
