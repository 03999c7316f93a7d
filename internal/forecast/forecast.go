// Package forecast projects price bands from the historical daily return
// distribution under an i.i.d. normal assumption.
package forecast

import (
	"math"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// MinReturns is the shortest history that gets a statistical projection.
const MinReturns = 30

// Horizon is a named projection window in trading days.
type Horizon struct {
	Name string
	Days int
	// placeholder half-widths (fractions) and volatility (%) for short histories
	halfWidth68, halfWidth95, volatility float64
}

// Horizons are the fixed projection windows.
var Horizons = []Horizon{
	{Name: "1_week", Days: 5, halfWidth68: 0.02, halfWidth95: 0.05, volatility: 5},
	{Name: "1_month", Days: 22, halfWidth68: 0.05, halfWidth95: 0.10, volatility: 10},
	{Name: "3_months", Days: 66, halfWidth68: 0.10, halfWidth95: 0.20, volatility: 15},
}

// Band floors as fractions of the current price.
const (
	floor68 = 0.5
	floor95 = 0.3
)

// ProbabilityRanges returns one band per horizon. With fewer than MinReturns
// returns every band is a fixed placeholder.
func ProbabilityRanges(returns model.ReturnSeries, price float64) map[string]model.ProbabilityBand {
	out := make(map[string]model.ProbabilityBand, len(Horizons))
	values := returns.Values()
	if len(values) < MinReturns {
		for _, h := range Horizons {
			out[h.Name] = placeholder(h, price)
		}
		return out
	}

	mean := calculator.Mean(values)
	std := calculator.StdDev(values)

	for _, h := range Horizons {
		days := float64(h.Days)
		hMean := mean * days
		hStd := std * math.Sqrt(days)
		out[h.Name] = model.ProbabilityBand{
			ExpectedPrice: price * (1 + hMean),
			Range68: model.PriceRange{
				Low:  math.Max(price*(1+hMean-hStd), price*floor68),
				High: price * (1 + hMean + hStd),
			},
			Range95: model.PriceRange{
				Low:  math.Max(price*(1+hMean-2*hStd), price*floor95),
				High: price * (1 + hMean + 2*hStd),
			},
			ExpectedReturnPct: hMean * 100,
			VolatilityPct:     hStd * 100,
		}
	}
	return out
}

func placeholder(h Horizon, price float64) model.ProbabilityBand {
	return model.ProbabilityBand{
		ExpectedPrice:     price,
		Range68:           model.PriceRange{Low: price * (1 - h.halfWidth68), High: price * (1 + h.halfWidth68)},
		Range95:           model.PriceRange{Low: price * (1 - h.halfWidth95), High: price * (1 + h.halfWidth95)},
		ExpectedReturnPct: 0,
		VolatilityPct:     h.volatility,
		Placeholder:       true,
	}
}
