// Package risk computes annualized risk-adjusted statistics for a return
// series, alone and against a benchmark.
package risk

import (
	"math"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// MinReturns is the shortest history that gets computed metrics.
const MinReturns = 30

// MinCommonDates is the overlap required against the benchmark.
const MinCommonDates = 20

const defaultMaxDrawdown = -0.05

// Placeholder is returned for histories too short to measure.
var Placeholder = model.RiskMetrics{
	AnnualReturnPct:     0,
	AnnualVolatilityPct: 15,
	SharpeRatio:         0,
	SortinoRatio:        0,
	MaxDrawdownPct:      defaultMaxDrawdown * 100,
	CalmarRatio:         0,
	Placeholder:         true,
}

// Metrics computes annual return, volatility, Sharpe, Sortino, max drawdown
// and Calmar. riskFree is an annualized fraction.
func Metrics(returns model.ReturnSeries, riskFree float64) model.RiskMetrics {
	values := returns.Values()
	if len(values) < MinReturns {
		return Placeholder
	}
	annualize := math.Sqrt(calculator.TradingDaysPerYear)
	annualReturn := calculator.Mean(values) * calculator.TradingDaysPerYear
	annualVol := calculator.StdDev(values) * annualize
	if math.IsNaN(annualReturn) || math.IsNaN(annualVol) {
		return Placeholder
	}

	excess := annualReturn - riskFree
	sharpe := safeDiv(excess, annualVol)

	// A single negative return has no sample deviation; safeDiv turns the
	// resulting NaN into a zero Sortino.
	downside := annualVol
	if neg := negatives(values); len(neg) > 0 {
		downside = calculator.StdDev(neg) * annualize
	}
	sortino := safeDiv(excess, downside)

	maxDD := MaxDrawdown(values)
	calmar := 0.0
	if maxDD != 0 {
		calmar = annualReturn / math.Abs(maxDD)
	}

	return model.RiskMetrics{
		AnnualReturnPct:     annualReturn * 100,
		AnnualVolatilityPct: annualVol * 100,
		SharpeRatio:         sharpe,
		SortinoRatio:        sortino,
		MaxDrawdownPct:      maxDD * 100,
		CalmarRatio:         calmar,
	}
}

// MaxDrawdown returns the most negative peak-to-trough change of the
// compounded return path as a fraction. A path that never falls gives 0.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return defaultMaxDrawdown
	}
	cum, peak, worst := 1.0, math.Inf(-1), 0.0
	for _, r := range values {
		cum *= 1 + r
		peak = math.Max(peak, cum)
		if dd := cum/peak - 1; dd < worst {
			worst = dd
		}
	}
	if math.IsNaN(worst) {
		return defaultMaxDrawdown
	}
	return worst
}

// Relative compares a stock against the benchmark over their common dates.
// It returns nil when the benchmark is missing or the overlap is too short.
func Relative(stock, bench model.ReturnSeries, riskFree float64) *model.RelativePerformance {
	if len(bench) == 0 {
		return nil
	}
	s, b := align(stock, bench)
	if len(s) < MinCommonDates {
		return nil
	}

	stockAnnual := calculator.Mean(s) * calculator.TradingDaysPerYear
	benchAnnual := calculator.Mean(b) * calculator.TradingDaysPerYear

	beta := 1.0
	if v := calculator.Variance(b); v > 0 {
		beta = calculator.Covariance(s, b) / v
	}
	alpha := stockAnnual - (riskFree + beta*(benchAnnual-riskFree))

	corr := calculator.Correlation(s, b)
	if math.IsNaN(corr) {
		corr = 0
	}

	return &model.RelativePerformance{
		Beta:                   beta,
		AlphaPct:               alpha * 100,
		Correlation:            corr,
		RelativePerformancePct: (stockAnnual - benchAnnual) * 100,
		MarketReturnPct:        benchAnnual * 100,
	}
}

// align restricts both series to the sessions they share, keyed by the
// session date in each bar's own location. Fetchers stamp bars in the
// exchange time zone, so a Sydney session that opens before 00:00 UTC still
// pairs with the benchmark bar of the same trading day.
func align(stock, bench model.ReturnSeries) (s, b []float64) {
	byDate := make(map[string]float64, len(bench))
	for _, p := range bench {
		byDate[dateKey(p)] = p.Return
	}
	for _, p := range stock {
		if r, ok := byDate[dateKey(p)]; ok {
			s = append(s, p.Return)
			b = append(b, r)
		}
	}
	return s, b
}

func dateKey(p model.ReturnPoint) string {
	return p.Time.Format("2006-01-02")
}

func negatives(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

func safeDiv(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}
