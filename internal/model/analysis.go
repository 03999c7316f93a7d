package model

// PriceRange is a closed price interval.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ProbabilityBand is the projected price distribution for one horizon.
type ProbabilityBand struct {
	ExpectedPrice     float64    `json:"expected_price"`
	Range68           PriceRange `json:"prob_68_range"`
	Range95           PriceRange `json:"prob_95_range"`
	ExpectedReturnPct float64    `json:"expected_return"`
	VolatilityPct     float64    `json:"volatility"`
	// Placeholder marks fixed conservative bands used for short histories.
	Placeholder bool `json:"placeholder"`
}

// RiskMetrics are annualized risk-adjusted return statistics.
type RiskMetrics struct {
	AnnualReturnPct     float64 `json:"annual_return"`
	AnnualVolatilityPct float64 `json:"annual_volatility"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	Placeholder         bool    `json:"placeholder"`
}

// RelativePerformance compares a stock against the benchmark.
type RelativePerformance struct {
	Beta                   float64 `json:"beta"`
	AlphaPct               float64 `json:"alpha"`
	Correlation            float64 `json:"correlation"`
	RelativePerformancePct float64 `json:"relative_performance"`
	MarketReturnPct        float64 `json:"market_return"`
}

// TechnicalDetails summarizes the latest indicator values for display.
type TechnicalDetails struct {
	MA20       float64  `json:"ma_20"`
	MA50       float64  `json:"ma_50"`
	MA200      float64  `json:"ma_200"`
	MACD       float64  `json:"macd"`
	BBPosition float64  `json:"bb_position"`
	Reasons    []string `json:"reasons"`
}

// StockAnalysis is the full analysis record for one symbol.
type StockAnalysis struct {
	Symbol              string                     `json:"symbol"`
	CurrentPrice        float64                    `json:"current_price"`
	Signal              SignalLabel                `json:"signal"`
	Confidence          float64                    `json:"confidence"`
	Strength            int                        `json:"strength"`
	RSI                 float64                    `json:"rsi"`
	Volume              int64                      `json:"volume"`
	VolatilityPct       float64                    `json:"volatility"`
	ProbabilityRanges   map[string]ProbabilityBand `json:"probability_ranges"`
	RiskMetrics         RiskMetrics                `json:"risk_metrics"`
	RelativePerformance *RelativePerformance       `json:"relative_performance"`
	TechnicalDetails    TechnicalDetails           `json:"technical_details"`
}
