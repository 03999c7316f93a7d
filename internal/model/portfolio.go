package model

import "time"

// WatchlistItem is a tracked symbol.
type WatchlistItem struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name"`
	Sector      string    `json:"sector"`
	MarketCap   string    `json:"market_cap"`
	IsActive    bool      `json:"is_active"`
	AddedByUser bool      `json:"added_by_user"`
	CreatedAt   time.Time `json:"created_at"`
}

// Holding is a symbol held in the user portfolio.
type Holding struct {
	Symbol              string      `json:"symbol"`
	AddedDate           string      `json:"added_date"`
	AddedPrice          float64     `json:"added_price"`
	CurrentPrice        float64     `json:"current_price"`
	SignalWhenAdded     SignalLabel `json:"signal_when_added"`
	ConfidenceWhenAdded float64     `json:"confidence_when_added"`
	CreatedAt           time.Time   `json:"created_at"`
}

// HoldingPerformance is the gain of one holding since it was added.
type HoldingPerformance struct {
	Holding
	Gain        float64 `json:"gain"`
	GainPercent float64 `json:"gain_percent"`
}

// PortfolioPerformance aggregates all holdings.
type PortfolioPerformance struct {
	TotalInvested    float64              `json:"total_invested"`
	TotalCurrent     float64              `json:"total_current"`
	TotalGain        float64              `json:"total_gain"`
	TotalGainPercent float64              `json:"total_gain_percent"`
	Stocks           []HoldingPerformance `json:"stocks"`
}

// Prediction records a forecast so its accuracy can be checked later.
type Prediction struct {
	ID                 string      `json:"id"`
	Symbol             string      `json:"symbol"`
	PredictionDate     time.Time   `json:"prediction_date"`
	Signal             SignalLabel `json:"signal"`
	Confidence         float64     `json:"confidence"`
	PriceWhenPredicted float64     `json:"price_when_predicted"`
	// Targets and Actuals are keyed by horizon name.
	Targets  map[string]float64 `json:"targets"`
	Actuals  map[string]float64 `json:"actuals"`
	Accuracy map[string]float64 `json:"accuracy"`
}
