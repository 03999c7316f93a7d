package model

import "time"

// Article is a news item about a symbol.
type Article struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	PublishedAt   time.Time `json:"published_date"`
	Source        string    `json:"source"`
	Sentiment     Sentiment `json:"sentiment"`
	ProviderScore *float64  `json:"provider_score,omitempty"`
}

// Sentiment is the polarity of one piece of text.
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
	Label     string  `json:"label"`
}

// NewsSentiment aggregates the sentiment of recent articles.
type NewsSentiment struct {
	Symbol           string    `json:"symbol"`
	OverallSentiment string    `json:"overall_sentiment"`
	SentimentScore   float64   `json:"sentiment_score"`
	Confidence       float64   `json:"confidence"`
	ArticleCount     int       `json:"article_count"`
	RecentArticles   []Article `json:"recent_articles"`
}

// SectorPerformance holds one sector ETF's recent performance.
type SectorPerformance struct {
	Sector           string  `json:"sector"`
	ETF              string  `json:"etf"`
	CurrentPrice     float64 `json:"current_price"`
	Performance1D    float64 `json:"performance_1d"`
	Performance1W    float64 `json:"performance_1w"`
	Performance1M    float64 `json:"performance_1m"`
	Performance3M    float64 `json:"performance_3m"`
	Volatility       float64 `json:"volatility"`
	RelativeStrength float64 `json:"relative_strength"`
}

// EarningsReport is one reported quarter.
type EarningsReport struct {
	Date            string  `json:"date"`
	FiscalQuarter   string  `json:"fiscal_quarter"`
	EstimatedEPS    float64 `json:"estimated_eps"`
	ActualEPS       float64 `json:"actual_eps"`
	SurprisePercent float64 `json:"surprise_percent"`
}

// UpcomingEarnings describes the next scheduled report, if any.
type UpcomingEarnings struct {
	HasUpcoming      bool   `json:"has_upcoming"`
	NextEarningsDate string `json:"next_earnings_date,omitempty"`
	DaysUntil        int    `json:"days_until_earnings,omitempty"`
}

// AdvancedAnalysis combines news sentiment and earnings for one symbol.
type AdvancedAnalysis struct {
	Symbol           string           `json:"symbol"`
	NewsSentiment    *NewsSentiment   `json:"news_sentiment"`
	UpcomingEarnings UpcomingEarnings `json:"upcoming_earnings"`
	EarningsHistory  []EarningsReport `json:"earnings_history"`
}
