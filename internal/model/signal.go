package model

// SignalLabel is the categorical trading recommendation.
type SignalLabel string

const (
	StrongBuy  SignalLabel = "STRONG BUY"
	Buy        SignalLabel = "BUY"
	Hold       SignalLabel = "HOLD"
	Sell       SignalLabel = "SELL"
	StrongSell SignalLabel = "STRONG SELL"
)

// SignalLabels lists every label from most bullish to most bearish.
var SignalLabels = []SignalLabel{StrongBuy, Buy, Hold, Sell, StrongSell}

// IsBuy reports whether the label recommends buying.
func (l SignalLabel) IsBuy() bool {
	return l == StrongBuy || l == Buy
}

// SignalResult is the output of the rule-based signal generator.
type SignalResult struct {
	Label      SignalLabel `json:"signal"`
	Confidence float64     `json:"confidence"`
	Strength   int         `json:"strength"`
	Reasons    []string    `json:"reasons"`
}
