package news

import (
	"math"
	"strings"
	"unicode"

	"StockScope/internal/model"
)

// Sentiment labels.
const (
	VeryPositive = "VERY POSITIVE"
	Positive     = "POSITIVE"
	Neutral      = "NEUTRAL"
	Negative     = "NEGATIVE"
	VeryNegative = "VERY NEGATIVE"
)

const (
	labelThreshold  = 0.05
	strongThreshold = 0.15
	minTextLen      = 5
)

// lexicon holds the polarity of opinion words found in market headlines.
var lexicon = map[string]float64{
	"beat": 0.6, "beats": 0.6, "surge": 0.7, "surges": 0.7, "soar": 0.8, "soars": 0.8,
	"rally": 0.6, "rallies": 0.6, "gain": 0.4, "gains": 0.4, "jump": 0.5, "jumps": 0.5,
	"record": 0.5, "strong": 0.45, "growth": 0.4, "profit": 0.4, "profits": 0.4,
	"upgrade": 0.6, "upgraded": 0.6, "outperform": 0.6, "bullish": 0.7, "buy": 0.3,
	"positive": 0.4, "good": 0.7, "great": 0.8, "excellent": 1.0, "best": 1.0,
	"boost": 0.5, "boosts": 0.5, "rise": 0.4, "rises": 0.4, "higher": 0.25, "up": 0.1,
	"optimistic": 0.5, "win": 0.6, "wins": 0.6, "success": 0.6, "successful": 0.7,
	"innovative": 0.5, "robust": 0.5, "exceeds": 0.5, "tops": 0.4,

	"miss": -0.6, "misses": -0.6, "plunge": -0.8, "plunges": -0.8, "crash": -0.9,
	"fall": -0.4, "falls": -0.4, "drop": -0.45, "drops": -0.45, "slump": -0.6,
	"loss": -0.5, "losses": -0.5, "weak": -0.5, "decline": -0.45, "declines": -0.45,
	"downgrade": -0.6, "downgraded": -0.6, "underperform": -0.6, "bearish": -0.7,
	"sell": -0.3, "negative": -0.3, "bad": -0.7, "worst": -1.0, "terrible": -1.0,
	"lawsuit": -0.5, "probe": -0.4, "fraud": -0.9, "recall": -0.4, "layoffs": -0.5,
	"lower": -0.25, "down": -0.15, "cut": -0.4, "cuts": -0.4, "warning": -0.5,
	"concern": -0.35, "concerns": -0.35, "risk": -0.2, "fears": -0.5, "volatile": -0.2,
}

var negators = map[string]bool{"not": true, "no": true, "never": true, "isn't": true, "don't": true, "without": true}

// Score rates text polarity in [-1, 1]. Magnitude is the share of words that
// carry an opinion. Text shorter than five characters is neutral.
func Score(text string) model.Sentiment {
	text = strings.TrimSpace(text)
	if len(text) < minTextLen {
		return model.Sentiment{Label: Neutral}
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	var sum float64
	var hits int
	negate := false
	for _, w := range words {
		if negators[w] {
			negate = true
			continue
		}
		if p, ok := lexicon[w]; ok {
			if negate {
				p *= -0.5
			}
			sum += p
			hits++
		}
		negate = false
	}

	s := model.Sentiment{Label: Neutral}
	if hits == 0 {
		return s
	}
	s.Score = math.Max(-1, math.Min(1, sum/float64(hits)))
	s.Magnitude = float64(hits) / float64(len(words))
	s.Label = labelFor(s.Score, false)
	return s
}

// labelFor maps a score to a label. Aggregate scores also get the VERY grades.
func labelFor(score float64, graded bool) string {
	switch {
	case graded && score > strongThreshold:
		return VeryPositive
	case score > labelThreshold:
		return Positive
	case graded && score < -strongThreshold:
		return VeryNegative
	case score < -labelThreshold:
		return Negative
	}
	return Neutral
}
