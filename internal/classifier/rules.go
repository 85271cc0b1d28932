package classifier

import (
	"strings"

	"csr-insights-go/internal/types"
)

const ruleConfidence = 0.6

type ruleBackend struct{}

func (ruleBackend) kind() Backend { return BackendRuleBased }

func (ruleBackend) polarity(text string) (Polarity, error) {
	return rulePolarity(text), nil
}

// rulePolarity scores text by keyword density. It never fails and is the
// last resort for every other backend.
func rulePolarity(text string) Polarity {
	lower := strings.ToLower(text)
	pos := countMatches(lower, rulePositiveWords)
	neg := countMatches(lower, ruleNegativeWords)
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	score := clamp(float64(pos-neg)/float64(words)*5, -1, 1)

	var label types.SentimentLabel
	switch {
	case score >= 0.6:
		label = types.VeryPositive
	case score >= 0.2:
		label = types.Positive
	case score <= -0.6:
		label = types.VeryNegative
	case score <= -0.2:
		label = types.Negative
	default:
		label = types.Neutral
	}
	return Polarity{Label: label, Score: score, Confidence: ruleConfidence}
}
