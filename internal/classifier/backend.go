package classifier

import (
	"fmt"
	"strings"

	"csr-insights-go/internal/types"
)

// Backend selects the sentiment scoring strategy.
type Backend string

const (
	BackendLexicon   Backend = "lexicon"
	BackendTrained   Backend = "trained"
	BackendNeural    Backend = "neural"
	BackendRuleBased Backend = "rule_based"
)

// ParseBackend accepts the configured backend name. "vader" and "sklearn"
// are accepted as aliases for lexicon and trained.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lexicon", "vader":
		return BackendLexicon, nil
	case "trained", "sklearn", "naive_bayes":
		return BackendTrained, nil
	case "neural", "transformers":
		return BackendNeural, nil
	case "rule_based", "rules":
		return BackendRuleBased, nil
	}
	return "", fmt.Errorf("unknown classifier backend %q", s)
}

// Polarity is what a backend produces: the label, score and confidence
// that the shared stages build on.
type Polarity struct {
	Label      types.SentimentLabel
	Score      float64
	Confidence float64
}

type scorer interface {
	kind() Backend
	polarity(text string) (Polarity, error)
}
