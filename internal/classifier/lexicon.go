package classifier

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"csr-insights-go/internal/types"
)

// CompoundScorer aggregates word and punctuation valence into a single
// compound polarity in [-1, 1].
type CompoundScorer interface {
	Compound(text string) float64
}

// VaderScorer computes VADER compound scores.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

type lexiconBackend struct {
	scorer CompoundScorer
}

func (lexiconBackend) kind() Backend { return BackendLexicon }

func (b lexiconBackend) polarity(text string) (Polarity, error) {
	return lexiconPolarity(b.scorer.Compound(text), strings.ToLower(text)), nil
}

// lexiconPolarity applies the customer-service phrase overrides to a raw
// compound score and maps the result onto the five-label scale.
func lexiconPolarity(compound float64, lower string) Polarity {
	neg := countMatches(lower, strongNegativePhrases)
	pos := countMatches(lower, strongPositivePhrases)

	if neg > 0 {
		compound = math.Min(compound, -0.3-0.2*float64(neg))
	}
	if pos > 0 {
		compound = math.Max(compound, 0.3+0.2*float64(pos))
	}
	compound = clamp(compound, -1, 1)

	p := Polarity{Score: compound, Confidence: math.Abs(compound)}
	switch {
	case compound >= 0.5:
		p.Label = types.VeryPositive
	case compound >= 0.1:
		p.Label = types.Positive
	case compound <= -0.5:
		p.Label = types.VeryNegative
	case compound <= -0.1:
		p.Label = types.Negative
	case neg > 0:
		p.Label, p.Score = types.Negative, -0.3
	case pos > 0:
		p.Label, p.Score = types.Positive, 0.3
	default:
		p.Label = types.Neutral
	}
	return p
}
