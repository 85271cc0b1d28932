// Package classifier turns customer speech into a sentiment, emotion,
// urgency, issue category and routing recommendation.
package classifier

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/logger"
	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/types"
)

// Options configures a Classifier. Only the fields relevant to the chosen
// backend are read.
type Options struct {
	Backend Backend

	// Scorer overrides the lexicon scorer (VADER by default).
	Scorer CompoundScorer

	// Model or ModelPath supply the trained backend.
	Model     *NaiveBayes
	ModelPath string

	Neural *NeuralClient

	Log *logrus.Entry
}

// Classifier is safe for concurrent use; it holds no per-call state.
type Classifier struct {
	backend scorer
	log     *logrus.Entry
}

// New resolves the configured backend once. A backend that cannot be set up
// is replaced by the next one in the chain lexicon → trained → rule_based
// (neural falls back straight to rule_based) and a warning is logged.
func New(opts Options) *Classifier {
	log := opts.Log
	if log == nil {
		log = logger.New().Component("classifier")
	}
	c := &Classifier{log: log}

	chain := []Backend{opts.Backend}
	switch opts.Backend {
	case BackendLexicon, "":
		chain = []Backend{BackendLexicon, BackendTrained, BackendRuleBased}
	case BackendTrained:
		chain = append(chain, BackendRuleBased)
	case BackendNeural:
		chain = append(chain, BackendRuleBased)
	}

	for _, b := range chain {
		s, err := resolve(b, opts)
		if err != nil {
			log.WithField("backend", b).WithField("error", err.Error()).Warn("sentiment backend unavailable, downgrading")
			continue
		}
		c.backend = s
		break
	}
	if c.backend == nil {
		c.backend = ruleBackend{}
	}
	log.WithField("backend", c.backend.kind()).Info("classifier ready")
	return c
}

func resolve(b Backend, opts Options) (scorer, error) {
	switch b {
	case BackendLexicon:
		s := opts.Scorer
		if s == nil {
			s = NewVaderScorer()
		}
		return lexiconBackend{scorer: s}, nil
	case BackendTrained:
		m := opts.Model
		if m == nil {
			if opts.ModelPath == "" {
				return nil, errors.New("no trained model configured")
			}
			loaded, err := LoadNaiveBayes(opts.ModelPath)
			if err != nil {
				return nil, err
			}
			m = loaded
		}
		return trainedBackend{model: m}, nil
	case BackendNeural:
		if opts.Neural == nil || opts.Neural.URL == "" {
			return nil, errors.New("no neural endpoint configured")
		}
		return neuralBackend{client: opts.Neural}, nil
	case BackendRuleBased:
		return ruleBackend{}, nil
	}
	return nil, errors.New("unknown backend " + string(b))
}

// Backend reports the backend actually in use after resolution.
func (c *Classifier) Backend() Backend {
	return c.backend.kind()
}

// Predict classifies the customer side of a transcript. When CustomerText is
// empty the customer lines are pulled out of FullTranscript; when no text is
// left the neutral zero prediction is returned.
func (c *Classifier) Predict(t types.Transcript) types.SentimentPrediction {
	start := time.Now()
	defer func() { metrics.PredictionDurationSeconds.Observe(time.Since(start).Seconds()) }()

	text := strings.TrimSpace(t.CustomerText)
	if text == "" && t.FullTranscript != "" {
		text = transcript.CustomerText(t.FullTranscript)
	}
	if text == "" {
		return neutralPrediction(t.ID)
	}

	backend := c.backend.kind()
	p, err := c.backend.polarity(text)
	if err != nil {
		c.log.WithField("backend", backend).WithField("error", err.Error()).Warn("backend prediction failed, using rule-based")
		metrics.BackendFallbacks.WithLabelValues(string(backend)).Inc()
		backend = BackendRuleBased
		p = rulePolarity(text)
	}

	a := postProcess(strings.ToLower(text), p.Score)
	pred := types.SentimentPrediction{
		TranscriptID:  t.ID,
		Label:         p.Label,
		Score:         clamp(p.Score, -1, 1),
		Emotion:       a.Emotion,
		UrgencyScore:  a.Urgency,
		Confidence:    clamp(p.Confidence, 0, 1),
		Keywords:      a.Keywords,
		IssueCategory: a.Category,
		Routing:       a.Routing,
	}

	metrics.PredictionsTotal.WithLabelValues(string(pred.Label), string(backend)).Inc()
	metrics.RoutingRecommendations.WithLabelValues(string(pred.Routing)).Inc()
	c.log.WithFields(logrus.Fields{
		"transcript_id": pred.TranscriptID,
		"label":         pred.Label,
		"score":         pred.Score,
		"emotion":       pred.Emotion,
		"urgency":       pred.UrgencyScore,
		"routing":       pred.Routing,
	}).Debug("transcript classified")
	return pred
}

// Classify builds a Transcript from its parts and predicts it. A missing id
// is generated and a zero timestamp is set to now.
func (c *Classifier) Classify(id, customerText, agentText, fullTranscript string, ts time.Time) types.SentimentPrediction {
	if id == "" {
		id = "call_" + uuid.NewString()[:8]
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	return c.Predict(types.Transcript{
		ID:             id,
		CustomerText:   customerText,
		AgentText:      agentText,
		FullTranscript: fullTranscript,
		Timestamp:      ts,
	})
}

// BatchPredict classifies each transcript in order.
func (c *Classifier) BatchPredict(ts []types.Transcript) []types.SentimentPrediction {
	out := make([]types.SentimentPrediction, 0, len(ts))
	for _, t := range ts {
		out = append(out, c.Predict(t))
	}
	return out
}

func neutralPrediction(id string) types.SentimentPrediction {
	return types.SentimentPrediction{
		TranscriptID:  id,
		Label:         types.Neutral,
		Emotion:       types.EmotionNeutral,
		Keywords:      []string{},
		IssueCategory: types.CategoryGeneral,
		Routing:       types.RouteStandardAgent,
	}
}
