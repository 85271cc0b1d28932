package classifier

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csr-insights-go/internal/types"
)

// fixedScorer returns the same compound score for any text.
type fixedScorer float64

func (f fixedScorer) Compound(string) float64 { return float64(f) }

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newLexicon(compound float64) *Classifier {
	return New(Options{Backend: BackendLexicon, Scorer: fixedScorer(compound), Log: quietLog()})
}

func TestPredictEmptyTextIsNeutral(t *testing.T) {
	c := newLexicon(0.9)

	for name, tr := range map[string]types.Transcript{
		"all_empty":            {ID: "t1"},
		"whitespace":           {ID: "t2", CustomerText: "   "},
		"agent_only":           {ID: "t3", AgentText: "How can I help you today?"},
		"full_with_agent_only": {ID: "t4", FullTranscript: "Agent: hello\nAgent: anyone there?"},
	} {
		t.Run(name, func(t *testing.T) {
			p := c.Predict(tr)
			assert.Equal(t, tr.ID, p.TranscriptID)
			assert.Equal(t, types.Neutral, p.Label)
			assert.Zero(t, p.Score)
			assert.Zero(t, p.UrgencyScore)
			assert.Zero(t, p.Confidence)
			assert.Empty(t, p.Keywords)
		})
	}
}

func TestPredictExtractsCustomerLines(t *testing.T) {
	c := newLexicon(0)
	p := c.Predict(types.Transcript{
		ID:             "t1",
		FullTranscript: "Agent: Thanks for calling, is everything perfect?\nCustomer: my bill has a weird charge",
	})
	// "perfect" is agent speech and must not lift the score
	assert.Equal(t, types.Neutral, p.Label)
	assert.Equal(t, types.CategoryBilling, p.IssueCategory)
	assert.ElementsMatch(t, []string{"bill", "charge"}, p.Keywords)
}

func TestPredictDropsAgentLinesAfterUnlabeledOpener(t *testing.T) {
	full := strings.Repeat("so I am calling today about the account ", 2) +
		"\nAgent: I hate to say it but this is terrible, awful and horrible" +
		"\nCustomer: ok thanks"

	c := New(Options{Backend: BackendRuleBased, Log: quietLog()})
	p := c.Predict(types.Transcript{ID: "t2", FullTranscript: full})
	assert.GreaterOrEqual(t, p.Score, 0.0)
	assert.NotContains(t, []types.SentimentLabel{types.Negative, types.VeryNegative}, p.Label)
}

func TestLexiconPolarity(t *testing.T) {
	tests := map[string]struct {
		compound float64
		text     string
		label    types.SentimentLabel
		score    float64
		conf     float64
	}{
		"very_positive":      {compound: 0.6, text: "nice", label: types.VeryPositive, score: 0.6, conf: 0.6},
		"positive_boundary":  {compound: 0.1, text: "ok", label: types.Positive, score: 0.1, conf: 0.1},
		"neutral_band":       {compound: 0.05, text: "hello", label: types.Neutral, score: 0.05, conf: 0.05},
		"negative_boundary":  {compound: -0.1, text: "meh", label: types.Negative, score: -0.1, conf: 0.1},
		"very_negative":      {compound: -0.5, text: "bad", label: types.VeryNegative, score: -0.5, conf: 0.5},
		"one_strong_neg":     {compound: 0.4, text: "I'm fed up", label: types.VeryNegative, score: -0.5, conf: 0.5},
		"two_strong_neg":     {compound: 0, text: "fed up, I'm leaving", label: types.VeryNegative, score: -0.7, conf: 0.7},
		"strong_neg_kept":    {compound: -0.9, text: "fed up", label: types.VeryNegative, score: -0.9, conf: 0.9},
		"one_strong_pos":     {compound: 0, text: "perfect", label: types.VeryPositive, score: 0.5, conf: 0.5},
		"clamped_below":      {compound: 0, text: "fed up, sick of it, had enough, done with you, leaving", label: types.VeryNegative, score: -1, conf: 1},
		"pos_after_neg_wins": {compound: 0, text: "fed up but perfect", label: types.VeryPositive, score: 0.5, conf: 0.5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := lexiconPolarity(tc.compound, strings.ToLower(tc.text))
			assert.Equal(t, tc.label, p.Label)
			assert.InDelta(t, tc.score, p.Score, 1e-9)
			assert.InDelta(t, tc.conf, p.Confidence, 1e-9)
		})
	}
}

func TestStrongNegativeNeverRaisesScore(t *testing.T) {
	base := lexiconPolarity(-0.2, "i'm fed up")
	more := lexiconPolarity(-0.2, "i'm fed up and sick of this")
	assert.LessOrEqual(t, more.Score, base.Score)
}

func TestRulePolarity(t *testing.T) {
	p := rulePolarity("great service thank you")
	// 2 positive hits over 4 words → 2.5, clamped
	assert.Equal(t, types.VeryPositive, p.Label)
	assert.Equal(t, 1.0, p.Score)
	assert.Equal(t, ruleConfidence, p.Confidence)

	p = rulePolarity("this was a bad experience for me and my family overall today honestly")
	// 1 negative hit over 13 words
	assert.Equal(t, types.Negative, p.Label)
	assert.InDelta(t, -5.0/13, p.Score, 1e-9)

	p = rulePolarity("just calling about my account")
	assert.Equal(t, types.Neutral, p.Label)
	assert.Zero(t, p.Score)
}

func TestDetectEmotion(t *testing.T) {
	tests := map[string]struct {
		text    string
		score   float64
		emotion types.Emotion
	}{
		"keyword":             {text: "i am so confused", score: 0, emotion: types.EmotionConfused},
		"longer_phrase_wins":  {text: "i'm upset and pissed off", score: 0, emotion: types.EmotionAngry},
		"fed_up_bonus":        {text: "i'm angry and fed up", score: 0, emotion: types.EmotionFrustrated},
		"tie_table_order":     {text: "i'm worried and confused", score: 0, emotion: types.EmotionConfused},
		"cancel_bonus":        {text: "i'm upset, i want to cancel", score: -0.5, emotion: types.EmotionFrustrated},
		"cancel_needs_neg":    {text: "i'm upset, i want to cancel", score: 0, emotion: types.EmotionDisappointed},
		"fallback_angry":      {text: "terrible", score: -0.8, emotion: types.EmotionAngry},
		"fallback_frustrated": {text: "terrible", score: -0.5, emotion: types.EmotionFrustrated},
		"fallback_disappoint": {text: "meh", score: -0.2, emotion: types.EmotionDisappointed},
		"fallback_happy":      {text: "wow", score: 0.8, emotion: types.EmotionHappy},
		"fallback_satisfied":  {text: "nice", score: 0.4, emotion: types.EmotionSatisfied},
		"fallback_neutral":    {text: "hello", score: 0, emotion: types.EmotionNeutral},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.emotion, detectEmotion(tc.text, tc.score))
		})
	}
}

func TestUrgencyScore(t *testing.T) {
	// no indicators, positive sentiment
	assert.Zero(t, urgencyScore("thanks", 0.5))
	// floor from sentiment only
	assert.InDelta(t, 0.8, urgencyScore("hmm", -0.9), 1e-9)
	// "urgent" (1) → 0.15, "problem" medium → 0.08
	assert.InDelta(t, 0.23, urgencyScore("urgent problem", 0.1), 1e-9)
	// "fed up": high 2 + 3 bonus = 5 → 0.75 + 0.2 boost, medium none, floor 0.2
	assert.InDelta(t, 1.0, urgencyScore("fed up", -0.1), 1e-9)
	// never above 1
	assert.Equal(t, 1.0, urgencyScore("urgent! manager now, i want to cancel, third time", -0.9))
}

func TestIssueCategoryPriority(t *testing.T) {
	tests := map[string]types.IssueCategory{
		"no signal at home and my bill is wrong": types.CategoryNetworkCoverage,
		"there is an overcharge on my account":   types.CategoryBilling,
		"the support line kept me waiting":       types.CategoryCustomerService,
		"cannot login to my account":             types.CategoryTechnical,
		"the device is defective":                types.CategoryDeviceIssues,
		"i want to upgrade":                      types.CategoryPlanQuestions,
		"what's my account balance?":             types.CategoryGeneral,
	}
	for text, want := range tests {
		assert.Equal(t, want, issueCategory(text), text)
	}
}

func TestRecommendRouting(t *testing.T) {
	assert.Equal(t, types.RouteHumanEscalation, recommendRouting(0, 0.71, types.CategoryGeneral))
	assert.Equal(t, types.RouteHumanEscalation, recommendRouting(-0.51, 0, types.CategoryBilling))
	assert.Equal(t, types.RouteAgentQA, recommendRouting(-0.29, 0.2, types.CategoryBilling))
	assert.Equal(t, types.RouteStandardAgent, recommendRouting(-0.3, 0.2, types.CategoryPlanQuestions))
	assert.Equal(t, types.RouteNetworkHealthDashboard, recommendRouting(0, 0.49, types.CategoryNetworkCoverage))
	assert.Equal(t, types.RouteStandardAgent, recommendRouting(0, 0.5, types.CategoryNetworkCoverage))
}

func TestExtractKeywordsCapped(t *testing.T) {
	text := "t-mobile network coverage signal dropped call billing charge plan data speed 5g lte support agent fix"
	kws := extractKeywords(text)
	assert.Len(t, kws, maxKeywords)
	seen := map[string]bool{}
	for _, k := range kws {
		assert.False(t, seen[k], "duplicate keyword %s", k)
		seen[k] = true
	}
}

func TestPredictBoundsAndIdempotence(t *testing.T) {
	c := New(Options{Backend: BackendLexicon, Log: quietLog()})
	texts := []string{
		"I'm done with this, fed up, sick of it, had enough, leaving, never again, worst company, hate this!!!",
		"Thank you so much, perfect, amazing service, best service, love it, very happy, so grateful",
		"hello",
		"My 5G signal keeps dropping and support is useless",
	}
	for _, text := range texts {
		p := c.Classify("id", text, "", "", time.Time{})
		assert.GreaterOrEqual(t, p.Score, -1.0)
		assert.LessOrEqual(t, p.Score, 1.0)
		assert.GreaterOrEqual(t, p.UrgencyScore, 0.0)
		assert.LessOrEqual(t, p.UrgencyScore, 1.0)
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
		assert.LessOrEqual(t, len(p.Keywords), maxKeywords)

		assert.Equal(t, p, c.Classify("id", text, "", "", time.Time{}))
	}
}

func TestScenarios(t *testing.T) {
	c := New(Options{Backend: BackendLexicon, Log: quietLog()})

	t.Run("frustrated_repeat_caller", func(t *testing.T) {
		p := c.Classify("s1", "I'm extremely frustrated with the service! This is the third time I've called about this issue.", "", "", time.Time{})
		assert.True(t, p.Label.IsNegative(), "label %s", p.Label)
		assert.Equal(t, types.EmotionFrustrated, p.Emotion)
		assert.Greater(t, p.UrgencyScore, 0.4)
		assert.Equal(t, types.RouteHumanEscalation, p.Routing)
	})

	t.Run("grateful_customer", func(t *testing.T) {
		p := c.Classify("s2", "Thank you so much! This is excellent service!", "", "", time.Time{})
		assert.True(t, p.Label.IsPositive(), "label %s", p.Label)
		assert.Contains(t, []types.Emotion{types.EmotionHappy, types.EmotionSatisfied}, p.Emotion)
		assert.NotEqual(t, types.RouteHumanEscalation, p.Routing)
	})

	t.Run("balance_question", func(t *testing.T) {
		p := c.Classify("s4", "What's my account balance?", "", "", time.Time{})
		assert.Equal(t, types.CategoryGeneral, p.IssueCategory)
		assert.NotEqual(t, types.RouteHumanEscalation, p.Routing)
	})
}

func TestBackendResolution(t *testing.T) {
	t.Run("trained_without_model_downgrades", func(t *testing.T) {
		c := New(Options{Backend: BackendTrained, Log: quietLog()})
		assert.Equal(t, BackendRuleBased, c.Backend())
	})
	t.Run("trained_missing_file_downgrades", func(t *testing.T) {
		c := New(Options{Backend: BackendTrained, ModelPath: filepath.Join(t.TempDir(), "nope.json"), Log: quietLog()})
		assert.Equal(t, BackendRuleBased, c.Backend())
	})
	t.Run("neural_without_url_downgrades", func(t *testing.T) {
		c := New(Options{Backend: BackendNeural, Log: quietLog()})
		assert.Equal(t, BackendRuleBased, c.Backend())
	})
	t.Run("lexicon", func(t *testing.T) {
		c := New(Options{Backend: BackendLexicon, Scorer: fixedScorer(0), Log: quietLog()})
		assert.Equal(t, BackendLexicon, c.Backend())
	})
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{
		"":           BackendLexicon,
		"VADER":      BackendLexicon,
		"sklearn":    BackendTrained,
		"neural":     BackendNeural,
		"rule_based": BackendRuleBased,
	} {
		got, err := ParseBackend(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBackend("magic")
	assert.Error(t, err)
}

func TestBatchPredictKeepsOrder(t *testing.T) {
	c := newLexicon(0)
	preds := c.BatchPredict([]types.Transcript{
		{ID: "a", CustomerText: "my bill"},
		{ID: "b", CustomerText: ""},
	})
	require.Len(t, preds, 2)
	assert.Equal(t, "a", preds[0].TranscriptID)
	assert.Equal(t, "b", preds[1].TranscriptID)
}
