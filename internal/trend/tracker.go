// Package trend keeps per-call sentiment history and derives the call's
// trend and end-of-call summary from it.
package trend

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/types"
)

// ErrCallNotFound is returned for call ids with no recorded history.
var ErrCallNotFound = errors.New("call not found")

// EscalationUrgency is the urgency at which a prediction counts as an
// escalation trigger.
const EscalationUrgency = 0.7

const recentWindow = 5

type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
	TrendInitial          Trend = "initial"
)

// Entry is one recorded customer turn.
type Entry struct {
	Score    float64
	Polarity Polarity
	Emotions []string
	Escalate bool
	At       time.Time
}

type history struct {
	mu          sync.Mutex
	entries     []Entry
	escalations int
	touched     time.Time
}

// TrendSummary describes a call after a new turn was recorded.
type TrendSummary struct {
	CallID                  string   `json:"call_id"`
	InteractionCount        int      `json:"interaction_count"`
	CurrentSentiment        Polarity `json:"current_sentiment"`
	Trend                   Trend    `json:"trend"`
	AverageRecentScore      float64  `json:"average_recent_score"`
	AverageOverallScore     float64  `json:"average_overall_score"`
	EscalationTriggers      int      `json:"escalation_triggers"`
	NeedsImmediateAttention bool     `json:"needs_immediate_attention"`
}

type Breakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type Quality struct {
	StartedNegative    bool `json:"started_negative"`
	EndedPositive      bool `json:"ended_positive"`
	ImprovedDuringCall bool `json:"improved_during_call"`
	ConsistentPositive bool `json:"consistent_positive"`
	NeedsFollowup      bool `json:"needs_followup"`
}

// ScoreRange reports the spread of scores. Variance is max minus min.
type ScoreRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Variance float64 `json:"variance"`
}

// CallSummary aggregates every recorded turn of a call.
type CallSummary struct {
	CallID            string     `json:"call_id"`
	TotalInteractions int        `json:"total_interactions"`
	OverallSentiment  Polarity   `json:"overall_sentiment"`
	AverageScore      float64    `json:"average_score"`
	Breakdown         Breakdown  `json:"sentiment_breakdown"`
	EmotionsDetected  []string   `json:"emotions_detected"`
	EscalationCount   int        `json:"escalation_count"`
	Quality           Quality    `json:"call_quality"`
	ScoreRange        ScoreRange `json:"score_range"`
}

// Tracker holds the history of every open call. Different calls may be
// tracked concurrently; turns of one call are recorded one at a time.
type Tracker struct {
	mu    sync.RWMutex
	calls map[string]*history
	log   *logrus.Entry
	now   func() time.Time
}

func NewTracker(log *logrus.Entry) *Tracker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Tracker{
		calls: map[string]*history{},
		log:   log.WithField("component", "trend"),
		now:   time.Now,
	}
}

// Track records a prediction. It counts as an escalation trigger when its
// urgency is at least EscalationUrgency.
func (t *Tracker) Track(callID string, p types.SentimentPrediction) TrendSummary {
	return t.record(callID, Entry{
		Score:    p.Score,
		Polarity: polarityOf(p.Label),
		Emotions: []string{string(p.Emotion)},
		Escalate: p.UrgencyScore >= EscalationUrgency,
	})
}

// TrackText records a prediction together with the word indicators of the
// text it came from. Either signal can trigger escalation.
func (t *Tracker) TrackText(callID string, p types.SentimentPrediction, text string) TrendSummary {
	in := Analyze(text)
	emotions := append([]string{string(p.Emotion)}, in.Emotions...)
	escalate := p.UrgencyScore >= EscalationUrgency ||
		in.ShouldEscalate ||
		(p.Emotion == types.EmotionFrustrated && in.UrgencyWords >= 1)
	return t.record(callID, Entry{
		Score:    p.Score,
		Polarity: polarityOf(p.Label),
		Emotions: emotions,
		Escalate: escalate,
	})
}

func (t *Tracker) record(callID string, e Entry) TrendSummary {
	now := t.now()
	e.At = now
	h := t.historyFor(callID)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	h.touched = now
	if e.Escalate {
		h.escalations++
		metrics.EscalationTriggersTotal.Inc()
	}

	recent := h.entries
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	scores := make([]float64, len(recent))
	for i, r := range recent {
		scores[i] = r.Score
	}

	s := TrendSummary{
		CallID:                  callID,
		InteractionCount:        len(h.entries),
		CurrentSentiment:        e.Polarity,
		Trend:                   trendOf(scores),
		AverageRecentScore:      mean(scores),
		AverageOverallScore:     meanScore(h.entries),
		EscalationTriggers:      h.escalations,
		NeedsImmediateAttention: h.escalations >= 2,
	}
	t.log.WithFields(logrus.Fields{
		"call_id": callID,
		"trend":   s.Trend,
		"avg":     s.AverageOverallScore,
	}).Debug("call progression")
	return s
}

func (t *Tracker) historyFor(callID string) *history {
	t.mu.RLock()
	h, ok := t.calls[callID]
	t.mu.RUnlock()
	if ok {
		return h
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok = t.calls[callID]; !ok {
		h = &history{}
		t.calls[callID] = h
	}
	return h
}

// Summary aggregates all recorded turns of a call.
func (t *Tracker) Summary(callID string) (CallSummary, error) {
	t.mu.RLock()
	h, ok := t.calls[callID]
	t.mu.RUnlock()
	if !ok {
		return CallSummary{}, ErrCallNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return CallSummary{}, ErrCallNotFound
	}

	s := CallSummary{
		CallID:            callID,
		TotalInteractions: len(h.entries),
		AverageScore:      meanScore(h.entries),
		EscalationCount:   h.escalations,
	}

	seen := map[string]struct{}{}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range h.entries {
		switch e.Polarity {
		case PolarityPositive:
			s.Breakdown.Positive++
		case PolarityNegative:
			s.Breakdown.Negative++
		default:
			s.Breakdown.Neutral++
		}
		for _, em := range e.Emotions {
			seen[em] = struct{}{}
		}
		lo = math.Min(lo, e.Score)
		hi = math.Max(hi, e.Score)
	}
	s.EmotionsDetected = make([]string, 0, len(seen))
	for em := range seen {
		s.EmotionsDetected = append(s.EmotionsDetected, em)
	}
	sort.Strings(s.EmotionsDetected)
	s.ScoreRange = ScoreRange{Min: lo, Max: hi, Variance: hi - lo}

	switch {
	case s.AverageScore > 0.3:
		s.OverallSentiment = PolarityPositive
	case s.AverageScore < -0.3:
		s.OverallSentiment = PolarityNegative
	default:
		s.OverallSentiment = PolarityNeutral
	}

	s.Quality.StartedNegative = h.entries[0].Polarity == PolarityNegative
	s.Quality.EndedPositive = h.entries[len(h.entries)-1].Polarity == PolarityPositive
	s.Quality.ImprovedDuringCall = s.Quality.StartedNegative && s.Quality.EndedPositive
	s.Quality.ConsistentPositive = s.Breakdown.Positive > 2*s.Breakdown.Negative
	s.Quality.NeedsFollowup = s.AverageScore < -0.2 || h.escalations > 0
	return s, nil
}

// Clear drops the history of a call. Unknown ids are ignored.
func (t *Tracker) Clear(callID string) {
	t.mu.Lock()
	_, ok := t.calls[callID]
	delete(t.calls, callID)
	t.mu.Unlock()
	if ok {
		t.log.WithField("call_id", callID).Info("cleared sentiment history")
	}
}

// Prune drops histories that have not been touched for longer than maxAge
// and returns how many were removed.
func (t *Tracker) Prune(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)

	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, h := range t.calls {
		h.mu.Lock()
		stale := h.touched.Before(cutoff)
		h.mu.Unlock()
		if stale {
			delete(t.calls, id)
			n++
		}
	}
	if n > 0 {
		t.log.WithField("pruned", n).Info("pruned stale call histories")
	}
	return n
}

// Len reports the number of calls with history.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.calls)
}

func trendOf(scores []float64) Trend {
	switch {
	case len(scores) < 2:
		return TrendInitial
	case len(scores) == 2:
		return TrendInsufficientData
	}
	declining, improving := true, true
	for i := 1; i < len(scores); i++ {
		if scores[i] >= scores[i-1] {
			declining = false
		}
		if scores[i] <= scores[i-1] {
			improving = false
		}
	}
	switch {
	case declining:
		return TrendDeclining
	case improving:
		return TrendImproving
	default:
		return TrendStable
	}
}

func polarityOf(l types.SentimentLabel) Polarity {
	switch {
	case l.IsPositive():
		return PolarityPositive
	case l.IsNegative():
		return PolarityNegative
	default:
		return PolarityNeutral
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanScore(es []Entry) float64 {
	if len(es) == 0 {
		return 0
	}
	var sum float64
	for _, e := range es {
		sum += e.Score
	}
	return sum / float64(len(es))
}
