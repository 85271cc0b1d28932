// Package processor wires classification, routing, call bookkeeping and
// notification into the operations the API exposes.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/actionable"
	"csr-insights-go/internal/aggregator"
	"csr-insights-go/internal/calls"
	"csr-insights-go/internal/classifier"
	"csr-insights-go/internal/customer"
	"csr-insights-go/internal/notify"
	"csr-insights-go/internal/router"
	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/trend"
	"csr-insights-go/internal/types"
)

// ErrEmptyText is returned when a request carries no text to analyze.
var ErrEmptyText = errors.New("text is required")

const statsWindow = 100

type Deps struct {
	Classifier *classifier.Classifier
	Tracker    *trend.Tracker
	Router     *router.Router
	Directory  customer.Directory
	Calls      *calls.Manager
	Sink       notify.Sink // optional
	Log        *logrus.Entry
}

type Processor struct {
	Deps

	mu        sync.Mutex
	recent    []analyzed
	processed int
	now       func() time.Time
}

type analyzed struct {
	pred     types.SentimentPrediction
	duration time.Duration
}

func New(d Deps) *Processor {
	if d.Log == nil {
		d.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	d.Log = d.Log.WithField("component", "processor")
	if d.Tracker == nil {
		d.Tracker = trend.NewTracker(d.Log)
	}
	if d.Calls == nil {
		d.Calls = calls.NewManager(d.Log)
	}
	if d.Directory == nil {
		d.Directory = customer.NewMemoryDirectory()
	}
	return &Processor{Deps: d, now: time.Now}
}

// Analyze classifies one transcript and records it in the rolling stats.
func (p *Processor) Analyze(t types.Transcript) types.SentimentPrediction {
	start := p.now()
	pred := p.Classifier.Predict(t)
	p.record(pred, p.now().Sub(start))
	return pred
}

func (p *Processor) record(pred types.SentimentPrediction, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.recent = append(p.recent, analyzed{pred: pred, duration: d})
	if len(p.recent) > statsWindow {
		p.recent = p.recent[len(p.recent)-statsWindow:]
	}
}

type RouteRequest struct {
	CustomerText      string `json:"customer_text"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	InitialTranscript string `json:"initial_transcript,omitempty"`
}

type RouteResult struct {
	CallID              string                    `json:"call_id"`
	AssignedCSR         types.RoutingDecision     `json:"assigned_csr"`
	Analysis            types.SentimentPrediction `json:"analysis"`
	Customer            *types.CustomerInfo       `json:"customer_info"`
	NotificationCreated bool                      `json:"notification_created"`
}

// RouteCall classifies the opening text of a call, looks up the caller,
// assigns a representative and registers the call as pending. Lookup and
// notification failures are logged and never fail the call.
func (p *Processor) RouteCall(ctx context.Context, req RouteRequest) (RouteResult, error) {
	if strings.TrimSpace(req.CustomerText) == "" {
		return RouteResult{}, ErrEmptyText
	}
	initial := req.InitialTranscript
	if initial == "" {
		initial = req.CustomerText
	}
	log := p.Log.WithField("phone_number", req.PhoneNumber)

	var info *types.CustomerInfo
	if req.PhoneNumber != "" {
		c, err := p.Directory.Lookup(ctx, req.PhoneNumber)
		switch {
		case err == nil:
			info = &c
		case errors.Is(err, customer.ErrNotFound):
			log.Debug("caller not in directory")
		default:
			log.WithField("error", err.Error()).Warn("customer lookup failed")
		}
	}

	pred := p.Analyze(types.Transcript{CustomerText: req.CustomerText, Timestamp: p.now()})
	csr := p.Router.Route(router.RequestFor(pred, info))

	id := p.Calls.Create(calls.NewCall{
		PhoneNumber:       req.PhoneNumber,
		InitialTranscript: initial,
		Analysis:          pred,
		Customer:          info,
		AssignedCSR:       &csr,
	})
	pred.TranscriptID = id
	p.Tracker.TrackText(id, pred, req.CustomerText)

	res := RouteResult{CallID: id, AssignedCSR: csr, Analysis: pred, Customer: info}
	if n, err := p.Calls.Notice(id); err == nil {
		res.NotificationCreated = true
		if p.Sink != nil {
			if err := p.Sink.Notify(ctx, n); err != nil {
				log.WithField("call_id", id).WithField("error", err.Error()).Warn("inbound call notification failed")
			}
		}
	}
	log.WithFields(logrus.Fields{
		"call_id": id,
		"csr_id":  csr.ID,
		"label":   pred.Label,
		"urgency": pred.UrgencyScore,
	}).Info("call routed")
	return res, nil
}

func (p *Processor) PendingNotices() []notify.Notice {
	pending := p.Calls.Pending()
	out := make([]notify.Notice, 0, len(pending))
	for _, c := range pending {
		if n, err := p.Calls.Notice(c.ID); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func (p *Processor) AcceptCall(id string) (calls.Call, error) {
	return p.Calls.Accept(id)
}

type TranscriptUpdate struct {
	CallID   string                     `json:"call_id"`
	Speaker  transcript.Speaker         `json:"speaker"`
	Text     string                     `json:"text"`
	Partial  bool                       `json:"is_partial"`
	Analysis *types.SentimentPrediction `json:"analysis"`
	Trend    *trend.TrendSummary        `json:"trend,omitempty"`
}

// AddTranscript appends a live transcript chunk to an active call. Only
// final customer chunks are analyzed; agent speech is stored as is.
func (p *Processor) AddTranscript(id string, speaker transcript.Speaker, text string, partial bool) (TranscriptUpdate, error) {
	if strings.TrimSpace(text) == "" {
		return TranscriptUpdate{}, ErrEmptyText
	}
	c, err := p.Calls.Get(id)
	if err != nil {
		return TranscriptUpdate{}, err
	}
	if c.Status != calls.StatusActive {
		return TranscriptUpdate{}, calls.ErrNotActive
	}
	up := TranscriptUpdate{CallID: id, Speaker: speaker, Text: text, Partial: partial}

	analyze := speaker == transcript.SpeakerCustomer && !partial
	if analyze {
		pred := p.Analyze(types.Transcript{ID: id, CustomerText: text, Timestamp: p.now()})
		up.Analysis = &pred
	}
	if err := p.Calls.AddChunk(id, speaker, text, up.Analysis); err != nil {
		return TranscriptUpdate{}, err
	}
	if analyze {
		ts := p.Tracker.TrackText(id, *up.Analysis, text)
		up.Trend = &ts
		if ts.NeedsImmediateAttention {
			p.Log.WithField("call_id", id).WithField("escalations", ts.EscalationTriggers).Warn("call needs immediate attention")
		}
	}
	return up, nil
}

type EndResult struct {
	Call    calls.Call         `json:"call"`
	Summary *trend.CallSummary `json:"summary,omitempty"`
}

// EndCall closes the call, frees its representative and drops its trend
// history after summarising it. Ending an ended call returns it unchanged
// and releases nothing.
func (p *Processor) EndCall(id string) (EndResult, error) {
	c, err := p.Calls.End(id)
	if errors.Is(err, calls.ErrAlreadyEnded) {
		return EndResult{Call: c}, nil
	}
	if err != nil {
		return EndResult{}, err
	}
	res := EndResult{Call: c}
	if s, err := p.Tracker.Summary(id); err == nil {
		res.Summary = &s
	}
	p.Tracker.Clear(id)
	if c.AssignedCSR != nil {
		p.Router.Release(c.AssignedCSR.ID)
	}
	return res, nil
}

type CallDetail struct {
	calls.Call
	CurrentSentiment types.SentimentLabel `json:"current_sentiment"`
	SentimentChange  float64              `json:"sentiment_change"`
}

// CallDetail reports a call with its sentiment change from the first to the
// last analyzed customer chunk.
func (p *Processor) CallDetail(id string) (CallDetail, error) {
	c, err := p.Calls.Get(id)
	if err != nil {
		return CallDetail{}, err
	}
	d := CallDetail{Call: c, CurrentSentiment: c.InitialAnalysis.Label}
	if h := c.SentimentHistory; len(h) > 0 {
		d.SentimentChange = h[len(h)-1].Score - h[0].Score
		d.CurrentSentiment = h[len(h)-1].Label
	}
	return d, nil
}

func (p *Processor) CallSummary(id string) (trend.CallSummary, error) {
	s, err := p.Tracker.Summary(id)
	if err != nil {
		return trend.CallSummary{}, fmt.Errorf("summary for %s: %w", id, err)
	}
	return s, nil
}

type Stats struct {
	TotalProcessed        int            `json:"total_processed"`
	RecentCount           int            `json:"recent_count"`
	SentimentDistribution map[string]int `json:"sentiment_distribution,omitempty"`
	UrgencyDistribution   map[string]int `json:"urgency_distribution,omitempty"`
	RoutingDistribution   map[string]int `json:"routing_distribution,omitempty"`
	AvgProcessingTimeMs   float64        `json:"avg_processing_time_ms"`
}

// Stats covers the last statsWindow analyses.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{TotalProcessed: p.processed, RecentCount: len(p.recent)}
	if len(p.recent) == 0 {
		return s
	}
	s.SentimentDistribution = map[string]int{}
	s.UrgencyDistribution = map[string]int{"HIGH": 0, "MEDIUM": 0, "LOW": 0}
	s.RoutingDistribution = map[string]int{}
	var total time.Duration
	for _, a := range p.recent {
		s.SentimentDistribution[string(a.pred.Label)]++
		s.UrgencyDistribution[a.pred.UrgencyLevel()]++
		s.RoutingDistribution[string(a.pred.Routing)]++
		total += a.duration
	}
	avg := float64(total.Microseconds()) / 1000 / float64(len(p.recent))
	s.AvgProcessingTimeMs = float64(int(avg*100+0.5)) / 100
	return s
}

type Insights struct {
	aggregator.Insight
	Action actionable.ActionCard `json:"action"`
}

// Insights aggregates the analyses in the stats window.
func (p *Processor) Insights() Insights {
	p.mu.Lock()
	preds := make([]types.SentimentPrediction, len(p.recent))
	for i, a := range p.recent {
		preds[i] = a.pred
	}
	p.mu.Unlock()

	ins := aggregator.Aggregate(preds)
	return Insights{Insight: ins, Action: actionable.Generate(ins)}
}
