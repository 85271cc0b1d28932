// Package calls tracks inbound calls from routing through hang-up.
package calls

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/notify"
	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/types"
)

var (
	ErrCallNotFound = errors.New("call not found")
	ErrNotPending   = errors.New("call is not pending")
	ErrNotActive    = errors.New("call is not active")
	ErrAlreadyEnded = errors.New("call already ended")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
)

const (
	noticeTextLimit = 100
	endedLimit      = 500
)

// Chunk is one piece of live transcript.
type Chunk struct {
	Speaker   transcript.Speaker `json:"speaker"`
	Text      string             `json:"text"`
	Timestamp time.Time          `json:"timestamp"`
}

// SentimentPoint is the reading of one customer chunk.
type SentimentPoint struct {
	Timestamp    time.Time            `json:"timestamp"`
	Label        types.SentimentLabel `json:"sentiment_label"`
	Score        float64              `json:"sentiment_score"`
	Emotion      types.Emotion        `json:"emotion"`
	UrgencyScore float64              `json:"urgency_score"`
	UrgencyLevel string               `json:"urgency_level"`
}

type Call struct {
	ID                string                    `json:"call_id"`
	PhoneNumber       string                    `json:"phone_number"`
	Customer          *types.CustomerInfo       `json:"customer_info"`
	InitialTranscript string                    `json:"initial_transcript"`
	InitialAnalysis   types.SentimentPrediction `json:"initial_analysis"`
	AssignedCSR       *types.RoutingDecision    `json:"assigned_csr,omitempty"`
	Status            Status                    `json:"status"`
	CreatedAt         time.Time                 `json:"created_at"`
	AcceptedAt        *time.Time                `json:"accepted_at,omitempty"`
	EndedAt           *time.Time                `json:"ended_at,omitempty"`
	Transcript        []Chunk                   `json:"transcript"`
	SentimentHistory  []SentimentPoint          `json:"sentiment_history"`
}

// NewCall describes a call being handed to a human representative.
type NewCall struct {
	PhoneNumber       string
	InitialTranscript string
	Analysis          types.SentimentPrediction
	Customer          *types.CustomerInfo
	AssignedCSR       *types.RoutingDecision
}

// Manager holds pending, active and recently ended calls.
type Manager struct {
	mu      sync.RWMutex
	calls   map[string]*Call
	pending []string
	ended   []string
	log     *logrus.Entry
	now     func() time.Time
}

func NewManager(log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		calls: map[string]*Call{},
		log:   log.WithField("component", "calls"),
		now:   time.Now,
	}
}

// Create registers a pending call and returns its id.
func (m *Manager) Create(nc NewCall) string {
	id := "call_" + uuid.NewString()[:8]
	phone := nc.PhoneNumber
	if phone == "" {
		phone = "Unknown"
	}

	if nc.Analysis.TranscriptID == "" {
		nc.Analysis.TranscriptID = id
	}

	m.mu.Lock()
	m.calls[id] = &Call{
		ID:                id,
		PhoneNumber:       phone,
		Customer:          nc.Customer,
		InitialTranscript: nc.InitialTranscript,
		InitialAnalysis:   nc.Analysis,
		AssignedCSR:       nc.AssignedCSR,
		Status:            StatusPending,
		CreatedAt:         m.now(),
		Transcript:        []Chunk{},
		SentimentHistory:  []SentimentPoint{},
	}
	m.pending = append(m.pending, id)
	m.updateGauges()
	m.mu.Unlock()

	m.log.WithField("call_id", id).Info("incoming call created")
	return id
}

// Pending lists calls waiting to be accepted, oldest first.
func (m *Manager) Pending() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, 0, len(m.pending))
	for _, id := range m.pending {
		out = append(out, m.calls[id].snapshot())
	}
	return out
}

// Accept moves a pending call to active.
func (m *Manager) Accept(id string) (Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calls[id]
	if !ok {
		return Call{}, ErrCallNotFound
	}
	if c.Status != StatusPending {
		return Call{}, ErrNotPending
	}
	now := m.now()
	c.Status = StatusActive
	c.AcceptedAt = &now
	m.pending = remove(m.pending, id)
	m.updateGauges()

	m.log.WithField("call_id", id).Info("call accepted")
	return c.snapshot(), nil
}

// AddChunk appends transcript text to an active call. A prediction is only
// recorded for customer chunks.
func (m *Manager) AddChunk(id string, speaker transcript.Speaker, text string, p *types.SentimentPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calls[id]
	if !ok {
		return ErrCallNotFound
	}
	if c.Status != StatusActive {
		return ErrNotActive
	}
	now := m.now()
	c.Transcript = append(c.Transcript, Chunk{Speaker: speaker, Text: text, Timestamp: now})
	if p != nil && speaker == transcript.SpeakerCustomer {
		c.SentimentHistory = append(c.SentimentHistory, SentimentPoint{
			Timestamp:    now,
			Label:        p.Label,
			Score:        p.Score,
			Emotion:      p.Emotion,
			UrgencyScore: p.UrgencyScore,
			UrgencyLevel: p.UrgencyLevel(),
		})
	}
	return nil
}

func (m *Manager) Get(id string) (Call, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.calls[id]
	if !ok {
		return Call{}, ErrCallNotFound
	}
	return c.snapshot(), nil
}

// End closes a pending or active call. Ended calls stay readable until
// newer ones push them out.
func (m *Manager) End(id string) (Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calls[id]
	if !ok {
		return Call{}, ErrCallNotFound
	}
	if c.Status == StatusEnded {
		return c.snapshot(), ErrAlreadyEnded
	}
	if c.Status == StatusPending {
		m.pending = remove(m.pending, id)
	}
	now := m.now()
	c.Status = StatusEnded
	c.EndedAt = &now

	m.ended = append(m.ended, id)
	if len(m.ended) > endedLimit {
		delete(m.calls, m.ended[0])
		m.ended = m.ended[1:]
	}
	m.updateGauges()

	m.log.WithField("call_id", id).Info("call ended")
	return c.snapshot(), nil
}

// Notice builds the dashboard notice for a pending or active call.
func (m *Manager) Notice(id string) (notify.Notice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.calls[id]
	if !ok || c.Status == StatusEnded {
		return notify.Notice{}, ErrCallNotFound
	}
	n := notify.Notice{
		CallID:         c.ID,
		PhoneNumber:    c.PhoneNumber,
		CustomerName:   "Unknown",
		InitialText:    truncate(c.InitialTranscript, noticeTextLimit),
		Sentiment:      c.InitialAnalysis.Label,
		SentimentScore: c.InitialAnalysis.Score,
		UrgencyScore:   c.InitialAnalysis.UrgencyScore,
		UrgencyLevel:   c.InitialAnalysis.UrgencyLevel(),
		Emotion:        c.InitialAnalysis.Emotion,
		CreatedAt:      c.CreatedAt,
	}
	if c.Customer != nil && c.Customer.Name != "" {
		n.CustomerName = c.Customer.Name
	}
	if c.AssignedCSR != nil {
		n.CSRID, n.CSRName = c.AssignedCSR.ID, c.AssignedCSR.Name
	}
	return n, nil
}

// updateGauges must be called with mu held.
func (m *Manager) updateGauges() {
	active := 0
	for _, c := range m.calls {
		if c.Status == StatusActive {
			active++
		}
	}
	metrics.CallsByStatus.WithLabelValues(string(StatusPending)).Set(float64(len(m.pending)))
	metrics.CallsByStatus.WithLabelValues(string(StatusActive)).Set(float64(active))
}

func (c *Call) snapshot() Call {
	s := *c
	s.Transcript = append([]Chunk{}, c.Transcript...)
	s.SentimentHistory = append([]SentimentPoint{}, c.SentimentHistory...)
	return s
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
