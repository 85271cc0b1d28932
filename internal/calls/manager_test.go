package calls

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/types"
)

func newTestManager() *Manager {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewManager(logrus.NewEntry(l))
}

func TestLifecycle(t *testing.T) {
	m := newTestManager()
	id := m.Create(NewCall{
		PhoneNumber:       "5551234567",
		InitialTranscript: "my bill is wrong",
		Analysis:          types.SentimentPrediction{Label: types.Negative, Score: -0.3, UrgencyScore: 0.5},
	})
	assert.Regexp(t, `^call_[0-9a-f]{8}$`, id)

	pending := m.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, StatusPending, pending[0].Status)
	assert.Equal(t, id, pending[0].InitialAnalysis.TranscriptID)

	// not active yet
	assert.ErrorIs(t, m.AddChunk(id, transcript.SpeakerCustomer, "hello?", nil), ErrNotActive)

	c, err := m.Accept(id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, c.Status)
	assert.NotNil(t, c.AcceptedAt)
	assert.Empty(t, m.Pending())

	_, err = m.Accept(id)
	assert.ErrorIs(t, err, ErrNotPending)

	p := types.SentimentPrediction{Label: types.Positive, Score: 0.4, UrgencyScore: 0.8, Emotion: types.EmotionSatisfied}
	require.NoError(t, m.AddChunk(id, transcript.SpeakerAgent, "Let me fix that for you.", &p))
	require.NoError(t, m.AddChunk(id, transcript.SpeakerCustomer, "thanks", &p))

	c, err = m.Get(id)
	require.NoError(t, err)
	assert.Len(t, c.Transcript, 2)
	require.Len(t, c.SentimentHistory, 1)
	assert.Equal(t, "HIGH", c.SentimentHistory[0].UrgencyLevel)

	c, err = m.End(id)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, c.Status)
	assert.NotNil(t, c.EndedAt)

	again, err := m.End(id)
	assert.ErrorIs(t, err, ErrAlreadyEnded)
	assert.Equal(t, StatusEnded, again.Status)
	assert.Equal(t, c.EndedAt, again.EndedAt)

	// ended calls stay readable but take no more chunks
	_, err = m.Get(id)
	assert.NoError(t, err)
	assert.ErrorIs(t, m.AddChunk(id, transcript.SpeakerCustomer, "hello?", nil), ErrNotActive)
	_, err = m.Notice(id)
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestUnknownCall(t *testing.T) {
	m := newTestManager()
	_, err := m.Accept("call_nope")
	assert.ErrorIs(t, err, ErrCallNotFound)
	_, err = m.End("call_nope")
	assert.ErrorIs(t, err, ErrCallNotFound)
	_, err = m.Get("call_nope")
	assert.ErrorIs(t, err, ErrCallNotFound)
	assert.ErrorIs(t, m.AddChunk("call_nope", transcript.SpeakerAgent, "x", nil), ErrCallNotFound)
}

func TestPendingOrderAndEndWhilePending(t *testing.T) {
	m := newTestManager()
	a := m.Create(NewCall{PhoneNumber: "1"})
	b := m.Create(NewCall{PhoneNumber: "2"})
	c := m.Create(NewCall{PhoneNumber: "3"})

	_, err := m.End(b)
	require.NoError(t, err)

	var ids []string
	for _, call := range m.Pending() {
		ids = append(ids, call.ID)
	}
	assert.Equal(t, []string{a, c}, ids)
}

func TestNotice(t *testing.T) {
	m := newTestManager()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	long := strings.Repeat("a", 150)
	id := m.Create(NewCall{
		InitialTranscript: long,
		Analysis:          types.SentimentPrediction{Label: types.VeryNegative, Score: -0.7, UrgencyScore: 0.9, Emotion: types.EmotionAngry},
		Customer:          &types.CustomerInfo{Name: "Maria Garcia"},
		AssignedCSR:       &types.RoutingDecision{ID: "csr_001", Name: "Sarah Chen"},
	})

	n, err := m.Notice(id)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", n.PhoneNumber)
	assert.Equal(t, "Maria Garcia", n.CustomerName)
	assert.Equal(t, strings.Repeat("a", 100)+"...", n.InitialText)
	assert.Equal(t, "HIGH", n.UrgencyLevel)
	assert.Equal(t, "Sarah Chen", n.CSRName)
	assert.Equal(t, now, n.CreatedAt)

	id = m.Create(NewCall{InitialTranscript: "short"})
	n, err = m.Notice(id)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", n.CustomerName)
	assert.Equal(t, "short", n.InitialText)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	m := newTestManager()
	id := m.Create(NewCall{})
	_, err := m.Accept(id)
	require.NoError(t, err)
	require.NoError(t, m.AddChunk(id, transcript.SpeakerAgent, "one", nil))

	c, err := m.Get(id)
	require.NoError(t, err)
	c.Transcript[0].Text = "changed"

	again, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "one", again.Transcript[0].Text)
}
