package trend

import "csr-insights-go/internal/types"

// Session scopes tracking to one call. Closing it clears the call's history.
type Session struct {
	t  *Tracker
	id string
}

func (t *Tracker) Open(callID string) *Session {
	return &Session{t: t, id: callID}
}

func (s *Session) CallID() string { return s.id }

func (s *Session) Track(p types.SentimentPrediction) TrendSummary {
	return s.t.Track(s.id, p)
}

func (s *Session) TrackText(p types.SentimentPrediction, text string) TrendSummary {
	return s.t.TrackText(s.id, p, text)
}

func (s *Session) Summary() (CallSummary, error) {
	return s.t.Summary(s.id)
}

// Close clears the history. It is safe to call more than once.
func (s *Session) Close() {
	s.t.Clear(s.id)
}
