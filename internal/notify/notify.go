// Package notify delivers inbound-call notices to dashboards and other
// consumers.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/types"
)

// Notice summarises a call waiting for a representative.
type Notice struct {
	CallID         string               `json:"call_id"`
	PhoneNumber    string               `json:"phone_number"`
	CustomerName   string               `json:"customer_name"`
	InitialText    string               `json:"initial_text"`
	Sentiment      types.SentimentLabel `json:"initial_sentiment"`
	SentimentScore float64              `json:"initial_sentiment_score"`
	UrgencyScore   float64              `json:"initial_urgency_score"`
	UrgencyLevel   string               `json:"initial_urgency"`
	Emotion        types.Emotion        `json:"initial_emotion"`
	CSRID          string               `json:"csr_id,omitempty"`
	CSRName        string               `json:"csr_name,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

type Sink interface {
	Name() string
	Notify(ctx context.Context, n Notice) error
}

// LogSink writes notices to the service log.
type LogSink struct {
	Log *logrus.Entry
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Notify(_ context.Context, n Notice) error {
	s.Log.WithFields(logrus.Fields{
		"call_id":  n.CallID,
		"customer": n.CustomerName,
		"urgency":  n.UrgencyLevel,
		"csr":      n.CSRName,
	}).Info("new inbound call")
	return nil
}

// Multi fans a notice out to every sink. A failing sink does not stop the
// others; all errors are returned joined.
type Multi []Sink

func (Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			metrics.NotificationsTotal.WithLabelValues(s.Name(), "error").Inc()
			errs = append(errs, err)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(s.Name(), "ok").Inc()
	}
	return errors.Join(errs...)
}
