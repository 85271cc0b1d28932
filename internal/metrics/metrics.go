// Package metrics provides Prometheus metrics for classification, routing
// and call bookkeeping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CLASSIFIER
// =============================================================================

// PredictionsTotal counts predictions by sentiment label and backend.
var PredictionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "classifier",
	Name:      "predictions_total",
	Help:      "Sentiment predictions by label and scoring backend",
}, []string{"label", "backend"})

// RoutingRecommendations counts routing recommendations emitted by the classifier.
var RoutingRecommendations = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "classifier",
	Name:      "routing_recommendations_total",
	Help:      "Routing recommendations by target",
}, []string{"routing"})

// BackendFallbacks counts predictions served by the rule-based fallback after a backend error.
var BackendFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "classifier",
	Name:      "backend_fallbacks_total",
	Help:      "Predictions that fell back to rule-based scoring, by failed backend",
}, []string{"backend"})

// PredictionDurationSeconds tracks time spent classifying one transcript.
var PredictionDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "classifier",
	Name:      "prediction_duration_seconds",
	Help:      "Time taken to classify one transcript",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
})

// =============================================================================
// ROUTER
// =============================================================================

// AssignmentsTotal counts calls assigned per representative.
var AssignmentsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "assignments_total",
	Help:      "Calls assigned to each representative",
}, []string{"csr_id"})

// CapacityOverflowTotal counts assignments made while every representative was at capacity.
var CapacityOverflowTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "capacity_overflow_total",
	Help:      "Calls assigned to the first roster entry because all representatives were full",
})

// ActiveAssignments tracks current calls held per representative.
var ActiveAssignments = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "router",
	Name:      "active_assignments",
	Help:      "Current call count per representative",
}, []string{"csr_id"})

// =============================================================================
// CALLS
// =============================================================================

// CallsByStatus tracks calls currently pending or active.
var CallsByStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "calls",
	Name:      "by_status",
	Help:      "Calls currently held by the call manager, by status",
}, []string{"status"})

// EscalationTriggersTotal counts turns that signalled escalation.
var EscalationTriggersTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "calls",
	Name:      "escalation_triggers_total",
	Help:      "Customer turns that triggered an escalation signal",
})

// NotificationsTotal counts inbound-call notifications by sink and outcome.
var NotificationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "calls",
	Name:      "notifications_total",
	Help:      "Inbound-call notifications by sink and result",
}, []string{"sink", "result"})
