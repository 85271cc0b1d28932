// Package router assigns calls to customer service representatives by
// additive specialty scoring.
package router

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/types"
)

const defaultReason = "Available and experienced CSR"

// Request carries the classifier output for one call. Customer is optional.
type Request struct {
	SentimentScore float64
	UrgencyScore   float64
	Emotion        types.Emotion
	Category       types.IssueCategory
	Customer       *types.CustomerInfo
}

// RequestFor builds a routing request from a prediction.
func RequestFor(p types.SentimentPrediction, customer *types.CustomerInfo) Request {
	return Request{
		SentimentScore: p.Score,
		UrgencyScore:   p.UrgencyScore,
		Emotion:        p.Emotion,
		Category:       p.IssueCategory,
		Customer:       customer,
	}
}

// bonus awards points to representatives holding any of tags when the
// request matches. The same predicate explains the assignment.
type bonus struct {
	when   func(Request) bool
	tags   []string
	points float64
	reason func(Request) string
}

func fixed(s string) func(Request) string { return func(Request) string { return s } }

func emotionIn(es ...types.Emotion) func(Request) bool {
	return func(r Request) bool {
		for _, e := range es {
			if r.Emotion == e {
				return true
			}
		}
		return false
	}
}

func categoryIn(cs ...types.IssueCategory) func(Request) bool {
	return func(r Request) bool {
		for _, c := range cs {
			if r.Category == c {
				return true
			}
		}
		return false
	}
}

func veryNegative(r Request) bool { return r.SentimentScore < -0.5 }
func highUrgency(r Request) bool { return r.UrgencyScore > 0.7 }

func customersReason(r Request) string { return fmt.Sprintf("Best match for %s customers", r.Emotion) }
func issuesReason(r Request) string { return fmt.Sprintf("Specializes in %s issues", r.Category) }

var bonuses = []bonus{
	{veryNegative, []string{"de-escalation", "angry_customers"}, 30, fixed("Expert at handling negative sentiment")},
	{veryNegative, []string{"complaints"}, 20, fixed("Experienced with complaints")},
	{highUrgency, []string{"urgent", "escalations"}, 25, fixed("Specializes in high-urgency situations")},
	{highUrgency, []string{"cancellations"}, 20, fixed("Experienced at preventing cancellations")},
	{emotionIn(types.EmotionAngry, types.EmotionFrustrated), []string{"de-escalation", "angry_customers"}, 25, customersReason},
	{emotionIn(types.EmotionConfused, types.EmotionAnxious), []string{"emotional_support", "confused_customers"}, 25, customersReason},
	{emotionIn(types.EmotionConfused, types.EmotionAnxious), []string{"anxious"}, 20, customersReason},
	{categoryIn(types.CategoryNetworkCoverage, types.CategoryTechnical), []string{"technical", "network_coverage"}, 20, issuesReason},
	// Never fires: the category cannot be device_issues and network_coverage or technical at once.
	{func(r Request) bool {
		return categoryIn(types.CategoryNetworkCoverage, types.CategoryTechnical)(r) && r.Category == types.CategoryDeviceIssues
	}, []string{"device_issues"}, 20, issuesReason},
	{categoryIn(types.CategoryBilling), []string{"billing"}, 25, issuesReason},
	{categoryIn(types.CategoryPlanQuestions), []string{"plan_questions"}, 20, issuesReason},
}

// Router owns the roster. Selecting a representative and reserving a call
// slot on it happen under one lock.
type Router struct {
	mu     sync.Mutex
	roster []types.Representative
	log    *logrus.Entry
}

// New copies roster, which must be non-empty with unique ids.
func New(roster []types.Representative, log *logrus.Entry) (*Router, error) {
	if err := validate(roster); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Router{
		roster: make([]types.Representative, len(roster)),
		log:    log.WithField("component", "router"),
	}
	for i, rep := range roster {
		rep.Specialties = append([]string(nil), rep.Specialties...)
		r.roster[i] = rep
		metrics.ActiveAssignments.WithLabelValues(rep.ID).Set(float64(rep.CurrentCalls))
	}
	return r, nil
}

// Route picks the best scoring representative with free capacity and
// reserves a call on it. When everyone is full the first roster entry takes
// the call anyway. Equal scores go to the earlier roster entry.
func (rt *Router) Route(req Request) types.RoutingDecision {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidates := make([]int, 0, len(rt.roster))
	for i, rep := range rt.roster {
		if rep.CurrentCalls < rep.MaxCalls {
			candidates = append(candidates, i)
		}
	}
	overflow := len(candidates) == 0
	if overflow {
		candidates = append(candidates, 0)
	}

	best, bestScore := -1, 0.0
	for _, i := range candidates {
		s := score(rt.roster[i], req)
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}

	rep := &rt.roster[best]
	rep.CurrentCalls++

	metrics.AssignmentsTotal.WithLabelValues(rep.ID).Inc()
	metrics.ActiveAssignments.WithLabelValues(rep.ID).Set(float64(rep.CurrentCalls))
	entry := rt.log.WithFields(logrus.Fields{
		"csr_id":        rep.ID,
		"match_score":   bestScore,
		"current_calls": rep.CurrentCalls,
	})
	if req.Customer != nil {
		entry = entry.WithField("customer", req.Customer.Name)
	}
	if overflow {
		metrics.CapacityOverflowTotal.Inc()
		entry.Warn("all representatives at capacity, overassigning first roster entry")
	} else {
		entry.Info("call routed")
	}

	return types.RoutingDecision{
		ID:              rep.ID,
		Name:            rep.Name,
		Personality:     rep.Personality,
		Specialties:     append([]string(nil), rep.Specialties...),
		ExperienceYears: rep.ExperienceYears,
		SuccessRate:     rep.SuccessRate,
		Description:     rep.Description,
		MatchScore:      bestScore,
		Reason:          reason(*rep, req),
	}
}

// Release frees one call slot. It never goes below zero and ignores
// unknown ids.
func (rt *Router) Release(id string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for i := range rt.roster {
		rep := &rt.roster[i]
		if rep.ID != id {
			continue
		}
		if rep.CurrentCalls > 0 {
			rep.CurrentCalls--
			metrics.ActiveAssignments.WithLabelValues(rep.ID).Set(float64(rep.CurrentCalls))
		}
		return
	}
}

// List returns a snapshot of the roster in roster order.
func (rt *Router) List() []types.RepresentativeView {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	out := make([]types.RepresentativeView, len(rt.roster))
	for i, rep := range rt.roster {
		rep.Specialties = append([]string(nil), rep.Specialties...)
		out[i] = types.RepresentativeView{Representative: rep, Available: rep.CurrentCalls < rep.MaxCalls}
	}
	return out
}

func score(rep types.Representative, req Request) float64 {
	var s float64
	for _, b := range bonuses {
		if b.when(req) && rep.HasSpecialty(b.tags...) {
			s += b.points
		}
	}
	s += rep.SuccessRate * 10
	s += float64(rep.ExperienceYears) * 2
	if rep.MaxCalls > 0 {
		s -= float64(rep.CurrentCalls) / float64(rep.MaxCalls) * 10
	}
	return s
}

func reason(rep types.Representative, req Request) string {
	var reasons []string
	seen := map[string]bool{}
	for _, b := range bonuses {
		if !b.when(req) || !rep.HasSpecialty(b.tags...) {
			continue
		}
		if r := b.reason(req); !seen[r] {
			seen[r] = true
			reasons = append(reasons, r)
		}
	}
	if len(reasons) == 0 {
		return defaultReason
	}
	return strings.Join(reasons, "; ")
}
