package types

import (
	"strings"
	"time"
)

type SentimentLabel string

const (
	VeryPositive SentimentLabel = "very_positive"
	Positive     SentimentLabel = "positive"
	Neutral      SentimentLabel = "neutral"
	Negative     SentimentLabel = "negative"
	VeryNegative SentimentLabel = "very_negative"
)

// IsNegative reports whether the label is negative or very_negative.
func (l SentimentLabel) IsNegative() bool {
	return l == Negative || l == VeryNegative
}

// IsPositive reports whether the label is positive or very_positive.
func (l SentimentLabel) IsPositive() bool {
	return l == Positive || l == VeryPositive
}

type Emotion string

const (
	EmotionAngry        Emotion = "angry"
	EmotionFrustrated   Emotion = "frustrated"
	EmotionDisappointed Emotion = "disappointed"
	EmotionConfused     Emotion = "confused"
	EmotionAnxious      Emotion = "anxious"
	EmotionSatisfied    Emotion = "satisfied"
	EmotionHappy        Emotion = "happy"
	EmotionNeutral      Emotion = "neutral"
)

type IssueCategory string

const (
	CategoryNetworkCoverage IssueCategory = "network_coverage"
	CategoryBilling         IssueCategory = "billing"
	CategoryCustomerService IssueCategory = "customer_service"
	CategoryTechnical       IssueCategory = "technical"
	CategoryDeviceIssues    IssueCategory = "device_issues"
	CategoryPlanQuestions   IssueCategory = "plan_questions"
	CategoryGeneral         IssueCategory = "general"
)

type RoutingRecommendation string

const (
	RouteHumanEscalation        RoutingRecommendation = "human_escalation"
	RouteAgentQA                RoutingRecommendation = "agent_qa"
	RouteNetworkHealthDashboard RoutingRecommendation = "network_health_dashboard"
	RouteStandardAgent          RoutingRecommendation = "standard_agent"
)

// --------------------------------------------
// Input text for one classification
// --------------------------------------------
type Transcript struct {
	ID             string    `json:"transcript_id"`
	CustomerText   string    `json:"customer_text"`
	AgentText      string    `json:"agent_text,omitempty"` // stored, never analyzed
	FullTranscript string    `json:"full_transcript,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// --------------------------------------------
// Classifier output
// --------------------------------------------
type SentimentPrediction struct {
	TranscriptID  string                `json:"transcript_id"`
	Label         SentimentLabel        `json:"sentiment_label"`
	Score         float64               `json:"sentiment_score"` // -1..1
	Emotion       Emotion               `json:"emotion"`
	UrgencyScore  float64               `json:"urgency_score"` // 0..1
	Confidence    float64               `json:"confidence"`    // 0..1
	Keywords      []string              `json:"keywords"`
	IssueCategory IssueCategory         `json:"issue_category"`
	Routing       RoutingRecommendation `json:"routing_recommendation"`
}

// UrgencyLevel buckets the urgency score the way the dashboard shows it.
func (p SentimentPrediction) UrgencyLevel() string {
	switch {
	case p.UrgencyScore > 0.7:
		return "HIGH"
	case p.UrgencyScore > 0.4:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ParseSentimentLabel accepts labels as they appear in spreadsheets:
// any case, with spaces, hyphens or underscores.
func ParseSentimentLabel(s string) (SentimentLabel, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch l := SentimentLabel(norm); l {
	case VeryPositive, Positive, Neutral, Negative, VeryNegative:
		return l, true
	}
	return "", false
}
