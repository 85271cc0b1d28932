package classifier

import (
	"strings"

	"csr-insights-go/internal/types"
)

// analysis runs the stages shared by every backend on already lower-cased text.
type analysis struct {
	Emotion  types.Emotion
	Urgency  float64
	Keywords []string
	Category types.IssueCategory
	Routing  types.RoutingRecommendation
}

func postProcess(lower string, score float64) analysis {
	urgency := urgencyScore(lower, score)
	category := issueCategory(lower)
	return analysis{
		Emotion:  detectEmotion(lower, score),
		Urgency:  urgency,
		Keywords: extractKeywords(lower),
		Category: category,
		Routing:  recommendRouting(score, urgency, category),
	}
}

func detectEmotion(lower string, score float64) types.Emotion {
	scores := make([]int, len(emotionTable))
	frustrated := -1
	for i, e := range emotionTable {
		if e.emotion == types.EmotionFrustrated {
			frustrated = i
		}
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				scores[i] += 2 * len(strings.Fields(kw))
			}
		}
	}
	if containsAny(lower, fedUpPhrases) {
		scores[frustrated] += 5
	}
	if containsAny(lower, cancellationPhrases) && score < -0.3 {
		scores[frustrated] += 3
	}

	best := -1
	for i, s := range scores {
		if s > 0 && (best < 0 || s > scores[best]) {
			best = i
		}
	}
	if best >= 0 {
		return emotionTable[best].emotion
	}

	switch {
	case score <= -0.7:
		return types.EmotionAngry
	case score <= -0.4:
		return types.EmotionFrustrated
	case score <= -0.1:
		return types.EmotionDisappointed
	case score >= 0.7:
		return types.EmotionHappy
	case score >= 0.3:
		return types.EmotionSatisfied
	default:
		return types.EmotionNeutral
	}
}

// urgencyFromSentiment is the urgency floor implied by a sentiment score.
func urgencyFromSentiment(score float64) float64 {
	switch {
	case score <= -0.7:
		return 0.8
	case score <= -0.4:
		return 0.6
	case score <= -0.2:
		return 0.4
	case score < 0:
		return 0.2
	default:
		return 0
	}
}

func urgencyScore(lower string, score float64) float64 {
	high := 0
	for _, ind := range highUrgencyIndicators {
		if strings.Contains(lower, ind) {
			high += len(strings.Fields(ind))
		}
	}
	medium := 0
	for _, ind := range mediumUrgencyIndicators {
		if strings.Contains(lower, ind) {
			medium++
		}
	}
	if containsAny(lower, fedUpPhrases) {
		high += 3
	}

	floor := urgencyFromSentiment(score)
	urgency := float64(high)*0.15 + float64(medium)*0.08 + floor
	if high >= 3 {
		urgency += 0.2
	}
	return clamp(urgency, floor, 1)
}

// extractKeywords returns the distinct domain terms found, in vocabulary order.
func extractKeywords(lower string) []string {
	found := make([]string, 0, maxKeywords)
	for _, kw := range domainKeywords {
		if len(found) == maxKeywords {
			break
		}
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func issueCategory(lower string) types.IssueCategory {
	for _, c := range categoryTable {
		if containsAny(lower, c.keywords) {
			return c.category
		}
	}
	return types.CategoryGeneral
}

func recommendRouting(score, urgency float64, category types.IssueCategory) types.RoutingRecommendation {
	switch {
	case urgency > 0.7 || score < -0.5:
		return types.RouteHumanEscalation
	case (category == types.CategoryBilling || category == types.CategoryPlanQuestions) && score > -0.3:
		return types.RouteAgentQA
	case category == types.CategoryNetworkCoverage && urgency < 0.5:
		return types.RouteNetworkHealthDashboard
	default:
		return types.RouteStandardAgent
	}
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func countMatches(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
