package aggregator

import (
	"sort"

	"csr-insights-go/internal/types"
)

type Insight struct {
	TotalCalls     int                `json:"total_calls"`
	CategoryCounts map[string]int     `json:"category_counts"`
	LabelCounts    map[string]int     `json:"label_counts"`
	EscalationRate map[string]float64 `json:"escalation_rate_by_category"`
	MeanUrgency    float64            `json:"mean_urgency"`
	TopKeywords    []string           `json:"top_keywords"`
}

const topKeywords = 10

// Aggregate rolls predictions up per issue category. The escalation rate of a
// category is the share of its predictions routed to human_escalation.
func Aggregate(preds []types.SentimentPrediction) Insight {
	total := map[string]int{}
	escalated := map[string]int{}
	labels := map[string]int{}
	keywords := map[string]int{}
	urgency := 0.0
	for _, p := range preds {
		cat := string(p.IssueCategory)
		if cat == "" {
			cat = string(types.CategoryGeneral)
		}
		total[cat]++
		if p.Routing == types.RouteHumanEscalation {
			escalated[cat]++
		}
		if p.Label != "" {
			labels[string(p.Label)]++
		}
		for _, k := range p.Keywords {
			keywords[k]++
		}
		urgency += p.UrgencyScore
	}
	rate := map[string]float64{}
	for k := range total {
		rate[k] = float64(escalated[k]) / float64(total[k])
	}
	ins := Insight{
		TotalCalls:     len(preds),
		CategoryCounts: total,
		LabelCounts:    labels,
		EscalationRate: rate,
		TopKeywords:    rankKeywords(keywords, topKeywords),
	}
	if len(preds) > 0 {
		ins.MeanUrgency = urgency / float64(len(preds))
	}
	return ins
}

// rankKeywords orders by count, then alphabetically.
func rankKeywords(counts map[string]int, n int) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
