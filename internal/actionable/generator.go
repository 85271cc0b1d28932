package actionable

import (
	"fmt"
	"sort"

	"csr-insights-go/internal/aggregator"
	"csr-insights-go/internal/types"
)

type ActionCard struct {
	Category string `json:"category,omitempty"`
	Insight  string `json:"insight"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

const escalationThreshold = 0.35

var actions = map[types.IssueCategory]string{
	types.CategoryBilling:         "Audit recent billing changes; brief billing specialists on the top disputes",
	types.CategoryNetworkCoverage: "Cross-check affected areas against the network health dashboard; publish outage notices",
	types.CategoryCustomerService: "Review escalated calls in agent QA; coach on de-escalation",
	types.CategoryTechnical:       "Route to technical specialists first; update troubleshooting scripts",
	types.CategoryDeviceIssues:    "Expand device troubleshooting guides; stock replacement options",
	types.CategoryPlanQuestions:   "Simplify plan comparison material; add proactive upgrade guidance",
}

const defaultAction = "Review escalated calls and add staff with matching specialties"

// Generate picks the category with the highest escalation rate. Ties go to
// the alphabetically first category.
func Generate(ins aggregator.Insight) ActionCard {
	cats := make([]string, 0, len(ins.EscalationRate))
	for c := range ins.EscalationRate {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	worst := ""
	highest := 0.0
	for _, c := range cats {
		if v := ins.EscalationRate[c]; v > highest {
			highest = v
			worst = c
		}
	}
	if highest >= escalationThreshold && worst != "" {
		action, ok := actions[types.IssueCategory(worst)]
		if !ok {
			action = defaultAction
		}
		return ActionCard{
			Category: worst,
			Insight:  fmt.Sprintf("High escalation in %s (%.0f%%)", worst, highest*100),
			Action:   action,
			Impact:   "Reduce repeat escalations and CSR load",
		}
	}
	return ActionCard{
		Insight: "No strong escalation pattern detected",
		Action:  "Monitor and collect more data",
		Impact:  "Low immediate intervention",
	}
}
