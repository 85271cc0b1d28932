package router

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"csr-insights-go/internal/types"
)

// ReferenceRoster returns the six built-in representatives, all idle.
func ReferenceRoster() []types.Representative {
	return []types.Representative{
		{
			ID:              "csr_001",
			Name:            "Sarah Chen",
			Personality:     "De-escalation Expert",
			Specialties:     []string{"de-escalation", "angry_customers", "complaints"},
			ExperienceYears: 8,
			SuccessRate:     0.95,
			MaxCalls:        3,
			Description:     "Calms frustrated customers and turns negative experiences around. Handles angry and upset callers.",
		},
		{
			ID:              "csr_002",
			Name:            "Michael Rodriguez",
			Personality:     "Technical Specialist",
			Specialties:     []string{"technical", "network_coverage", "device_issues"},
			ExperienceYears: 6,
			SuccessRate:     0.92,
			MaxCalls:        4,
			Description:     "Solves complex network and device problems and explains them in plain terms.",
		},
		{
			ID:              "csr_003",
			Name:            "Emily Johnson",
			Personality:     "Billing & Plans Expert",
			Specialties:     []string{"billing", "plan_questions", "refunds"},
			ExperienceYears: 5,
			SuccessRate:     0.90,
			MaxCalls:        5,
			Description:     "Billing disputes, plan changes and refunds. Patient and detail-oriented with account money questions.",
		},
		{
			ID:              "csr_004",
			Name:            "David Kim",
			Personality:     "High-Urgency Handler",
			Specialties:     []string{"urgent", "escalations", "cancellations"},
			ExperienceYears: 7,
			SuccessRate:     0.93,
			MaxCalls:        2,
			Description:     "Takes high-urgency calls and works to keep customers from cancelling.",
		},
		{
			ID:              "csr_005",
			Name:            "Jessica Martinez",
			Personality:     "Empathetic Listener",
			Specialties:     []string{"emotional_support", "confused_customers", "anxious"},
			ExperienceYears: 4,
			SuccessRate:     0.88,
			MaxCalls:        4,
			Description:     "Patient with confused, anxious or worried customers who need extra support.",
		},
		{
			ID:              "csr_006",
			Name:            "Robert Thompson",
			Personality:     "Generalist",
			Specialties:     []string{"general", "standard_issues", "first_contact"},
			ExperienceYears: 3,
			SuccessRate:     0.85,
			MaxCalls:        6,
			Description:     "Handles general inquiries and standard issues. Good first contact.",
		},
	}
}

// LoadRoster reads a YAML list of representatives. Roster order matters:
// it breaks score ties and its first entry takes overflow calls.
func LoadRoster(path string) ([]types.Representative, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var roster []types.Representative
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if err := validate(roster); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

func validate(roster []types.Representative) error {
	if len(roster) == 0 {
		return errors.New("roster is empty")
	}
	seen := map[string]bool{}
	for i, r := range roster {
		if r.ID == "" {
			return fmt.Errorf("entry %d has no id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
		if r.MaxCalls < 0 || r.CurrentCalls < 0 {
			return fmt.Errorf("%s: negative call counts", r.ID)
		}
	}
	return nil
}
