package types

// --------------------------------------------
// Customer service representative (roster entry)
// --------------------------------------------
type Representative struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Personality     string   `json:"personality" yaml:"personality"`
	Specialties     []string `json:"specialties" yaml:"specialties"`
	ExperienceYears int      `json:"experience_years" yaml:"experience_years"`
	SuccessRate     float64  `json:"success_rate" yaml:"success_rate"` // 0–1
	CurrentCalls    int      `json:"current_calls" yaml:"current_calls"`
	MaxCalls        int      `json:"max_calls" yaml:"max_calls"`
	Description     string   `json:"description" yaml:"description"`
}

// HasSpecialty reports whether any of tags is one of the representative's specialties.
func (r Representative) HasSpecialty(tags ...string) bool {
	for _, s := range r.Specialties {
		for _, t := range tags {
			if s == t {
				return true
			}
		}
	}
	return false
}

// --------------------------------------------
// Roster listing entry
// --------------------------------------------
type RepresentativeView struct {
	Representative
	Available bool `json:"available"`
}

// --------------------------------------------
// Router output
// --------------------------------------------
type RoutingDecision struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Personality     string   `json:"personality"`
	Specialties     []string `json:"specialties"`
	ExperienceYears int      `json:"experience_years"`
	SuccessRate     float64  `json:"success_rate"`
	Description     string   `json:"description"`
	MatchScore      float64  `json:"match_score"`
	Reason          string   `json:"reason"`
}

// --------------------------------------------
// Customer record from the directory
// --------------------------------------------
type CustomerInfo struct {
	PhoneNumber       string  `json:"phone_number"`
	Name              string  `json:"name"`
	Email             string  `json:"email,omitempty"`
	AccountID         string  `json:"account_id,omitempty"`
	Plan              string  `json:"plan"`
	MonthlyBill       float64 `json:"monthly_bill"`
	AccountAgeMonths  int     `json:"account_age_months"`
	PreviousCalls     int     `json:"previous_calls"`
	LastCallDate      string  `json:"last_call_date,omitempty"`
	PreviousSentiment string  `json:"previous_sentiment,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	Location          string  `json:"location"`
}
