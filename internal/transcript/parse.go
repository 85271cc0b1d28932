// Package transcript splits speaker-labeled call transcripts into the
// customer and agent streams.
package transcript

import "strings"

type Speaker string

const (
	SpeakerCustomer Speaker = "customer"
	SpeakerAgent    Speaker = "agent"
)

// Turn is one contiguous run of speech by a single speaker.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Parts holds the customer and agent text of a transcript.
type Parts struct {
	Customer string `json:"customer_text"`
	Agent    string `json:"agent_text"`
}

// Split separates a raw "Customer: ... / Agent: ..." transcript into its two
// speaker streams. Labels are case-insensitive and may be followed by a colon
// or a space. Continuation lines belong to the current speaker, unlabeled
// leading lines are treated as customer speech.
func Split(raw string) Parts {
	var customer, agent []string
	for _, t := range Turns(raw) {
		if t.Speaker == SpeakerAgent {
			agent = append(agent, t.Text)
		} else {
			customer = append(customer, t.Text)
		}
	}
	return Parts{
		Customer: strings.TrimSpace(strings.Join(customer, " ")),
		Agent:    strings.TrimSpace(strings.Join(agent, " ")),
	}
}

// Turns returns the labeled turns in order. Empty turns are dropped.
func Turns(raw string) []Turn {
	var (
		out     []Turn
		current Speaker
		buf     []string
	)
	flush := func() {
		if current != "" && len(buf) > 0 {
			out = append(out, Turn{Speaker: current, Text: strings.Join(buf, " ")})
		}
		buf = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if speaker, text, ok := label(line); ok {
			flush()
			current = speaker
			if text != "" {
				buf = []string{text}
			}
			continue
		}
		if current == "" {
			current = SpeakerCustomer
		}
		buf = append(buf, line)
	}
	flush()
	return out
}

// CustomerText extracts customer speech for analysis. Agent turns are
// dropped wherever they appear; unlabeled text counts as customer speech.
func CustomerText(raw string) string {
	return Split(raw).Customer
}

func label(line string) (Speaker, string, bool) {
	lower := strings.ToLower(line)
	for _, s := range []Speaker{SpeakerCustomer, SpeakerAgent} {
		prefix := string(s)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := line[len(prefix):]
		switch {
		case strings.HasPrefix(rest, ":"):
			return s, strings.TrimSpace(rest[1:]), true
		case strings.HasPrefix(rest, " ") && strings.TrimSpace(rest) != "":
			return s, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}

// ParseSpeaker maps a speaker name from a live transcript feed. Empty input
// means the customer.
func ParseSpeaker(s string) (Speaker, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "customer", "caller":
		return SpeakerCustomer, true
	case "agent", "csr", "rep", "representative":
		return SpeakerAgent, true
	}
	return "", false
}
