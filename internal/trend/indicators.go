package trend

import (
	"math"
	"regexp"
	"strings"
)

// Polarity is the coarse three-way sentiment used for call summaries.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNeutral  Polarity = "neutral"
	PolarityNegative Polarity = "negative"
)

var wordRe = regexp.MustCompile(`\w+`)

var (
	positiveWords = wordSet("thank", "thanks", "great", "good", "excellent", "perfect", "happy",
		"appreciate", "wonderful", "awesome", "love", "helpful", "pleased",
		"satisfied", "amazing", "fantastic")
	negativeWords = wordSet("frustrated", "angry", "upset", "disappointed", "horrible", "terrible",
		"awful", "hate", "worst", "useless", "annoyed", "irritated", "mad",
		"furious", "unacceptable", "ridiculous", "stupid")
	urgencyWords = wordSet("urgent", "immediately", "asap", "now", "emergency", "critical",
		"serious", "important", "must", "need", "quickly", "hurry")
	confusionWords = wordSet("confused", "understand", "explain", "what", "how", "why", "clarify",
		"unclear", "lost", "complicated")
)

// Indicators is the word-level reading of one customer turn.
type Indicators struct {
	Score          float64  `json:"sentiment_score"`
	Primary        Polarity `json:"primary_sentiment"`
	Emotions       []string `json:"emotions"`
	Confidence     float64  `json:"confidence"`
	ShouldEscalate bool     `json:"should_escalate"`
	PositiveWords  int      `json:"positive_words"`
	NegativeWords  int      `json:"negative_words"`
	UrgencyWords   int      `json:"urgency_words"`
	ConfusionWords int      `json:"confusion_words"`
}

// Analyze counts distinct indicator words in text. Empty text yields the
// zero reading with a neutral primary sentiment.
func Analyze(text string) Indicators {
	in := Indicators{Primary: PolarityNeutral, Emotions: []string{}}
	if strings.TrimSpace(text) == "" {
		return in
	}

	words := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}
	for w := range words {
		if _, ok := positiveWords[w]; ok {
			in.PositiveWords++
		}
		if _, ok := negativeWords[w]; ok {
			in.NegativeWords++
		}
		if _, ok := urgencyWords[w]; ok {
			in.UrgencyWords++
		}
		if _, ok := confusionWords[w]; ok {
			in.ConfusionWords++
		}
	}

	total := in.PositiveWords + in.NegativeWords
	if total > 0 {
		in.Score = float64(in.PositiveWords-in.NegativeWords) / float64(total)
	}
	switch {
	case in.Score > 0.3:
		in.Primary = PolarityPositive
	case in.Score < -0.3:
		in.Primary = PolarityNegative
	}

	if in.UrgencyWords > 0 {
		in.Emotions = append(in.Emotions, "urgent")
	}
	if in.ConfusionWords > 0 {
		in.Emotions = append(in.Emotions, "confused")
	}
	frustrated := in.NegativeWords > 2
	if frustrated {
		in.Emotions = append(in.Emotions, "frustrated")
	}
	if in.PositiveWords > 2 {
		in.Emotions = append(in.Emotions, "satisfied")
	}

	in.Confidence = math.Min(1, float64(total)/5)
	in.ShouldEscalate = (in.Primary == PolarityNegative && in.NegativeWords >= 3) ||
		in.UrgencyWords >= 2 ||
		(frustrated && in.UrgencyWords >= 1)
	return in
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
