package classifier

import "csr-insights-go/internal/types"

// Phrase tables. Matching is case-insensitive substring matching on the
// lower-cased text, so "cancel" also matches "cancellation".

var strongNegativePhrases = []string{
	"done with", "fed up", "had enough", "sick of", "tired of",
	"want to cancel", "switching", "leaving", "cancel service",
	"worst service", "terrible service", "unacceptable", "ridiculous",
	"never again", "worst company", "hate this", "absolutely done",
}

var strongPositivePhrases = []string{
	"love it", "amazing service", "best service", "very happy",
	"so grateful", "thank you so much", "excellent service", "perfect",
}

// fedUpPhrases boost both frustration and urgency.
var fedUpPhrases = []string{"done with", "fed up", "had enough", "sick of"}

var cancellationPhrases = []string{"cancel", "switching", "leaving", "done"}

type emotionKeywords struct {
	emotion  types.Emotion
	keywords []string
}

// emotionTable order is the tie-break order for equal emotion scores.
var emotionTable = []emotionKeywords{
	{types.EmotionAngry, []string{
		"angry", "mad", "furious", "rage", "livid", "outraged", "enraged",
		"pissed", "pissed off", "infuriated", "irate", "fuming",
	}},
	{types.EmotionFrustrated, []string{
		"frustrated", "annoyed", "irritated", "fed up", "sick of", "tired of",
		"done with", "had enough", "exasperated", "aggravated",
	}},
	{types.EmotionDisappointed, []string{
		"disappointed", "let down", "dissatisfied", "unhappy", "upset",
		"disheartened", "discouraged", "disillusioned",
	}},
	{types.EmotionConfused, []string{
		"confused", "unclear", "don't understand", "puzzled", "bewildered",
		"perplexed", "lost", "don't get it",
	}},
	{types.EmotionAnxious, []string{
		"worried", "anxious", "concerned", "nervous", "stressed", "panicked",
		"uneasy", "apprehensive",
	}},
	{types.EmotionSatisfied, []string{
		"satisfied", "pleased", "content", "good enough", "okay", "fine",
		"acceptable", "decent",
	}},
	{types.EmotionHappy, []string{
		"happy", "excited", "thrilled", "delighted", "joyful", "ecstatic",
		"overjoyed", "pleased", "glad",
	}},
}

var highUrgencyIndicators = []string{
	"urgent", "immediately", "asap", "critical", "emergency", "now",
	"right away", "can't wait", "need help now", "escalate", "manager",
	"supervisor", "complaint", "filing complaint", "cancel", "switching",
	"third time", "multiple times", "again", "still", "yet again",
	"fed up", "had enough", "done with", "want to cancel", "lawyer",
	"sue", "terrible service", "worst service", "unacceptable",
	"absolutely done", "never again", "worst company", "hate this",
	"leaving", "switching to", "cancel service", "terminate", "quit",
}

var mediumUrgencyIndicators = []string{
	"frustrated", "disappointed", "upset", "angry", "annoyed",
	"problem", "issue", "broken", "not working", "doesn't work",
	"slow", "bad", "poor", "wrong", "error", "failed",
	"concerned", "worried", "unhappy", "dissatisfied", "trouble",
	"sick of", "tired of", "unacceptable", "ridiculous", "outrageous",
}

var domainKeywords = []string{
	"tmobile", "t-mobile", "network", "coverage", "signal", "dropped call",
	"billing", "bill", "charge", "plan", "data", "speed", "5g", "lte",
	"customer service", "support", "agent", "issue", "problem", "fix",
}

const maxKeywords = 10

type categoryKeywords struct {
	category types.IssueCategory
	keywords []string
}

// categoryTable is checked in order; the first category with a match wins.
var categoryTable = []categoryKeywords{
	{types.CategoryNetworkCoverage, []string{"coverage", "signal", "dropped", "no service", "dead zone", "slow", "5g", "lte"}},
	{types.CategoryBilling, []string{"bill", "charge", "overcharge", "fee", "price", "cost", "refund"}},
	{types.CategoryCustomerService, []string{"support", "rep", "customer service", "rude", "unhelpful", "wait time"}},
	{types.CategoryTechnical, []string{"app", "website", "login", "error", "bug", "sim", "activation"}},
	{types.CategoryDeviceIssues, []string{"phone", "device", "not working", "broken", "defective"}},
	{types.CategoryPlanQuestions, []string{"plan", "unlimited", "data", "upgrade", "downgrade", "switch"}},
}

// Rule-based backend vocabularies.
var (
	rulePositiveWords = []string{"great", "excellent", "good", "love", "amazing", "thank", "appreciate", "satisfied"}
	ruleNegativeWords = []string{"terrible", "awful", "horrible", "bad", "hate", "worst", "disappointed", "frustrated", "angry"}
)
