package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"csr-insights-go/internal/types"
)

// labelScores maps a predicted class onto the continuous sentiment scale.
var labelScores = map[types.SentimentLabel]float64{
	types.VeryPositive: 0.8,
	types.Positive:     0.4,
	types.Neutral:      0,
	types.Negative:     -0.4,
	types.VeryNegative: -0.8,
}

var tokenRe = regexp.MustCompile(`[a-z0-9']+`)

// Example is one labeled utterance used for training.
type Example struct {
	Text  string               `json:"text"`
	Label types.SentimentLabel `json:"label"`
}

// NaiveBayes is a multinomial naive Bayes bag-of-words sentiment model over
// unigrams and bigrams with Laplace smoothing.
type NaiveBayes struct {
	Labels     []types.SentimentLabel                      `json:"labels"`
	LogPriors  map[types.SentimentLabel]float64            `json:"log_priors"`
	LogProbs   map[types.SentimentLabel]map[string]float64 `json:"log_probs"`
	LogUnknown map[types.SentimentLabel]float64            `json:"log_unknown"`
}

// TrainNaiveBayes fits a model. Examples without text or label are skipped.
func TrainNaiveBayes(examples []Example) (*NaiveBayes, error) {
	docs := map[types.SentimentLabel]int{}
	counts := map[types.SentimentLabel]map[string]int{}
	totals := map[types.SentimentLabel]int{}
	vocab := map[string]struct{}{}
	n := 0

	for _, ex := range examples {
		if strings.TrimSpace(ex.Text) == "" || ex.Label == "" {
			continue
		}
		n++
		docs[ex.Label]++
		if counts[ex.Label] == nil {
			counts[ex.Label] = map[string]int{}
		}
		for _, tok := range features(ex.Text) {
			counts[ex.Label][tok]++
			totals[ex.Label]++
			vocab[tok] = struct{}{}
		}
	}
	if n == 0 {
		return nil, errors.New("no labeled transcripts provided")
	}

	m := &NaiveBayes{
		LogPriors:  map[types.SentimentLabel]float64{},
		LogProbs:   map[types.SentimentLabel]map[string]float64{},
		LogUnknown: map[types.SentimentLabel]float64{},
	}
	v := float64(len(vocab))
	for label, d := range docs {
		m.Labels = append(m.Labels, label)
		m.LogPriors[label] = math.Log(float64(d) / float64(n))
		denom := float64(totals[label]) + v
		probs := make(map[string]float64, len(counts[label]))
		for tok, c := range counts[label] {
			probs[tok] = math.Log((float64(c) + 1) / denom)
		}
		m.LogProbs[label] = probs
		m.LogUnknown[label] = math.Log(1 / denom)
	}
	sort.Slice(m.Labels, func(i, j int) bool { return m.Labels[i] < m.Labels[j] })
	return m, nil
}

// Predict returns the most probable label and its posterior probability.
func (m *NaiveBayes) Predict(text string) (types.SentimentLabel, float64) {
	toks := features(text)
	logp := make([]float64, len(m.Labels))
	for i, label := range m.Labels {
		lp := m.LogPriors[label]
		for _, tok := range toks {
			if p, ok := m.LogProbs[label][tok]; ok {
				lp += p
			} else {
				lp += m.LogUnknown[label]
			}
		}
		logp[i] = lp
	}

	best := 0
	for i := range logp {
		if logp[i] > logp[best] {
			best = i
		}
	}
	// softmax normalisation relative to the best class
	var sum float64
	for _, lp := range logp {
		sum += math.Exp(lp - logp[best])
	}
	return m.Labels[best], 1 / sum
}

// Accuracy is the share of examples whose label the model predicts.
func (m *NaiveBayes) Accuracy(examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	hit := 0
	for _, ex := range examples {
		if label, _ := m.Predict(ex.Text); label == ex.Label {
			hit++
		}
	}
	return float64(hit) / float64(len(examples))
}

// Save writes the model as JSON, creating the parent directory.
func (m *NaiveBayes) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// LoadNaiveBayes reads a model saved by Save.
func LoadNaiveBayes(path string) (*NaiveBayes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m NaiveBayes
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Labels) == 0 {
		return nil, errors.New("model has no labels")
	}
	return &m, nil
}

// SplitHoldout shuffles deterministically by seed and holds out testFraction
// of the examples for evaluation.
func SplitHoldout(examples []Example, testFraction float64, seed int64) (train, test []Example) {
	shuffled := append([]Example(nil), examples...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	k := int(math.Round(float64(len(shuffled)) * testFraction))
	if k >= len(shuffled) && len(shuffled) > 0 {
		k = len(shuffled) - 1
	}
	return shuffled[k:], shuffled[:k]
}

type trainedBackend struct {
	model *NaiveBayes
}

func (trainedBackend) kind() Backend { return BackendTrained }

func (b trainedBackend) polarity(text string) (Polarity, error) {
	label, confidence := b.model.Predict(text)
	return Polarity{Label: label, Score: labelScores[label], Confidence: confidence}, nil
}

func features(text string) []string {
	words := tokenRe.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 1; i < len(words); i++ {
		out = append(out, words[i-1]+" "+words[i])
	}
	return out
}
