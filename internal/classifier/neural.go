package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"csr-insights-go/internal/types"
)

const maxNeuralInput = 512 // runes

// transformerLabels maps hosted-model class names onto sentiment labels.
var transformerLabels = map[string]types.SentimentLabel{
	"POSITIVE": types.Positive,
	"NEGATIVE": types.Negative,
	"NEUTRAL":  types.Neutral,
	"LABEL_0":  types.Negative,
	"LABEL_1":  types.Neutral,
	"LABEL_2":  types.Positive,
}

// NeuralClient calls a hosted text-classification endpoint that accepts
// {"inputs": text} and answers with [{label, score}] (optionally nested one
// level, as HuggingFace inference does).
type NeuralClient struct {
	URL          string
	APIKey       string
	HTTPTimeout  time.Duration
	MaxRetryTime time.Duration
	client       *http.Client
}

func NewNeuralClient(url, apiKey string) *NeuralClient {
	return &NeuralClient{
		URL:          url,
		APIKey:       apiKey,
		HTTPTimeout:  5 * time.Second,
		MaxRetryTime: 10 * time.Second,
		client:       &http.Client{},
	}
}

type neuralClass struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the top class reported by the endpoint.
func (n *NeuralClient) Classify(text string) (neuralClass, error) {
	if n.URL == "" {
		return neuralClass{}, errors.New("neural endpoint not configured")
	}
	if r := []rune(text); len(r) > maxNeuralInput {
		text = string(r[:maxNeuralInput])
	}
	data, _ := json.Marshal(map[string]string{"inputs": text})

	var classes []neuralClass
	op := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), n.HTTPTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if n.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+n.APIKey)
		}

		client := n.client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Permanent: don't retry on client errors
			return backoff.Permanent(fmt.Errorf("neural endpoint status %d: %s", resp.StatusCode, string(body)))
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("neural endpoint status %d", resp.StatusCode)
		}
		parsed, err := parseClasses(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		classes = parsed
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = n.MaxRetryTime
	if err := backoff.Retry(op, b); err != nil {
		return neuralClass{}, fmt.Errorf("neural classify failed: %w", err)
	}

	best := classes[0]
	for _, c := range classes[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, nil
}

func parseClasses(body []byte) ([]neuralClass, error) {
	var nested [][]neuralClass
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []neuralClass
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, fmt.Errorf("unexpected neural response: %s", string(body))
}

type neuralBackend struct {
	client *NeuralClient
}

func (neuralBackend) kind() Backend { return BackendNeural }

func (b neuralBackend) polarity(text string) (Polarity, error) {
	c, err := b.client.Classify(text)
	if err != nil {
		return Polarity{}, err
	}
	label, ok := transformerLabels[strings.ToUpper(c.Label)]
	if !ok {
		label = types.Neutral
	}
	p := Polarity{Label: label, Confidence: clamp(c.Score, 0, 1)}
	switch label {
	case types.Positive:
		p.Score = p.Confidence
	case types.Negative:
		p.Score = -p.Confidence
	}
	return p, nil
}
