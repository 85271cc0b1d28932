package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string           `yaml:"port"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	DatasetPath string           `yaml:"dataset_path"`
	RosterPath  string           `yaml:"roster_path"`
	DatabaseURL string           `yaml:"database_url"`
	Notify      NotifyConfig     `yaml:"notify"`
	HistoryTTL  time.Duration    `yaml:"history_ttl"`
	LogLevel    string           `yaml:"log_level"`
}

type ClassifierConfig struct {
	Backend      string `yaml:"backend"`
	ModelPath    string `yaml:"model_path"`
	NeuralURL    string `yaml:"neural_url"`
	NeuralAPIKey string `yaml:"neural_api_key"`
}

type NotifyConfig struct {
	WebhookURL   string   `yaml:"webhook_url"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (config.yaml by
// default, optional), then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: "8080",
		Classifier: ClassifierConfig{
			Backend: "lexicon",
		},
		DatasetPath: "call_transcripts.xlsx",
		Notify: NotifyConfig{
			KafkaTopic: "inbound-calls",
		},
		HistoryTTL: 2 * time.Hour,
		LogLevel:   "info",
	}

	path := envOr("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CLASSIFIER_BACKEND"); v != "" {
		cfg.Classifier.Backend = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Classifier.ModelPath = v
	}
	if v := os.Getenv("NEURAL_URL"); v != "" {
		cfg.Classifier.NeuralURL = v
	}
	if v := os.Getenv("NEURAL_API_KEY"); v != "" {
		cfg.Classifier.NeuralAPIKey = v
	}
	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("ROSTER_PATH"); v != "" {
		cfg.RosterPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Notify.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Notify.KafkaTopic = v
	}
	if v := os.Getenv("HISTORY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_TTL: %w", err)
		}
		cfg.HistoryTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
