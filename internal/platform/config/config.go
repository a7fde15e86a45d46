package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the interview service.
// Values come from config.yaml with environment variable overrides.
type Config struct {
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	PostgresDSN string `mapstructure:"POSTGRES_DSN"`
	NATSURL     string `mapstructure:"NATS_URL"`

	HTTPPort    int `mapstructure:"HTTP_PORT"`
	MetricsPort int `mapstructure:"METRICS_PORT"`

	// Gemini credentials. An empty API key is the documented "disabled"
	// state: the answer classifier falls back to its heuristic and the
	// scoring pipeline aborts with a log entry instead of calling out.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	ScoringWorkerCount   int           `mapstructure:"SCORING_WORKER_COUNT"`
	ScoringQueueSubject  string        `mapstructure:"SCORING_QUEUE_SUBJECT"`
	ScoringTimeout       time.Duration `mapstructure:"SCORING_TIMEOUT"`
	ClassifierTimeout    time.Duration `mapstructure:"CLASSIFIER_TIMEOUT"`
	WebhookHandleTimeout time.Duration `mapstructure:"WEBHOOK_HANDLE_TIMEOUT"`
}

// Load reads configuration for the named service from config.yaml (current
// directory or /etc/<serviceName>/) and the environment. Environment
// variables take precedence and use the mapstructure key directly
// (e.g. POSTGRES_DSN).
func Load(serviceName string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/" + serviceName)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("METRICS_PORT", 9090)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("SCORING_WORKER_COUNT", 4)
	v.SetDefault("SCORING_QUEUE_SUBJECT", "interviews.completed")
	v.SetDefault("SCORING_TIMEOUT", 60*time.Second)
	v.SetDefault("CLASSIFIER_TIMEOUT", 10*time.Second)
	v.SetDefault("WEBHOOK_HANDLE_TIMEOUT", 15*time.Second)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	return &cfg, nil
}
