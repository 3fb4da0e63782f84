package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go-simpler.org/env"
)

// Config enumerates every setting of the intelligence services along with
// its default.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	Addr           string        `env:"INTELLIGENCE_FN_ADDR" default:"0.0.0.0:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"30s"`

	LexiconPath     string `env:"INTELLIGENCE_SENTIMENT_LEXICON_PATH" default:"assets/sentiment_words.json"`
	ModelVersion    string `env:"INTELLIGENCE_FN_MODEL_VERSION" default:"speed-lexicon-v1"`
	VaderCrossCheck bool   `env:"VADER_CROSSCHECK" default:"false"`

	ResultStream   string `env:"ANALYTICS_INTELLIGENCE_RESULT_STREAM" default:"analytics:intelligence:result:v1"`
	ValkeyAddress  string `env:"VALKEY_INIT_ADDRESS" default:"localhost:6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyTLS      bool   `env:"VALKEY_TLS" default:"false"`

	AWSRegion     string `env:"AWS_REGION" default:"us-west-2"`
	AWSEndpoint   string `env:"AWS_ENDPOINT" default:"http://localhost:8000"`
	AnalysesTable string `env:"ANALYSES_TABLE_NAME" default:"Analyses"`

	KafkaBroker       string `env:"KAFKA_BROKER" default:"localhost:29092"`
	KafkaGroupID      string `env:"KAFKA_CONSUMER_GROUP_ID" default:"intelligence-consumer-group"`
	KafkaRequestTopic string `env:"KAFKA_REQUEST_TOPIC" default:"analytics-intelligence-request"`
	KafkaResultTopic  string `env:"KAFKA_RESULT_TOPIC" default:"analytics-intelligence-result"`

	HealthcheckInterval time.Duration `env:"HEALTHCHECK_INTERVAL" default:"15s"`
}

// AppEnvFromOS returns APP_ENV, defaulting to "dev". It is read before the
// .env file is loaded, so it cannot come from Config.
func AppEnvFromOS() string {
	if appEnv := os.Getenv("APP_ENV"); appEnv != "" {
		return appEnv
	}
	return "dev"
}

// Load reads the environment into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"INTELLIGENCE_FN_ADDR", cfg.Addr},
		{"INTELLIGENCE_SENTIMENT_LEXICON_PATH", cfg.LexiconPath},
		{"INTELLIGENCE_FN_MODEL_VERSION", cfg.ModelVersion},
		{"ANALYTICS_INTELLIGENCE_RESULT_STREAM", cfg.ResultStream},
		{"ANALYSES_TABLE_NAME", cfg.AnalysesTable},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if cfg.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if cfg.HealthcheckInterval <= 0 {
		return errors.New("HEALTHCHECK_INTERVAL must be positive")
	}

	return nil
}
