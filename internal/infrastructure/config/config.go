package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the risk service.
const (
	DefaultHTTPPort       = "8000"
	DefaultGRPCPort       = "9000"
	DefaultEnvironment    = "development"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com"
	DefaultSummaryTimeout = 10 * time.Second
	DefaultEventsTopic    = "risk.events"
)

// Config holds all configuration for the risk service.
type Config struct {
	HTTPPort    string
	GRPCPort    string
	Environment string
	LogLevel    string
	LogFormat   string

	// ModelPath points at a model artifact; empty loads the bundled model.
	ModelPath string

	// Summarizer. An empty API key disables narrative summaries.
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	SummaryTimeout time.Duration

	HistoryMaxPerUser int
	BatchWorkers      int

	// Event transport. No brokers means events are only logged.
	KafkaBrokers       []string
	EventsTopic        string
	KafkaTLS           bool
	KafkaSASLMechanism string
	KafkaSASLUsername  string
	KafkaSASLPassword  string

	// DatabaseURL enables the score audit archive when set.
	DatabaseURL string

	OTLPEndpoint string

	GRPCTLSCertFile string
	GRPCTLSKeyFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	summaryTimeout, err := getEnvDuration("SUMMARY_TIMEOUT", DefaultSummaryTimeout)
	if err != nil {
		return nil, err
	}
	historyMaxPerUser, err := getEnvInt("HISTORY_MAX_PER_USER", 0)
	if err != nil {
		return nil, err
	}
	batchWorkers, err := getEnvInt("BATCH_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	kafkaTLS, err := getEnvBool("KAFKA_TLS", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", DefaultHTTPPort),
		GRPCPort:           getEnv("GRPC_PORT", DefaultGRPCPort),
		Environment:        getEnv("ENVIRONMENT", DefaultEnvironment),
		LogLevel:           getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:          getEnv("LOG_FORMAT", DefaultLogFormat),
		ModelPath:          os.Getenv("MODEL_PATH"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		SummaryTimeout:     summaryTimeout,
		HistoryMaxPerUser:  historyMaxPerUser,
		BatchWorkers:       batchWorkers,
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:        getEnv("EVENTS_TOPIC", DefaultEventsTopic),
		KafkaTLS:           kafkaTLS,
		KafkaSASLMechanism: os.Getenv("KAFKA_SASL_MECHANISM"),
		KafkaSASLUsername:  os.Getenv("KAFKA_SASL_USERNAME"),
		KafkaSASLPassword:  os.Getenv("KAFKA_SASL_PASSWORD"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		GRPCTLSCertFile:    os.Getenv("GRPC_TLS_CERT_FILE"),
		GRPCTLSKeyFile:     os.Getenv("GRPC_TLS_KEY_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.HistoryMaxPerUser < 0 {
		return fmt.Errorf("HISTORY_MAX_PER_USER must not be negative")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	if c.SummaryTimeout <= 0 {
		return fmt.Errorf("SUMMARY_TIMEOUT must be positive")
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// SummarizerEnabled reports whether narrative summaries are configured.
func (c *Config) SummarizerEnabled() bool {
	return c.GeminiAPIKey != ""
}

// GRPCTLSEnabled reports whether the gRPC listener should serve TLS.
func (c *Config) GRPCTLSEnabled() bool {
	return c.GRPCTLSCertFile != "" && c.GRPCTLSKeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// The typed getters fall back to the default when the variable is absent and
// fail on a value that does not parse.

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return i, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 10s, got %q", key, value)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
