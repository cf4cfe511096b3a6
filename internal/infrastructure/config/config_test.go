package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/infrastructure/config"
)

var allKeys = []string{
	"HTTP_PORT", "GRPC_PORT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT", "MODEL_PATH",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "SUMMARY_TIMEOUT",
	"HISTORY_MAX_PER_USER", "BATCH_WORKERS", "KAFKA_BROKERS", "EVENTS_TOPIC",
	"KAFKA_TLS", "KAFKA_SASL_MECHANISM", "KAFKA_SASL_USERNAME", "KAFKA_SASL_PASSWORD",
	"DATABASE_URL", "OTEL_EXPORTER_OTLP_ENDPOINT", "GRPC_TLS_CERT_FILE", "GRPC_TLS_KEY_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir()) // keep a developer's .env out of the test
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, ":9000", cfg.GRPCAddress())
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 10*time.Second, cfg.SummaryTimeout)
	assert.Equal(t, 0, cfg.HistoryMaxPerUser)
	assert.Equal(t, 1, cfg.BatchWorkers)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.SummarizerEnabled())
	assert.False(t, cfg.GRPCTLSEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("SUMMARY_TIMEOUT", "2s")
	t.Setenv("HISTORY_MAX_PER_USER", "500")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TLS", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddress())
	assert.True(t, cfg.SummarizerEnabled())
	assert.Equal(t, 2*time.Second, cfg.SummaryTimeout)
	assert.Equal(t, 500, cfg.HistoryMaxPerUser)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaTLS)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		msg   string
	}{
		{name: "malformed worker count", key: "BATCH_WORKERS", value: "many", msg: "BATCH_WORKERS"},
		{name: "zero workers", key: "BATCH_WORKERS", value: "0", msg: "BATCH_WORKERS"},
		{name: "negative cap", key: "HISTORY_MAX_PER_USER", value: "-5", msg: "HISTORY_MAX_PER_USER"},
		{name: "bad timeout", key: "SUMMARY_TIMEOUT", value: "soon", msg: "SUMMARY_TIMEOUT"},
		{name: "cert without key", key: "GRPC_TLS_CERT_FILE", value: "/tmp/cert.pem", msg: "GRPC_TLS_KEY_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_MalformedValuesNameTheParseError(t *testing.T) {
	tests := []struct {
		key   string
		value string
		msg   string
	}{
		{key: "BATCH_WORKERS", value: "many", msg: `BATCH_WORKERS must be an integer, got "many"`},
		{key: "HISTORY_MAX_PER_USER", value: "lots", msg: `HISTORY_MAX_PER_USER must be an integer, got "lots"`},
		{key: "SUMMARY_TIMEOUT", value: "soon", msg: `SUMMARY_TIMEOUT must be a duration`},
		{key: "KAFKA_TLS", value: "maybe", msg: `KAFKA_TLS must be a boolean, got "maybe"`},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.NotContains(t, err.Error(), "at least 1")
			assert.NotContains(t, err.Error(), "must not be negative")
		})
	}
}
