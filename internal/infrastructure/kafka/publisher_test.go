package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/domain/event"
	"github.com/bibbank/risk-service/internal/infrastructure/kafka"
	pkgkafka "github.com/bibbank/risk-service/pkg/kafka"
)

type mockProducer struct {
	topic       string
	messages    []pkgkafka.Message
	publishErr  error
	publishCall int
}

func (m *mockProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	m.publishCall++
	if m.publishErr != nil {
		return m.publishErr
	}
	m.topic = topic
	m.messages = append(m.messages, messages...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("encodes events keyed by transaction", func(t *testing.T) {
		prod := &mockProducer{}
		pub := kafka.NewPublisher(prod, "risk.events", testLogger())

		scored := event.NewTransactionScored("t1", "u1", 91.5, "High", []string{"r1"})
		alert := event.NewHighRiskDetected("t1", "u1", 91.5, []string{"r1"})
		require.NoError(t, pub.Publish(context.Background(), scored, alert))

		assert.Equal(t, "risk.events", prod.topic)
		require.Len(t, prod.messages, 2)

		msg := prod.messages[0]
		assert.Equal(t, "t1", string(msg.Key))
		assert.Equal(t, event.EventTypeTransactionScored, msg.Headers["event_type"])
		assert.Equal(t, scored.EventID().String(), msg.Headers["event_id"])

		var payload map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		assert.Equal(t, "u1", payload["user_id"])
		assert.Equal(t, 91.5, payload["risk_score"])
		assert.Equal(t, event.EventTypeTransactionScored, payload["event_type"])

		assert.Equal(t, event.EventTypeHighRiskDetected, prod.messages[1].Headers["event_type"])
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		prod := &mockProducer{}
		pub := kafka.NewPublisher(prod, "risk.events", testLogger())

		require.NoError(t, pub.Publish(context.Background()))
		assert.Zero(t, prod.publishCall)
	})

	t.Run("wraps producer errors", func(t *testing.T) {
		boom := errors.New("broker unreachable")
		pub := kafka.NewPublisher(&mockProducer{publishErr: boom}, "risk.events", testLogger())

		err := pub.Publish(context.Background(), event.NewTransactionScored("t1", "u1", 1, "Low", nil))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "risk.events")
	})
}
