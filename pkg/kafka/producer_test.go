package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	topic    string
	written  []kafkago.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newFakeProducer(t *testing.T) (*Producer, map[string]*fakeWriter) {
	t.Helper()
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	created := map[string]*fakeWriter{}
	p.newWriter = func(topic string) messageWriter {
		w := &fakeWriter{topic: topic}
		created[topic] = w
		return w
	}
	return p, created
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(Config{}); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewProducerRejectsUnknownSASL(t *testing.T) {
	_, err := NewProducer(Config{
		Brokers:       []string{"kafka:9092"},
		SASLUsername:  "svc",
		SASLMechanism: "GSSAPI",
	})
	if err == nil {
		t.Fatal("expected error for unsupported mechanism")
	}
}

func TestSASLMechanism(t *testing.T) {
	tests := []struct {
		mechanism string
		want      string
	}{
		{mechanism: "", want: "PLAIN"},
		{mechanism: "PLAIN", want: "PLAIN"},
		{mechanism: "SCRAM-SHA-256", want: "SCRAM-SHA-256"},
		{mechanism: "SCRAM-SHA-512", want: "SCRAM-SHA-512"},
	}
	for _, tt := range tests {
		cfg := Config{SASLMechanism: tt.mechanism, SASLUsername: "svc", SASLPassword: "pw"}
		m, err := cfg.saslMechanism()
		if err != nil {
			t.Fatalf("%q: %v", tt.mechanism, err)
		}
		if m.Name() != tt.want {
			t.Errorf("%q: mechanism = %s, want %s", tt.mechanism, m.Name(), tt.want)
		}
	}

	m, err := Config{}.saslMechanism()
	if err != nil || m != nil {
		t.Errorf("no credentials: got (%v, %v), want (nil, nil)", m, err)
	}
}

func TestPublishConvertsMessages(t *testing.T) {
	p, created := newFakeProducer(t)

	err := p.Publish(context.Background(), "risk.events", Message{
		Key:     []byte("txn-1"),
		Value:   []byte(`{"risk_score":91}`),
		Headers: map[string]string{"event_type": "risk.transaction.scored"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	w := created["risk.events"]
	if w == nil || len(w.written) != 1 {
		t.Fatalf("expected one message on risk.events, got %+v", w)
	}
	msg := w.written[0]
	if string(msg.Key) != "txn-1" {
		t.Errorf("key = %s", msg.Key)
	}
	if len(msg.Headers) != 1 || msg.Headers[0].Key != "event_type" || string(msg.Headers[0].Value) != "risk.transaction.scored" {
		t.Errorf("unexpected headers: %+v", msg.Headers)
	}
}

func TestPublishNothingCreatesNoWriter(t *testing.T) {
	p, created := newFakeProducer(t)

	if err := p.Publish(context.Background(), "risk.events"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("expected no writers, got %d", len(created))
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	p, _ := newFakeProducer(t)
	boom := errors.New("leader not available")
	p.newWriter = func(string) messageWriter { return &fakeWriter{writeErr: boom} }

	err := p.Publish(context.Background(), "risk.events", Message{Value: []byte("{}")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestGetOrCreateWriterReusesPerTopic(t *testing.T) {
	p, created := newFakeProducer(t)

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	w3 := p.getOrCreateWriter("topic-b")

	if w1 != w2 {
		t.Error("expected same writer instance for same topic")
	}
	if w1 == w3 {
		t.Error("expected different writer instance for different topic")
	}
	if len(created) != 2 {
		t.Errorf("expected 2 writers, got %d", len(created))
	}
}

func TestProducerClose(t *testing.T) {
	p, created := newFakeProducer(t)
	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
	for topic, w := range created {
		if !w.closed {
			t.Errorf("writer for %s not closed", topic)
		}
	}
	if len(p.writers) != 0 {
		t.Errorf("expected 0 writers after close, got %d", len(p.writers))
	}
}
