// Package messaging holds the event publisher used when no broker is configured.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/pkg/events"
)

var _ port.EventPublisher = (*LogPublisher)(nil)

// LogPublisher implements port.EventPublisher by writing events to the log.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event at info level with its payload at debug level.
func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, evt := range domainEvents {
		eventType := evt.EventType()

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		p.logger.InfoContext(ctx, "event emitted",
			slog.String("event_type", eventType),
			slog.String("event_id", evt.EventID().String()),
			slog.String("aggregate_id", evt.AggregateID()),
		)
		p.logger.DebugContext(ctx, "event payload",
			slog.String("event_type", eventType),
			slog.String("payload", string(payload)),
		)
	}
	return nil
}
