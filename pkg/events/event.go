// Package events defines the envelope shared by every event the service emits.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. Concrete
// events embed it so the envelope fields are serialized alongside the payload.
type BaseEvent struct {
	OccurredOn time.Time `json:"occurred_at"`
	Type       string    `json:"event_type"`
	Aggregate  string    `json:"aggregate_id"`
	ID         uuid.UUID `json:"event_id"`
}

// NewBaseEvent creates a new BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Aggregate:  aggregateID,
		OccurredOn: time.Now().UTC(),
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type name of this event.
func (e BaseEvent) EventType() string {
	return e.Type
}

// AggregateID returns the identifier of the entity that produced this event.
func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.OccurredOn
}
