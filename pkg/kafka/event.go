// Package kafka carries storefront domain events over segmentio/kafka-go.
// Every message shares the Event envelope; the per-event payload travels
// in Payload and is decoded by consumers with DecodePayload.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the JSON envelope written to every topic. The wire field names
// are frozen; consumers in other services parse them by tag.
type Event struct {
	ID            string            `json:"event_id"`
	Type          string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateKind string            `json:"aggregate_type"`
	SchemaVersion int               `json:"version"`
	OccurredAt    time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Payload       json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent stamps a fresh envelope around data: generated ID, schema
// version 1, UTC occurrence time.
func NewEvent(eventType, aggregateID, aggregateKind, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AggregateID:   aggregateID,
		AggregateKind: aggregateKind,
		SchemaVersion: 1,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		Payload:       payload,
	}, nil
}

// WithCorrelationID threads a request's correlation ID onto the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata attaches an extra key-value pair to the envelope.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	e.Metadata[key] = value
	return e
}

// Marshal renders the envelope as JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unpacks the event payload into target.
func (e *Event) DecodePayload(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// DecodeEvent parses a JSON envelope produced by Marshal.
func DecodeEvent(raw []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	return &e, nil
}
