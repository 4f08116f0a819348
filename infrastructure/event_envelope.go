package infrastructure

import (
	"encoding/json"
	"time"
)

// EventEnvelope wraps a domain event for transport over NATS.
// The payload carries the JSON-encoded event, the remaining fields
// let consumers route and trace without decoding it.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}
