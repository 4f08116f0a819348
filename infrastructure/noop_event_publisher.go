package infrastructure

import (
	log "github.com/sirupsen/logrus"

	"careops/domain/events"
)

// NoopEventPublisher drops events. Used when NATS is unavailable or
// intentionally disabled, for example in tests.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates an event publisher that discards everything
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs and drops the event
func (p *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("event_type", event.Type()).Debug("Dropping event, no publisher configured")
	return nil
}
