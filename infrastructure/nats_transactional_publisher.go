package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"

	"careops/domain/events"
	"careops/domain/interfaces"
)

// NATSTransactionalPublisher buffers events during a unit of work and
// forwards them to the underlying publisher only after the transaction
// commits. Rolled back work discards its events.
type NATSTransactionalPublisher struct {
	publisher interfaces.EventPublisher
	pending   []events.Event
}

// NewNATSTransactionalPublisher creates a transactional wrapper around a publisher
func NewNATSTransactionalPublisher(publisher interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &NATSTransactionalPublisher{
		publisher: publisher,
		pending:   make([]events.Event, 0),
	}
}

// Publish buffers the event until Flush is called
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	log.WithFields(log.Fields{
		"event_type": event.Type(),
		"pending":    len(p.pending),
	}).Debug("Buffered event for transactional publish")
	return nil
}

// Flush publishes all buffered events. Delivery failures are logged
// per event and do not stop the remaining events from going out.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	for _, event := range p.pending {
		if err := p.publisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"event_type": event.Type(),
				"error":      err,
			}).Error("Failed to publish buffered event")
		}
	}
	p.pending = p.pending[:0]
	return nil
}

// Discard drops all buffered events without publishing them
func (p *NATSTransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discarded", len(p.pending)).Debug("Discarded buffered events")
	}
	p.pending = p.pending[:0]
}
