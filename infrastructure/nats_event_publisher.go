package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"careops/domain/events"
)

// NATSEventPublisher publishes domain events to NATS JetStream.
// Local handlers registered for an event type run in-process before
// the event goes out on the wire.
type NATSEventPublisher struct {
	natsClient    *NATSClient
	localHandlers map[events.EventType][]func(context.Context, events.Event) error
	mu            sync.RWMutex
}

// NewNATSEventPublisher creates a new NATS-backed event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		localHandlers: make(map[events.EventType][]func(context.Context, events.Event) error),
	}
}

// RegisterLocalHandler registers an in-process handler for an event type
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
}

// Publish delivers the event to local handlers and then to NATS
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	p.mu.RLock()
	handlers := p.localHandlers[event.Type()]
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"event_type": event.Type(),
				"error":      err,
			}).Error("Local event handler failed")
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "careops",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := MapEventToSubject(event.Type())
	if err := p.natsClient.Publish(ctx, subject, data); err != nil {
		// The stream may not yet exist in a fresh environment. Event
		// delivery is best effort, the state change already committed.
		if strings.Contains(err.Error(), "no response from stream") {
			log.WithFields(log.Fields{
				"event_type": event.Type(),
				"subject":    subject,
			}).Warn("Event not delivered, stream unavailable")
			return nil
		}
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.WithFields(log.Fields{
		"event_type": event.Type(),
		"event_id":   envelope.EventID,
		"subject":    subject,
	}).Debug("Published domain event")
	return nil
}

// EnsureDomainEventStream creates the domain event stream if missing
func (p *NATSEventPublisher) EnsureDomainEventStream() error {
	return p.natsClient.ensureStream(EventStreamName, []string{"careops.>"})
}
