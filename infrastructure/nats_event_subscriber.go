package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"careops/domain/events"
)

// NATSEventSubscriber consumes domain events from NATS and dispatches
// them to registered handlers
type NATSEventSubscriber struct {
	natsClient *NATSClient
	handlers   map[string]func(context.Context, events.Event) error
	mu         sync.RWMutex
}

// NewNATSEventSubscriber creates a new NATS event subscriber
func NewNATSEventSubscriber(natsClient *NATSClient) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		natsClient: natsClient,
		handlers:   make(map[string]func(context.Context, events.Event) error),
	}
}

// Subscribe registers a handler for a domain event type
func (s *NATSEventSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	subject := MapEventToSubject(eventType)

	s.mu.Lock()
	s.handlers[subject] = handler
	s.mu.Unlock()

	return s.natsClient.Subscribe(subject, func(data []byte) error {
		return s.handleMessage(subject, data)
	})
}

func (s *NATSEventSubscriber) handleMessage(subject string, data []byte) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	event, err := deserializeEvent(events.EventType(envelope.EventType), envelope.Payload)
	if err != nil {
		return err
	}

	s.mu.RLock()
	handler, ok := s.handlers[subject]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for subject %s", subject)
	}

	log.WithFields(log.Fields{
		"event_type": envelope.EventType,
		"event_id":   envelope.EventID,
		"source":     envelope.SourceService,
	}).Debug("Received domain event")

	return handler(context.Background(), event)
}

// deserializeEvent decodes the envelope payload into a typed domain event
func deserializeEvent(eventType events.EventType, payload json.RawMessage) (events.Event, error) {
	switch eventType {
	case events.EventTypeAutomationRunCompleted:
		var event events.AutomationRunCompletedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal automation run completed event: %w", err)
		}
		return event, nil
	case events.EventTypeNotificationQueued:
		var event events.NotificationQueuedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification queued event: %w", err)
		}
		return event, nil
	case events.EventTypeDrawdownRecorded:
		var event events.DrawdownRecordedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal drawdown recorded event: %w", err)
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
