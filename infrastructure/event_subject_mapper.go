package infrastructure

import (
	"fmt"

	"careops/domain/events"
)

// NATS subject constants for domain events
const (
	SubjectAutomationRunCompleted = "careops.automation.run.completed"
	SubjectNotificationQueued     = "careops.notification.queued"
	SubjectDrawdownRecorded       = "careops.billing.drawdown.recorded"
)

// MapEventToSubject returns the NATS subject for a domain event type
func MapEventToSubject(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeAutomationRunCompleted:
		return SubjectAutomationRunCompleted
	case events.EventTypeNotificationQueued:
		return SubjectNotificationQueued
	case events.EventTypeDrawdownRecorded:
		return SubjectDrawdownRecorded
	default:
		return fmt.Sprintf("careops.unknown.%s", eventType)
	}
}

// MapSubjectToEventType returns the domain event type for a NATS subject
func MapSubjectToEventType(subject string) (events.EventType, error) {
	switch subject {
	case SubjectAutomationRunCompleted:
		return events.EventTypeAutomationRunCompleted, nil
	case SubjectNotificationQueued:
		return events.EventTypeNotificationQueued, nil
	case SubjectDrawdownRecorded:
		return events.EventTypeDrawdownRecorded, nil
	default:
		return "", fmt.Errorf("unknown subject: %s", subject)
	}
}

// GetAllSubjects returns every subject careops events are published on
func GetAllSubjects() []string {
	return []string{
		SubjectAutomationRunCompleted,
		SubjectNotificationQueued,
		SubjectDrawdownRecorded,
	}
}
