package events

import "careops/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAutomationRunCompleted EventType = "automation_run_completed"
	EventTypeNotificationQueued     EventType = "notification_queued"
	EventTypeDrawdownRecorded       EventType = "drawdown_recorded"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AutomationRunCompletedEvent fires once a run has been finalized to a
// terminal status
type AutomationRunCompletedEvent struct {
	AutomationID   int64
	OrganizationID int64
	RunID          int64
	Status         entities.RunStatus
	Processed      int
	Failed         int
	AmountCents    int64
}

func (e AutomationRunCompletedEvent) Type() EventType {
	return EventTypeAutomationRunCompleted
}

// NotificationQueuedEvent fires when an outbound notification has been
// stored and is ready for delivery
type NotificationQueuedEvent struct {
	NotificationID int64
	OrganizationID int64
	Kind           entities.NotificationKind
	Recipient      string
}

func (e NotificationQueuedEvent) Type() EventType {
	return EventTypeNotificationQueued
}

// DrawdownRecordedEvent fires for every charge a billing run writes against
// a funding contract
type DrawdownRecordedEvent struct {
	ContractID     int64
	OrganizationID int64
	RunID          int64
	AmountCents    int64
	BalanceCents   int64
}

func (e DrawdownRecordedEvent) Type() EventType {
	return EventTypeDrawdownRecorded
}
