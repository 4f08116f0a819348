package infrastructure

import (
	"context"
	"errors"
	"testing"

	"careops/domain/entities"
	"careops/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_BuffersUntilFlush(t *testing.T) {
	// Create mock publisher
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
	}

	// Create transactional publisher
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	drawdownEvent := events.DrawdownRecordedEvent{
		ContractID:     123,
		OrganizationID: 456,
		RunID:          789,
		AmountCents:    150000,
		BalanceCents:   850000,
	}
	notificationEvent := events.NotificationQueuedEvent{
		NotificationID: 12,
		OrganizationID: 456,
		Kind:           entities.NotificationKindRunFailed,
		Recipient:      "ops@example.org",
	}

	// Publish events (they get queued)
	require.NoError(t, transPublisher.Publish(drawdownEvent))
	require.NoError(t, transPublisher.Publish(notificationEvent))

	// Nothing should be delivered before flush
	assert.Len(t, mockPublisher.PublishedEvents, 0)

	// Flush to trigger NATS publishing
	err := transPublisher.Flush(context.Background())
	require.NoError(t, err)

	// Verify both events were delivered in publish order
	require.Len(t, mockPublisher.PublishedEvents, 2)
	assert.Equal(t, drawdownEvent, mockPublisher.PublishedEvents[0])
	assert.Equal(t, notificationEvent, mockPublisher.PublishedEvents[1])
}

func TestNATSTransactionalPublisher_FlushClearsBuffer(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	testEvent := events.DrawdownRecordedEvent{
		ContractID:     123,
		OrganizationID: 456,
		AmountCents:    100000,
	}

	require.NoError(t, transPublisher.Publish(testEvent))
	require.NoError(t, transPublisher.Flush(context.Background()))

	// A second flush must not redeliver
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 1)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	// Create mock publisher
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
	}

	// Create transactional publisher
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	testEvent := events.DrawdownRecordedEvent{
		ContractID:     123,
		OrganizationID: 456,
		AmountCents:    50000,
	}

	require.NoError(t, transPublisher.Publish(testEvent))

	// Discard instead of flush
	transPublisher.Discard()

	// Verify event was NOT published, even after a later flush
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 0)
}

func TestNATSTransactionalPublisher_FlushToleratesDeliveryErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
		PublishError:    errors.New("nats: connection closed"),
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	testEvent := events.AutomationRunCompletedEvent{
		AutomationID:   5,
		OrganizationID: 456,
		RunID:          77,
		Status:         entities.RunStatusSuccess,
		Processed:      2,
		AmountCents:    250000,
	}

	require.NoError(t, transPublisher.Publish(testEvent))

	// Flush reports success even when delivery fails, the transaction
	// already committed and must not be failed retroactively
	err := transPublisher.Flush(context.Background())
	require.NoError(t, err)

	// The buffer is cleared either way
	mockPublisher.PublishError = nil
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 0)
}
