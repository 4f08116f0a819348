package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeSubscriber captures registered handlers so tests can invoke them
// directly.
type fakeSubscriber struct {
	handlers map[events.EventType]func(context.Context, events.Event) error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[events.EventType]func(context.Context, events.Event) error)}
}

func (s *fakeSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	s.handlers[eventType] = handler
	return nil
}

func queuedNotification(id int64) *entities.Notification {
	return &entities.Notification{
		ID:             id,
		OrganizationID: 7,
		Kind:           entities.NotificationKindRunCompleted,
		Recipient:      "admin@sunrise-care.example",
		Subject:        "Automation \"Weekly SIL billing\" completed",
		Body:           "Run #77 finished.",
		Status:         entities.NotificationStatusQueued,
	}
}

func TestNotificationDispatcher_Deliver_MarksSent(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	mailer := &testhelpers.MockMailer{}
	dispatcher := NewNotificationDispatcher(factory, mailer, time.Minute)

	notification := queuedNotification(11)

	mailer.On("Send", ctx, notification.Recipient, notification.Subject, notification.Body).Return(nil)
	uow.NotificationRepo.On("MarkSent", ctx, int64(11), mock.AnythingOfType("time.Time")).Return(nil)

	err := dispatcher.deliver(ctx, notification)

	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusSent, notification.Status)
	assert.Equal(t, 1, uow.Commits)
	mailer.AssertExpectations(t)
}

func TestNotificationDispatcher_Deliver_RecordsFailure(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	mailer := &testhelpers.MockMailer{}
	dispatcher := NewNotificationDispatcher(factory, mailer, time.Minute)

	notification := queuedNotification(11)

	mailer.On("Send", ctx, notification.Recipient, notification.Subject, notification.Body).
		Return(errors.New("provider rejected recipient"))
	uow.NotificationRepo.On("MarkFailed", ctx, int64(11), "provider rejected recipient").Return(nil)

	err := dispatcher.deliver(ctx, notification)

	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusFailed, notification.Status)
	uow.NotificationRepo.AssertCalled(t, "MarkFailed", ctx, int64(11), "provider rejected recipient")
	uow.NotificationRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationDispatcher_DeliverByID_SkipsAlreadyHandled(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	mailer := &testhelpers.MockMailer{}
	dispatcher := NewNotificationDispatcher(factory, mailer, time.Minute)

	sent := queuedNotification(11)
	sent.Status = entities.NotificationStatusSent

	uow.NotificationRepo.On("GetByID", ctx, int64(11)).Return(sent, nil)

	err := dispatcher.deliverByID(ctx, 7, 11)

	require.NoError(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationDispatcher_EventHandler_DeliversQueuedNotification(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	mailer := &testhelpers.MockMailer{}
	dispatcher := NewNotificationDispatcher(factory, mailer, time.Minute)

	subscriber := newFakeSubscriber()
	require.NoError(t, dispatcher.RegisterSubscriptions(subscriber))

	handler, ok := subscriber.handlers[events.EventTypeNotificationQueued]
	require.True(t, ok)

	notification := queuedNotification(11)
	uow.NotificationRepo.On("GetByID", ctx, int64(11)).Return(notification, nil)
	mailer.On("Send", ctx, notification.Recipient, notification.Subject, notification.Body).Return(nil)
	uow.NotificationRepo.On("MarkSent", ctx, int64(11), mock.AnythingOfType("time.Time")).Return(nil)

	err := handler(ctx, events.NotificationQueuedEvent{
		NotificationID: 11,
		OrganizationID: 7,
		Kind:           notification.Kind,
		Recipient:      notification.Recipient,
	})

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestNotificationDispatcher_ProcessPending_SweepsAllOrganizations(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	mailer := &testhelpers.MockMailer{}
	dispatcher := NewNotificationDispatcher(factory, mailer, time.Minute)

	first := queuedNotification(11)
	second := queuedNotification(12)

	uow.NotificationRepo.On("GetOrganizationsWithPendingNotifications", ctx).Return([]int64{7}, nil)
	uow.NotificationRepo.On("ListPending", ctx, 100).Return([]*entities.Notification{first, second}, nil)
	mailer.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	uow.NotificationRepo.On("MarkSent", ctx, int64(11), mock.AnythingOfType("time.Time")).Return(nil)
	uow.NotificationRepo.On("MarkSent", ctx, int64(12), mock.AnythingOfType("time.Time")).Return(nil)

	err := dispatcher.processPending(ctx)

	require.NoError(t, err)
	uow.NotificationRepo.AssertCalled(t, "MarkSent", ctx, int64(11), mock.AnythingOfType("time.Time"))
	uow.NotificationRepo.AssertCalled(t, "MarkSent", ctx, int64(12), mock.AnythingOfType("time.Time"))
}
