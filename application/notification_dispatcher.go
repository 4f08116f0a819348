package application

import (
	"context"
	"fmt"
	"time"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/interfaces"
	"careops/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// NotificationDispatcher delivers queued notifications through the mailer.
// Delivery is triggered two ways: the queued event for prompt delivery, and a
// periodic sweep that picks up anything the event path missed. Each
// notification gets one delivery attempt; the outcome is recorded on the row.
type NotificationDispatcher struct {
	uowFactory interfaces.UnitOfWorkFactory
	mailer     interfaces.Mailer
	interval   time.Duration
}

// NewNotificationDispatcher creates a new notification dispatcher
func NewNotificationDispatcher(uowFactory interfaces.UnitOfWorkFactory, mailer interfaces.Mailer, interval time.Duration) *NotificationDispatcher {
	return &NotificationDispatcher{
		uowFactory: uowFactory,
		mailer:     mailer,
		interval:   interval,
	}
}

// RegisterSubscriptions wires the event-driven delivery path. Handler errors
// before the delivery attempt propagate so the message is redelivered; the
// delivery outcome itself is terminal and acknowledges the message.
func (d *NotificationDispatcher) RegisterSubscriptions(subscriber domain.EventSubscriber) error {
	return subscriber.Subscribe(events.EventTypeNotificationQueued,
		func(ctx context.Context, event events.Event) error {
			queued, ok := event.(events.NotificationQueuedEvent)
			if !ok {
				return fmt.Errorf("unexpected event type %T", event)
			}
			return d.deliverByID(ctx, queued.OrganizationID, queued.NotificationID)
		})
}

// Start begins the pending-notification sweep loop
func (d *NotificationDispatcher) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Infof("Notification dispatcher started, sweeping every %v", d.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Notification dispatcher shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Notification dispatcher shutting down (stop requested)...")
				return
			case <-time.After(d.interval):
				if err := d.processPending(ctx); err != nil {
					log.Errorf("Error processing pending notifications: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// processPending sweeps queued notifications across all organizations
func (d *NotificationDispatcher) processPending(ctx context.Context) error {
	uow := d.uowFactory.CreateForOrganization(0)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	organizationIDs, err := uow.NotificationRepository().GetOrganizationsWithPendingNotifications(ctx)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get organizations with pending notifications: %w", err)
	}
	uow.Rollback()

	if len(organizationIDs) == 0 {
		return nil
	}

	var sentCount, failedCount int
	for _, organizationID := range organizationIDs {
		sent, failed := d.processOrganizationPending(ctx, organizationID)
		sentCount += sent
		failedCount += failed
	}

	log.WithFields(log.Fields{
		"organizations": len(organizationIDs),
		"sent":          sentCount,
		"failed":        failedCount,
	}).Info("Completed pending notification sweep")

	return nil
}

// processOrganizationPending delivers the queued notifications of one
// organization. The pending list is read in its own short transaction; each
// delivery then records its outcome in a transaction of its own.
func (d *NotificationDispatcher) processOrganizationPending(ctx context.Context, organizationID int64) (sent, failed int) {
	uow := d.uowFactory.CreateForOrganization(organizationID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction for organization %d: %v", organizationID, err)
		return 0, 0
	}

	pending, err := uow.NotificationRepository().ListPending(ctx, 100)
	if err != nil {
		uow.Rollback()
		log.Errorf("Failed to list pending notifications for organization %d: %v", organizationID, err)
		return 0, 0
	}
	uow.Rollback()

	for _, notification := range pending {
		if err := d.deliver(ctx, notification); err != nil {
			log.Errorf("Failed to record delivery of notification %d: %v", notification.ID, err)
			continue
		}
		if notification.Status == entities.NotificationStatusSent {
			sent++
		} else {
			failed++
		}
	}

	return sent, failed
}

// deliverByID loads a notification and delivers it if still pending. Used by
// the event path; a notification the sweep already handled is a nop.
func (d *NotificationDispatcher) deliverByID(ctx context.Context, organizationID, notificationID int64) error {
	uow := d.uowFactory.CreateForOrganization(organizationID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	notification, err := uow.NotificationRepository().GetByID(ctx, notificationID)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get notification %d: %w", notificationID, err)
	}
	uow.Rollback()

	if notification == nil || !notification.IsPending() {
		log.WithFields(log.Fields{
			"notificationID": notificationID,
			"organizationID": organizationID,
		}).Debug("Notification already handled, skipping event delivery")
		return nil
	}

	return d.deliver(ctx, notification)
}

// deliver sends one notification and records the outcome. The send happens
// outside any transaction; only the result write is transactional. Delivery
// failures are terminal on the row and do not propagate.
func (d *NotificationDispatcher) deliver(ctx context.Context, notification *entities.Notification) error {
	sendErr := d.mailer.Send(ctx, notification.Recipient, notification.Subject, notification.Body)

	uow := d.uowFactory.CreateForOrganization(notification.OrganizationID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if sendErr != nil {
		log.WithFields(log.Fields{
			"notificationID": notification.ID,
			"recipient":      notification.Recipient,
			"error":          sendErr,
		}).Error("Notification delivery failed")

		if err := uow.NotificationRepository().MarkFailed(ctx, notification.ID, sendErr.Error()); err != nil {
			return fmt.Errorf("failed to mark notification failed: %w", err)
		}
		notification.Status = entities.NotificationStatusFailed
	} else {
		if err := uow.NotificationRepository().MarkSent(ctx, notification.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to mark notification sent: %w", err)
		}
		notification.Status = entities.NotificationStatusSent

		log.WithFields(log.Fields{
			"notificationID": notification.ID,
			"kind":           notification.Kind,
			"recipient":      notification.Recipient,
		}).Info("Notification delivered")
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit delivery outcome: %w", err)
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		status := observability.DeliveryStatusSent
		if sendErr != nil {
			status = observability.DeliveryStatusFailed
		}
		metrics.RecordNotificationDelivery(status)
	}

	return nil
}
