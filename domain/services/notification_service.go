package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/interfaces"
)

// notificationService queues outbound email for the organization's contact
// address. Queueing and delivery are decoupled: this service only writes the
// notification row and announces it, the dispatcher owns actual sending.
type notificationService struct {
	organizationRepo interfaces.OrganizationRepository
	notificationRepo interfaces.NotificationRepository
	eventPublisher   interfaces.EventPublisher
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	organizationRepo interfaces.OrganizationRepository,
	notificationRepo interfaces.NotificationRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.NotificationService {
	return &notificationService{
		organizationRepo: organizationRepo,
		notificationRepo: notificationRepo,
		eventPublisher:   eventPublisher,
	}
}

// NotifyRunCompleted queues a notification describing a finished automation
// run. Organizations without a contact email are silently skipped.
func (s *notificationService) NotifyRunCompleted(ctx context.Context, automation *entities.Automation, run *entities.AutomationRun) error {
	org, err := s.organizationRepo.GetByID(ctx, automation.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil || !org.HasContactEmail() {
		log.WithFields(log.Fields{
			"organizationID": automation.OrganizationID,
			"runID":          run.ID,
		}).Debug("No contact email configured, skipping run notification")
		return nil
	}

	kind := entities.NotificationKindRunCompleted
	subject := fmt.Sprintf("Automation %q completed", automation.Name)
	if run.Status == entities.RunStatusFailed {
		kind = entities.NotificationKindRunFailed
		subject = fmt.Sprintf("Automation %q failed", automation.Name)
	}

	body := fmt.Sprintf("Run #%d of automation %q finished with status %s.\n\n%s\n\nProcessed: %d\nFailed: %d\nTotal amount: $%.2f\n",
		run.ID, automation.Name, run.Status, run.Summary,
		run.Metrics.Processed, run.Metrics.Failed, float64(run.Metrics.TotalAmountCents)/100)
	if run.Error != nil {
		body += fmt.Sprintf("\nError: %s\n", *run.Error)
	}

	return s.queue(ctx, &entities.Notification{
		Kind:      kind,
		Recipient: org.ContactEmail,
		Subject:   subject,
		Body:      body,
		RunID:     &run.ID,
	})
}

// NotifyLeaseExpiring queues a reminder that a head lease is approaching its
// end date
func (s *notificationService) NotifyLeaseExpiring(ctx context.Context, lease *entities.HeadLease, house *entities.House) error {
	org, err := s.organizationRepo.GetByID(ctx, lease.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil || !org.HasContactEmail() {
		log.WithFields(log.Fields{
			"organizationID": lease.OrganizationID,
			"leaseID":        lease.ID,
		}).Debug("No contact email configured, skipping lease notification")
		return nil
	}
	if lease.EndDate == nil {
		return nil
	}

	address := house.FullAddress()
	subject := fmt.Sprintf("Head lease for %s expires %s", address, lease.EndDate.Format("2 Jan 2006"))
	body := fmt.Sprintf("The head lease with %s for %s ends on %s.\n\nRent: $%.2f %s\nAgreement: %s\n\nArrange renewal or make plans for the residents placed there.\n",
		lease.LandlordName, address, lease.EndDate.Format("2 January 2006"),
		float64(lease.RentCents)/100, lease.RentFrequency, lease.AgreementRef)

	return s.queue(ctx, &entities.Notification{
		Kind:      entities.NotificationKindLeaseExpiring,
		Recipient: org.ContactEmail,
		Subject:   subject,
		Body:      body,
	})
}

func (s *notificationService) queue(ctx context.Context, notification *entities.Notification) error {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}

	if err := s.eventPublisher.Publish(events.NotificationQueuedEvent{
		NotificationID: notification.ID,
		OrganizationID: notification.OrganizationID,
		Kind:           notification.Kind,
		Recipient:      notification.Recipient,
	}); err != nil {
		log.WithError(err).Error("Failed to publish notification queued event")
	}

	return nil
}
