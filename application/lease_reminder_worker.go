package application

import (
	"context"
	"fmt"
	"time"

	"careops/domain/interfaces"
	"careops/domain/services"

	log "github.com/sirupsen/logrus"
)

// LeaseReminderWorker queues expiry warnings for head leases approaching
// their end date. Each tick notifies only the leases whose end date entered
// the reminder window since the previous tick, so a lease is flagged once
// rather than on every sweep.
type LeaseReminderWorker struct {
	uowFactory interfaces.UnitOfWorkFactory
	window     time.Duration
	interval   time.Duration
}

// NewLeaseReminderWorker creates a new lease reminder worker
func NewLeaseReminderWorker(uowFactory interfaces.UnitOfWorkFactory, window, interval time.Duration) *LeaseReminderWorker {
	return &LeaseReminderWorker{
		uowFactory: uowFactory,
		window:     window,
		interval:   interval,
	}
}

// Start begins the reminder loop
func (w *LeaseReminderWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Infof("Lease reminder worker started, flagging leases expiring within %v every %v", w.window, w.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Lease reminder worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Lease reminder worker shutting down (stop requested)...")
				return
			case <-time.After(w.interval):
				if err := w.processExpiringLeases(ctx); err != nil {
					log.Errorf("Error processing expiring leases: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// crossingRange returns the slice of the reminder window that opened since
// the previous tick. Leases ending inside it are the ones to flag now.
func (w *LeaseReminderWorker) crossingRange(now time.Time) (time.Time, time.Duration) {
	if w.interval >= w.window {
		return now, w.window
	}
	return now.Add(w.window - w.interval), w.interval
}

// processExpiringLeases queues reminders across all organizations
func (w *LeaseReminderWorker) processExpiringLeases(ctx context.Context) error {
	from, span := w.crossingRange(time.Now().UTC())

	uow := w.uowFactory.CreateForOrganization(0)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	organizationIDs, err := uow.HeadLeaseRepository().GetOrganizationsWithExpiringLeases(ctx, from, span)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get organizations with expiring leases: %w", err)
	}
	uow.Rollback()

	if len(organizationIDs) == 0 {
		return nil
	}

	var queuedCount, failureCount int
	for _, organizationID := range organizationIDs {
		queued, failed := w.processOrganization(ctx, organizationID, from, span)
		queuedCount += queued
		failureCount += failed
	}

	log.WithFields(log.Fields{
		"organizations": len(organizationIDs),
		"queued":        queuedCount,
		"failed":        failureCount,
	}).Info("Completed lease expiry sweep")

	return nil
}

// processOrganization queues reminders for one organization's crossing leases
// in a single transaction.
func (w *LeaseReminderWorker) processOrganization(ctx context.Context, organizationID int64, from time.Time, span time.Duration) (queued, failed int) {
	uow := w.uowFactory.CreateForOrganization(organizationID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction for organization %d: %v", organizationID, err)
		return 0, 1
	}
	defer uow.Rollback()

	leases, err := uow.HeadLeaseRepository().ListExpiring(ctx, from, span)
	if err != nil {
		log.Errorf("Failed to list expiring leases for organization %d: %v", organizationID, err)
		return 0, 1
	}
	if len(leases) == 0 {
		return 0, 0
	}

	notifier := services.NewNotificationService(
		uow.OrganizationRepository(),
		uow.NotificationRepository(),
		uow.EventBus(),
	)

	for _, lease := range leases {
		house, err := uow.HouseRepository().GetByID(ctx, lease.HouseID)
		if err != nil {
			log.Errorf("Failed to get house %d for lease %d: %v", lease.HouseID, lease.ID, err)
			failed++
			continue
		}
		if house == nil {
			log.Warnf("Lease %d references missing house %d, skipping reminder", lease.ID, lease.HouseID)
			continue
		}

		if err := notifier.NotifyLeaseExpiring(ctx, lease, house); err != nil {
			log.Errorf("Failed to queue expiry reminder for lease %d: %v", lease.ID, err)
			failed++
			continue
		}

		log.WithFields(log.Fields{
			"leaseID":        lease.ID,
			"organizationID": organizationID,
			"houseID":        lease.HouseID,
			"endDate":        lease.EndDate,
		}).Info("Lease expiry reminder queued")
		queued++
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Failed to commit lease reminders for organization %d: %v", organizationID, err)
		return 0, failed + queued
	}

	return queued, failed
}
