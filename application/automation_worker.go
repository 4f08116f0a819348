package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careops/domain"
	"careops/domain/interfaces"
	"careops/domain/services"

	log "github.com/sirupsen/logrus"
)

// AutomationWorker triggers due automations on a fixed cadence. It is the
// scheduled counterpart of the run-now endpoint; both paths serialize on the
// automation's run claim, so overlap between them is harmless.
type AutomationWorker struct {
	uowFactory interfaces.UnitOfWorkFactory
	interval   time.Duration
}

// NewAutomationWorker creates a new automation scheduler worker
func NewAutomationWorker(uowFactory interfaces.UnitOfWorkFactory, interval time.Duration) *AutomationWorker {
	return &AutomationWorker{
		uowFactory: uowFactory,
		interval:   interval,
	}
}

// Start begins the scheduler loop
func (w *AutomationWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Infof("Automation worker started, checking every %v", w.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Automation worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Automation worker shutting down (stop requested)...")
				return
			case <-time.After(w.interval):
				if err := w.processDueAutomations(ctx); err != nil {
					log.Errorf("Error processing due automations: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// processDueAutomations triggers every due automation across all organizations
func (w *AutomationWorker) processDueAutomations(ctx context.Context) error {
	now := time.Now().UTC()

	uow := w.uowFactory.CreateForOrganization(0)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	organizationIDs, err := uow.AutomationRepository().GetOrganizationsWithDueAutomations(ctx, now)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get organizations with due automations: %w", err)
	}
	uow.Rollback()

	if len(organizationIDs) == 0 {
		return nil
	}

	var successCount, failureCount, skippedCount int
	for _, organizationID := range organizationIDs {
		triggered, skipped, failed := w.processOrganization(ctx, organizationID, now)
		successCount += triggered
		skippedCount += skipped
		failureCount += failed
	}

	log.WithFields(log.Fields{
		"organizations": len(organizationIDs),
		"triggered":     successCount,
		"skipped":       skippedCount,
		"failed":        failureCount,
	}).Info("Completed due automation processing")

	return nil
}

// processOrganization triggers each due automation of one organization. The
// due list is read in its own short transaction; every run then manages its
// own transactions through the automation service.
func (w *AutomationWorker) processOrganization(ctx context.Context, organizationID int64, now time.Time) (triggered, skipped, failed int) {
	uow := w.uowFactory.CreateForOrganization(organizationID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction for organization %d: %v", organizationID, err)
		return 0, 0, 1
	}

	due, err := uow.AutomationRepository().ListDue(ctx, now)
	if err != nil {
		uow.Rollback()
		log.Errorf("Failed to list due automations for organization %d: %v", organizationID, err)
		return 0, 0, 1
	}
	uow.Rollback()

	svc := services.NewAutomationService(
		w.uowFactory,
		organizationID,
		services.NewBillingRunner(w.uowFactory),
	)

	for _, automation := range due {
		run, err := svc.TriggerRun(ctx, automation.ID)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyRunning) {
				log.WithFields(log.Fields{
					"automationID":   automation.ID,
					"organizationID": organizationID,
				}).Debug("Automation already running, skipping scheduled trigger")
				skipped++
				continue
			}
			log.Errorf("Failed to trigger automation %d for organization %d: %v", automation.ID, organizationID, err)
			failed++
			continue
		}

		log.WithFields(log.Fields{
			"automationID":   automation.ID,
			"organizationID": organizationID,
			"runID":          run.ID,
			"status":         run.Status,
		}).Info("Scheduled automation run triggered")
		triggered++
	}

	return triggered, skipped, failed
}
