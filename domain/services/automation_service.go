package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/interfaces"
)

// automationService owns the run lifecycle: preflight checks, claiming the
// single run slot, dispatching to the registered runner, and recording the
// outcome. Start and finish happen in separate transactions so the claim is
// visible to other callers while the runner works.
type automationService struct {
	uowFactory     interfaces.UnitOfWorkFactory
	organizationID int64
	runners        map[entities.AutomationType]interfaces.AutomationRunner
}

// NewAutomationService creates an automation service for one organization
func NewAutomationService(
	uowFactory interfaces.UnitOfWorkFactory,
	organizationID int64,
	runners ...interfaces.AutomationRunner,
) interfaces.AutomationService {
	byType := make(map[entities.AutomationType]interfaces.AutomationRunner, len(runners))
	for _, runner := range runners {
		byType[runner.Type()] = runner
	}
	return &automationService{
		uowFactory:     uowFactory,
		organizationID: organizationID,
		runners:        byType,
	}
}

// Preflight reports whether a run would start right now and, if not, the
// first reason blocking it. It is advisory only; TriggerRun re-checks under
// the claim.
func (s *automationService) Preflight(ctx context.Context, automationID int64) (*entities.PreflightResult, error) {
	uow := s.uowFactory.CreateForOrganization(s.organizationID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	automation, err := uow.AutomationRepository().GetByID(ctx, automationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}
	if automation == nil {
		return nil, domain.ErrNotFound
	}

	if !automation.Enabled {
		return &entities.PreflightResult{Reason: "automation disabled"}, nil
	}
	if automation.IsRunning() {
		return &entities.PreflightResult{Reason: "run already in progress"}, nil
	}
	if _, ok := s.runners[automation.Type]; !ok {
		return &entities.PreflightResult{Reason: "unsupported automation type"}, nil
	}

	eligibility := NewEligibilityService(
		uow.FundingContractRepository(),
		uow.ResidentRepository(),
		uow.HouseRepository(),
	)
	eligible, err := eligibility.EligibleContracts(ctx, automation.Config.ContractIDs, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate eligibility: %w", err)
	}
	if len(eligible) == 0 {
		return &entities.PreflightResult{Reason: "no eligible contracts"}, nil
	}

	return &entities.PreflightResult{CanRun: true}, nil
}

// TriggerRun claims the automation, executes its runner, and records the
// outcome. The returned run is terminal; no run is ever left in the running
// state, even when the runner panics or the caller's context is cancelled.
func (s *automationService) TriggerRun(ctx context.Context, automationID int64) (*entities.AutomationRun, error) {
	automation, run, err := s.startRun(ctx, automationID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"automationID":   automation.ID,
		"organizationID": automation.OrganizationID,
		"runID":          run.ID,
		"type":           automation.Type,
	}).Info("Automation run started")

	result := s.executeRunner(ctx, automation, run.ID)

	if err := s.finalizeRun(ctx, automation, run, result); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"automationID": automation.ID,
		"runID":        run.ID,
		"status":       run.Status,
		"processed":    run.Metrics.Processed,
		"failed":       run.Metrics.Failed,
	}).Info("Automation run finished")

	return run, nil
}

// startRun creates the run record and claims the automation's run slot in
// one transaction. The claim is the authoritative concurrency check; the
// IsRunning read before it only gives callers a cleaner error in the common
// case.
func (s *automationService) startRun(ctx context.Context, automationID int64) (*entities.Automation, *entities.AutomationRun, error) {
	uow := s.uowFactory.CreateForOrganization(s.organizationID)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	automation, err := uow.AutomationRepository().GetByID(ctx, automationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get automation: %w", err)
	}
	if automation == nil {
		return nil, nil, domain.ErrNotFound
	}
	// Preflight is advisory; the automation may have been disabled since.
	if !automation.Enabled {
		return nil, nil, fmt.Errorf("%w: automation disabled", domain.ErrNotRunnable)
	}
	if _, ok := s.runners[automation.Type]; !ok {
		return nil, nil, fmt.Errorf("%w: no runner registered for type %q", domain.ErrNotRunnable, automation.Type)
	}
	if automation.IsRunning() {
		return nil, nil, domain.ErrAlreadyRunning
	}

	run := &entities.AutomationRun{AutomationID: automation.ID}
	if err := uow.AutomationRunRepository().Create(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to create run record: %w", err)
	}

	if err := uow.AutomationRepository().Claim(ctx, automation.ID, run.ID); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit run claim: %w", err)
	}

	return automation, run, nil
}

// executeRunner dispatches to the registered runner and converts panics and
// errors into a failed result so the run can still be finalized
func (s *automationService) executeRunner(ctx context.Context, automation *entities.Automation, runID int64) (result *entities.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"automationID": automation.ID,
				"runID":        runID,
			}).Errorf("Runner panicked: %v", r)
			result = &entities.RunResult{
				Summary: "runner panicked",
				Err:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	res, err := s.runners[automation.Type].Run(ctx, automation, runID)
	if err != nil {
		return &entities.RunResult{
			Summary: "runner failed",
			Err:     err.Error(),
		}
	}
	return res
}

// finalizeRun records the outcome, releases the claim, and advances the
// schedule. It runs on a context detached from the caller's cancellation:
// once a run has started its outcome must be recorded.
func (s *automationService) finalizeRun(ctx context.Context, automation *entities.Automation, run *entities.AutomationRun, result *entities.RunResult) error {
	finalizeCtx := context.WithoutCancel(ctx)

	uow := s.uowFactory.CreateForOrganization(s.organizationID)
	if err := uow.Begin(finalizeCtx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	finishedAt := time.Now().UTC()
	run.Status = result.Status()
	run.FinishedAt = &finishedAt
	run.Summary = result.Summary
	run.Metrics = result.Metrics
	if result.Err != "" {
		run.Error = &result.Err
	}

	if err := uow.AutomationRunRepository().Finalize(finalizeCtx, run); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}

	// The schedule advances even after a failed run so a broken automation
	// cannot retrigger itself every scheduler tick.
	var nextRunAt *time.Time
	if next, err := automation.Schedule.NextAfter(finishedAt); err != nil {
		log.WithFields(log.Fields{
			"automationID": automation.ID,
		}).WithError(err).Warn("Failed to compute next run time, automation will not be rescheduled")
	} else {
		nextRunAt = &next
	}

	if err := uow.AutomationRepository().Release(finalizeCtx, automation.ID, run.ID, run.Status, finishedAt, nextRunAt); err != nil {
		return fmt.Errorf("failed to release automation: %w", err)
	}

	if err := uow.EventBus().Publish(events.AutomationRunCompletedEvent{
		AutomationID:   automation.ID,
		OrganizationID: automation.OrganizationID,
		RunID:          run.ID,
		Status:         run.Status,
		Processed:      run.Metrics.Processed,
		Failed:         run.Metrics.Failed,
		AmountCents:    run.Metrics.TotalAmountCents,
	}); err != nil {
		log.WithError(err).Error("Failed to publish run completed event")
	}

	if run.Status == entities.RunStatusFailed {
		notifications := NewNotificationService(
			uow.OrganizationRepository(),
			uow.NotificationRepository(),
			uow.EventBus(),
		)
		if err := notifications.NotifyRunCompleted(finalizeCtx, automation, run); err != nil {
			log.WithFields(log.Fields{
				"automationID": automation.ID,
				"runID":        run.ID,
			}).WithError(err).Error("Failed to queue run failure notification")
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit run finalization: %w", err)
	}

	return nil
}
