package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/interfaces"
)

// billingRunner executes billing automations. Each eligible contract is
// drawn down in its own transaction so one bad contract cannot poison the
// rest of the batch.
type billingRunner struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewBillingRunner creates the runner for billing automations
func NewBillingRunner(uowFactory interfaces.UnitOfWorkFactory) interfaces.AutomationRunner {
	return &billingRunner{
		uowFactory: uowFactory,
	}
}

func (r *billingRunner) Type() entities.AutomationType {
	return entities.AutomationTypeBilling
}

// Run bills every eligible contract targeted by the automation. Individual
// contract failures are retried, recorded, and never abort the batch; the
// continue-on-error policy only decides the terminal status of the run.
func (r *billingRunner) Run(ctx context.Context, automation *entities.Automation, runID int64) (*entities.RunResult, error) {
	eligible, err := r.eligibleContracts(ctx, automation)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate eligibility: %w", err)
	}

	if len(eligible) == 0 {
		return &entities.RunResult{
			Success: true,
			Summary: "no eligible contracts",
		}, nil
	}

	metrics := entities.RunMetrics{}
	for _, contract := range eligible {
		amountCents, attempts, billErr := r.billContract(ctx, automation, contract.ID, runID)
		if billErr != nil {
			metrics.Failed++
			metrics.Failures = append(metrics.Failures, entities.RunItemFailure{
				ContractID: contract.ID,
				Attempts:   attempts,
				Error:      billErr.Error(),
			})
			continue
		}
		metrics.Processed++
		metrics.TotalAmountCents += amountCents
	}

	attempted := len(eligible)
	runFailed := metrics.Failed > 0 && (!automation.Config.ContinueOnError || metrics.Failed == attempted)

	result := &entities.RunResult{
		Success: !runFailed,
		Summary: fmt.Sprintf("billed %d of %d contracts for $%.2f", metrics.Processed, attempted, float64(metrics.TotalAmountCents)/100),
		Metrics: metrics,
	}
	if runFailed {
		result.Err = fmt.Sprintf("%d of %d contracts failed", metrics.Failed, attempted)
	}
	return result, nil
}

// eligibleContracts evaluates the automation's target set in a read-only
// transaction
func (r *billingRunner) eligibleContracts(ctx context.Context, automation *entities.Automation) ([]*entities.FundingContract, error) {
	uow := r.uowFactory.CreateForOrganization(automation.OrganizationID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	eligibility := NewEligibilityService(
		uow.FundingContractRepository(),
		uow.ResidentRepository(),
		uow.HouseRepository(),
	)
	return eligibility.EligibleContracts(ctx, automation.Config.ContractIDs, time.Now().UTC())
}

// billContract drives the retry loop for a single contract. Returns the
// amount drawn down, the number of attempts made, and the last error when
// every attempt failed.
func (r *billingRunner) billContract(ctx context.Context, automation *entities.Automation, contractID, runID int64) (int64, int, error) {
	maxAttempts := automation.Config.Attempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, attempt - 1, lastErr
			case <-time.After(automation.Config.RetryDelay()):
			}
		}

		amountCents, err := r.billContractOnce(ctx, automation, contractID, runID)
		if err == nil {
			return amountCents, attempt, nil
		}
		lastErr = err

		log.WithFields(log.Fields{
			"automationID": automation.ID,
			"runID":        runID,
			"contractID":   contractID,
			"attempt":      attempt,
			"maxAttempts":  maxAttempts,
		}).WithError(err).Warn("Billing attempt failed")
	}

	return 0, maxAttempts, lastErr
}

// billContractOnce performs one drawdown attempt in its own transaction.
// The contract is re-read inside the transaction so concurrent runs and
// manual edits are observed before money moves.
func (r *billingRunner) billContractOnce(ctx context.Context, automation *entities.Automation, contractID, runID int64) (int64, error) {
	uow := r.uowFactory.CreateForOrganization(automation.OrganizationID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("failed to get contract: %w", err)
	}
	if contract == nil {
		return 0, fmt.Errorf("contract %d not found", contractID)
	}

	amountCents := contract.RunAmountCents()
	if amountCents <= 0 {
		return 0, fmt.Errorf("contract %d has no billable amount", contractID)
	}

	updated, err := uow.FundingContractRepository().ApplyDrawdown(ctx, contract.ID, amountCents, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	drawdown := &entities.Drawdown{
		ContractID:      contract.ID,
		RunID:           &runID,
		AmountCents:     amountCents,
		SupportItemCode: contract.SupportItemCode,
		Note:            fmt.Sprintf("automated billing by %q", automation.Name),
	}
	if err := uow.DrawdownRepository().Create(ctx, drawdown); err != nil {
		return 0, fmt.Errorf("failed to record drawdown: %w", err)
	}

	if err := uow.EventBus().Publish(events.DrawdownRecordedEvent{
		ContractID:     contract.ID,
		OrganizationID: automation.OrganizationID,
		RunID:          runID,
		AmountCents:    amountCents,
		BalanceCents:   updated.BalanceCents,
	}); err != nil {
		log.WithError(err).Error("Failed to publish drawdown recorded event")
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit drawdown: %w", err)
	}

	return amountCents, nil
}
