package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"careops/domain/entities"
	"careops/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAutomation(config entities.AutomationConfig) *entities.Automation {
	return &entities.Automation{
		ID:             5,
		OrganizationID: 7,
		Name:           "Weekly SIL billing",
		Type:           entities.AutomationTypeBilling,
		Enabled:        true,
		Schedule: entities.Schedule{
			Kind:      entities.ScheduleKindFrequency,
			Frequency: entities.FrequencyWeekly,
			At:        "09:00",
		},
		Config: config,
	}
}

func billableContract(id, balanceCents int64) *entities.FundingContract {
	return &entities.FundingContract{
		ID:                id,
		OrganizationID:    7,
		ResidentID:        id,
		Status:            entities.ContractStatusActive,
		StartDate:         time.Now().UTC().AddDate(0, -1, 0),
		BalanceCents:      balanceCents,
		DrawdownRateCents: 150000,
		Frequency:         entities.FrequencyWeekly,
		SupportItemCode:   "01_801_0115_1_1",
	}
}

func TestBillingRunner_Run_BillsEligibleContracts(t *testing.T) {
	ctx := context.Background()
	runID := int64(77)

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	automation := testAutomation(entities.AutomationConfig{})
	full := billableContract(100, 400000)
	nearlyEmpty := billableContract(101, 100000)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{full, nearlyEmpty}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(100)).Return(full, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(101)).Return(nearlyEmpty, nil)

	// The second contract cannot cover the full rate, so the run drains it
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 100, BalanceCents: 250000}, nil)
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(101), int64(100000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 101, BalanceCents: 0}, nil)

	uow.DrawdownRepo.On("Create", ctx, mock.MatchedBy(func(d *entities.Drawdown) bool {
		return d.ContractID == 100 && d.RunID != nil && *d.RunID == runID &&
			d.AmountCents == 150000 && d.SupportItemCode == "01_801_0115_1_1"
	})).Return(nil)
	uow.DrawdownRepo.On("Create", ctx, mock.MatchedBy(func(d *entities.Drawdown) bool {
		return d.ContractID == 101 && d.RunID != nil && *d.RunID == runID && d.AmountCents == 100000
	})).Return(nil)

	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil).Times(2)

	result, err := runner.Run(ctx, automation, runID)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "billed 2 of 2 contracts for $2500.00", result.Summary)
	assert.Equal(t, 2, result.Metrics.Processed)
	assert.Equal(t, 0, result.Metrics.Failed)
	assert.Equal(t, int64(250000), result.Metrics.TotalAmountCents)
	assert.Empty(t, result.Metrics.Failures)

	// One commit per billed contract, none for the read-only eligibility pass
	assert.Equal(t, 2, uow.Commits)

	uow.ContractRepo.AssertExpectations(t)
	uow.DrawdownRepo.AssertExpectations(t)
	uow.Publisher.AssertExpectations(t)
}

func TestBillingRunner_Run_NoEligibleContracts(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{}, nil)

	result, err := runner.Run(ctx, testAutomation(entities.AutomationConfig{}), 77)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "no eligible contracts", result.Summary)
	assert.Equal(t, 0, result.Metrics.Processed)
	assert.Equal(t, 0, uow.Commits)
}

func TestBillingRunner_Run_RetriesTransientFailure(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	automation := testAutomation(entities.AutomationConfig{MaxRetries: 2, RetryDelayMs: 1})
	contract := billableContract(100, 400000)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{contract}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(100)).Return(contract, nil)
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("deadlock detected")).Once()
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 100, BalanceCents: 250000}, nil).Once()
	uow.DrawdownRepo.On("Create", ctx, mock.AnythingOfType("*entities.Drawdown")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil)

	result, err := runner.Run(ctx, automation, 77)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Metrics.Processed)
	assert.Equal(t, 0, result.Metrics.Failed)
	uow.ContractRepo.AssertNumberOfCalls(t, "ApplyDrawdown", 2)
}

func TestBillingRunner_Run_ContinueOnErrorRecordsFailure(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	automation := testAutomation(entities.AutomationConfig{ContinueOnError: true, MaxRetries: 1, RetryDelayMs: 1})
	broke := billableContract(100, 400000)
	healthy := billableContract(101, 400000)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{broke, healthy}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(100)).Return(broke, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(101)).Return(healthy, nil)
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("insufficient balance on contract 100 for drawdown of 150000 cents"))
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(101), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 101, BalanceCents: 250000}, nil)
	uow.DrawdownRepo.On("Create", ctx, mock.AnythingOfType("*entities.Drawdown")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil)

	result, err := runner.Run(ctx, automation, 77)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "billed 1 of 2 contracts for $1500.00", result.Summary)
	assert.Equal(t, 1, result.Metrics.Processed)
	assert.Equal(t, 1, result.Metrics.Failed)
	require.Len(t, result.Metrics.Failures, 1)
	assert.Equal(t, int64(100), result.Metrics.Failures[0].ContractID)
	assert.Equal(t, 2, result.Metrics.Failures[0].Attempts)
	assert.Contains(t, result.Metrics.Failures[0].Error, "insufficient balance")
}

func TestBillingRunner_Run_StopOnErrorStillAttemptsEveryContract(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	automation := testAutomation(entities.AutomationConfig{ContinueOnError: false})
	broke := billableContract(100, 400000)
	healthy := billableContract(101, 400000)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{broke, healthy}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(100)).Return(broke, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(101)).Return(healthy, nil)
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("insufficient balance on contract 100 for drawdown of 150000 cents"))
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(101), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 101, BalanceCents: 250000}, nil)
	uow.DrawdownRepo.On("Create", ctx, mock.AnythingOfType("*entities.Drawdown")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil)

	result, err := runner.Run(ctx, automation, 77)

	require.NoError(t, err)

	// The failure fails the run but never short-circuits the batch: the
	// healthy contract is still billed.
	assert.False(t, result.Success)
	assert.Equal(t, "1 of 2 contracts failed", result.Err)
	assert.Equal(t, 1, result.Metrics.Processed)
	assert.Equal(t, 1, result.Metrics.Failed)
	assert.Equal(t, int64(150000), result.Metrics.TotalAmountCents)
	uow.ContractRepo.AssertCalled(t, "ApplyDrawdown", ctx, int64(101), int64(150000), mock.AnythingOfType("time.Time"))
}

func TestBillingRunner_Run_AllContractsFailing(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	// Contract vanished between eligibility and billing. Even with
	// continue-on-error the run fails when nothing was billed.
	automation := testAutomation(entities.AutomationConfig{ContinueOnError: true})
	contract := billableContract(100, 400000)

	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{contract}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(100)).Return(nil, nil)

	result, err := runner.Run(ctx, automation, 77)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "1 of 1 contracts failed", result.Err)
	assert.Equal(t, 0, result.Metrics.Processed)
	require.Len(t, result.Metrics.Failures, 1)
	assert.Contains(t, result.Metrics.Failures[0].Error, "contract 100 not found")
	assert.Equal(t, 0, uow.Commits)
}

func TestBillingRunner_Run_TargetedContracts(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	automation := testAutomation(entities.AutomationConfig{ContractIDs: []int64{101}})
	contract := billableContract(101, 400000)

	uow.ContractRepo.On("ListByIDs", ctx, []int64{101}).Return([]*entities.FundingContract{contract}, nil)
	uow.ContractRepo.On("GetByID", ctx, int64(101)).Return(contract, nil)
	uow.ContractRepo.On("ApplyDrawdown", ctx, int64(101), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 101, BalanceCents: 250000}, nil)
	uow.DrawdownRepo.On("Create", ctx, mock.AnythingOfType("*entities.Drawdown")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil)

	result, err := runner.Run(ctx, automation, 77)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Metrics.Processed)
	uow.ContractRepo.AssertNotCalled(t, "List", ctx)
}

func TestBillingRunner_Run_EligibilityError(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := NewBillingRunner(factory)

	uow.ContractRepo.On("List", ctx).Return(nil, errors.New("connection refused"))

	result, err := runner.Run(ctx, testAutomation(entities.AutomationConfig{}), 77)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to evaluate eligibility")
}
