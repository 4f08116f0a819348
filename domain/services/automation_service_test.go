package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/events"
	"careops/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutomationService_Preflight_Runnable(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})
	contract := billableContract(100, 400000)

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.ContractRepo.On("List", ctx).Return([]*entities.FundingContract{contract}, nil)

	result, err := service.Preflight(ctx, 5)

	require.NoError(t, err)
	assert.True(t, result.CanRun)
	assert.Empty(t, result.Reason)

	// Preflight only reads
	assert.Equal(t, 0, uow.Commits)
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestAutomationService_Preflight_BlockedReasons(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		automation     func() *entities.Automation
		registerRunner bool
		contracts      []*entities.FundingContract
		expectedReason string
	}{
		{
			name: "disabled automation",
			automation: func() *entities.Automation {
				a := testAutomation(entities.AutomationConfig{})
				a.Enabled = false
				return a
			},
			registerRunner: true,
			expectedReason: "automation disabled",
		},
		{
			name: "run already in progress",
			automation: func() *entities.Automation {
				a := testAutomation(entities.AutomationConfig{})
				runningID := int64(55)
				a.RunningRunID = &runningID
				return a
			},
			registerRunner: true,
			expectedReason: "run already in progress",
		},
		{
			name: "no runner registered for the type",
			automation: func() *entities.Automation {
				return testAutomation(entities.AutomationConfig{})
			},
			registerRunner: false,
			expectedReason: "unsupported automation type",
		},
		{
			name: "no eligible contracts",
			automation: func() *entities.Automation {
				return testAutomation(entities.AutomationConfig{})
			},
			registerRunner: true,
			contracts:      []*entities.FundingContract{},
			expectedReason: "no eligible contracts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := testhelpers.NewFakeUnitOfWorkFactory()
			uow := factory.UnitOfWork

			service := NewAutomationService(factory, 7)
			if tt.registerRunner {
				service = NewAutomationService(factory, 7, &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling})
			}

			uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(tt.automation(), nil)
			if tt.contracts != nil {
				uow.ContractRepo.On("List", ctx).Return(tt.contracts, nil)
			}

			result, err := service.Preflight(ctx, 5)

			require.NoError(t, err)
			assert.False(t, result.CanRun)
			assert.Equal(t, tt.expectedReason, result.Reason)

			// Checks short-circuit: eligibility is only consulted once the
			// cheaper conditions pass
			if tt.contracts == nil {
				uow.ContractRepo.AssertNotCalled(t, "List", ctx)
			}
		})
	}
}

func TestAutomationService_Preflight_NotFound(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	factory.UnitOfWork.AutomationRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	service := NewAutomationService(factory, 7, &testhelpers.MockAutomationRunner{})

	result, err := service.Preflight(ctx, 99)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAutomationService_TriggerRun_Success(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.RunRepo.On("Create", ctx, mock.AnythingOfType("*entities.AutomationRun")).Return(nil).Run(func(args mock.Arguments) {
		run := args.Get(1).(*entities.AutomationRun)
		run.ID = 77
		run.Status = entities.RunStatusRunning
		run.StartedAt = time.Now().UTC()
	})
	uow.AutomationRepo.On("Claim", ctx, int64(5), int64(77)).Return(nil)

	runner.On("Run", ctx, automation, int64(77)).Return(&entities.RunResult{
		Success: true,
		Summary: "billed 2 of 2 contracts for $2500.00",
		Metrics: entities.RunMetrics{Processed: 2, TotalAmountCents: 250000},
	}, nil)

	uow.RunRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(run *entities.AutomationRun) bool {
		return run.ID == 77 && run.Status == entities.RunStatusSuccess && run.FinishedAt != nil
	})).Return(nil)
	uow.AutomationRepo.On("Release", mock.Anything, int64(5), int64(77), entities.RunStatusSuccess,
		mock.AnythingOfType("time.Time"), mock.MatchedBy(func(next *time.Time) bool {
			return next != nil && next.After(time.Now().UTC().Add(-time.Minute))
		})).Return(nil)
	uow.Publisher.On("Publish", mock.MatchedBy(func(e events.AutomationRunCompletedEvent) bool {
		return e.AutomationID == 5 && e.RunID == 77 && e.Status == entities.RunStatusSuccess && e.Processed == 2
	})).Return(nil)

	run, err := service.TriggerRun(ctx, 5)

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, int64(77), run.ID)
	assert.Equal(t, entities.RunStatusSuccess, run.Status)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, "billed 2 of 2 contracts for $2500.00", run.Summary)
	assert.Nil(t, run.Error)

	// Claim and finalization each commit their own transaction
	assert.Equal(t, 2, uow.Commits)

	uow.AutomationRepo.AssertExpectations(t)
	uow.RunRepo.AssertExpectations(t)
	uow.Publisher.AssertExpectations(t)
	runner.AssertExpectations(t)
}

func TestAutomationService_TriggerRun_FailedRunQueuesNotification(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.RunRepo.On("Create", ctx, mock.AnythingOfType("*entities.AutomationRun")).Return(nil).Run(func(args mock.Arguments) {
		run := args.Get(1).(*entities.AutomationRun)
		run.ID = 77
		run.Status = entities.RunStatusRunning
		run.StartedAt = time.Now().UTC()
	})
	uow.AutomationRepo.On("Claim", ctx, int64(5), int64(77)).Return(nil)

	runner.On("Run", ctx, automation, int64(77)).Return(&entities.RunResult{
		Success: false,
		Summary: "billed 0 of 2 contracts for $0.00",
		Metrics: entities.RunMetrics{Failed: 2},
		Err:     "2 of 2 contracts failed",
	}, nil)

	uow.RunRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(run *entities.AutomationRun) bool {
		return run.Status == entities.RunStatusFailed && run.Error != nil
	})).Return(nil)
	uow.AutomationRepo.On("Release", mock.Anything, int64(5), int64(77), entities.RunStatusFailed,
		mock.AnythingOfType("time.Time"), mock.Anything).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.AutomationRunCompletedEvent")).Return(nil)

	// The failure alert goes to the organization contact
	uow.OrganizationRepo.On("GetByID", mock.Anything, int64(7)).Return(&entities.Organization{
		ID:           7,
		Name:         "Southern Care",
		ContactEmail: "ops@southerncare.org.au",
	}, nil)
	uow.NotificationRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *entities.Notification) bool {
		return n.Kind == entities.NotificationKindRunFailed &&
			n.Recipient == "ops@southerncare.org.au" &&
			n.RunID != nil && *n.RunID == 77
	})).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.NotificationQueuedEvent")).Return(nil)

	run, err := service.TriggerRun(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Equal(t, "2 of 2 contracts failed", *run.Error)

	uow.NotificationRepo.AssertExpectations(t)
	uow.Publisher.AssertExpectations(t)
}

func TestAutomationService_TriggerRun_RunnerPanics(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.RunRepo.On("Create", ctx, mock.AnythingOfType("*entities.AutomationRun")).Return(nil).Run(func(args mock.Arguments) {
		run := args.Get(1).(*entities.AutomationRun)
		run.ID = 77
		run.Status = entities.RunStatusRunning
		run.StartedAt = time.Now().UTC()
	})
	uow.AutomationRepo.On("Claim", ctx, int64(5), int64(77)).Return(nil)

	runner.On("Run", ctx, automation, int64(77)).Return(nil, nil).Run(func(args mock.Arguments) {
		panic("nil map write in runner")
	})

	// The run must still be finalized and the claim released
	uow.RunRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(run *entities.AutomationRun) bool {
		return run.Status == entities.RunStatusFailed && run.Summary == "runner panicked"
	})).Return(nil)
	uow.AutomationRepo.On("Release", mock.Anything, int64(5), int64(77), entities.RunStatusFailed,
		mock.AnythingOfType("time.Time"), mock.Anything).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.AutomationRunCompletedEvent")).Return(nil)
	uow.OrganizationRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)

	run, err := service.TriggerRun(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "panic: nil map write in runner")

	uow.RunRepo.AssertExpectations(t)
	uow.AutomationRepo.AssertExpectations(t)
}

func TestAutomationService_TriggerRun_AlreadyRunning(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})
	runningID := int64(55)
	automation.RunningRunID = &runningID

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)

	run, err := service.TriggerRun(ctx, 5)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
	assert.Equal(t, 0, uow.Commits)
}

func TestAutomationService_TriggerRun_DisabledAutomation(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	// The automation was disabled after the caller's preflight
	automation := testAutomation(entities.AutomationConfig{})
	automation.Enabled = false

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)

	run, err := service.TriggerRun(ctx, 5)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrNotRunnable)
	assert.Contains(t, err.Error(), "automation disabled")
	assert.Equal(t, 0, uow.Commits)
	uow.RunRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestAutomationService_TriggerRun_NoRunnerForType(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	service := NewAutomationService(factory, 7)

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(testAutomation(entities.AutomationConfig{}), nil)

	run, err := service.TriggerRun(ctx, 5)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrNotRunnable)
	uow.RunRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAutomationService_TriggerRun_ClaimRace(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	// The stale read says idle but another caller claims first
	automation := testAutomation(entities.AutomationConfig{})

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.RunRepo.On("Create", ctx, mock.AnythingOfType("*entities.AutomationRun")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.AutomationRun).ID = 78
	})
	uow.AutomationRepo.On("Claim", ctx, int64(5), int64(78)).Return(domain.ErrAlreadyRunning)

	run, err := service.TriggerRun(ctx, 5)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
	assert.Equal(t, 0, uow.Commits)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestAutomationService_TriggerRun_NotFound(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	factory.UnitOfWork.AutomationRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	service := NewAutomationService(factory, 7, &testhelpers.MockAutomationRunner{})

	run, err := service.TriggerRun(ctx, 99)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAutomationService_TriggerRun_RunnerError(t *testing.T) {
	ctx := context.Background()

	factory := testhelpers.NewFakeUnitOfWorkFactory()
	uow := factory.UnitOfWork
	runner := &testhelpers.MockAutomationRunner{RunnerType: entities.AutomationTypeBilling}
	service := NewAutomationService(factory, 7, runner)

	automation := testAutomation(entities.AutomationConfig{})

	uow.AutomationRepo.On("GetByID", ctx, int64(5)).Return(automation, nil)
	uow.RunRepo.On("Create", ctx, mock.AnythingOfType("*entities.AutomationRun")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.AutomationRun).ID = 77
	})
	uow.AutomationRepo.On("Claim", ctx, int64(5), int64(77)).Return(nil)

	runner.On("Run", ctx, automation, int64(77)).Return(nil, errors.New("failed to evaluate eligibility: connection refused"))

	uow.RunRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(run *entities.AutomationRun) bool {
		return run.Status == entities.RunStatusFailed && run.Summary == "runner failed"
	})).Return(nil)
	uow.AutomationRepo.On("Release", mock.Anything, int64(5), int64(77), entities.RunStatusFailed,
		mock.AnythingOfType("time.Time"), mock.Anything).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.AutomationRunCompletedEvent")).Return(nil)
	uow.OrganizationRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)

	run, err := service.TriggerRun(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "connection refused")
}
