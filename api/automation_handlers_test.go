package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careops/domain/entities"
)

func apiAutomation() *entities.Automation {
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
	}
}

func eligibleContract(id int64) *entities.FundingContract {
	return &entities.FundingContract{
		ID:                id,
		OrganizationID:    7,
		ResidentID:        id,
		Status:            entities.ContractStatusActive,
		StartDate:         time.Now().UTC().AddDate(0, -1, 0),
		BalanceCents:      400000,
		DrawdownRateCents: 150000,
		Frequency:         entities.FrequencyWeekly,
		SupportItemCode:   "01_801_0115_1_1",
	}
}

func TestCreateAutomation_ComputesNextRun(t *testing.T) {
	handler, uow := newTestServer()

	uow.AutomationRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Automation) bool {
		return a.Name == "Weekly SIL billing" && a.Type == entities.AutomationTypeBilling &&
			a.Enabled && a.NextRunAt != nil && a.NextRunAt.After(time.Now().UTC())
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Automation).ID = 5
	})

	rec := doRequest(t, handler, http.MethodPost, "/api/automations", map[string]any{
		"name": "Weekly SIL billing",
		"type": "billing",
		"schedule": map[string]any{
			"kind":      "frequency",
			"frequency": "weekly",
			"at":        "09:00",
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var automation entities.Automation
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &automation))
	assert.Equal(t, int64(5), automation.ID)
	require.NotNil(t, automation.NextRunAt)
	assert.Equal(t, 1, uow.Commits)
}

func TestCreateAutomation_DisabledGetsNoNextRun(t *testing.T) {
	handler, uow := newTestServer()

	uow.AutomationRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Automation) bool {
		return !a.Enabled && a.NextRunAt == nil
	})).Return(nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/automations", map[string]any{
		"name":    "Weekly SIL billing",
		"type":    "billing",
		"enabled": false,
		"schedule": map[string]any{
			"kind":      "frequency",
			"frequency": "weekly",
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	uow.AutomationRepo.AssertExpectations(t)
}

func TestCreateAutomation_RejectsUnknownType(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/api/automations", map[string]any{
		"name": "Overnight exports",
		"type": "export",
		"schedule": map[string]any{
			"kind":      "frequency",
			"frequency": "daily",
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "unknown automation type")
	uow.AutomationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAutomation_RejectsBadCronExpression(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/api/automations", map[string]any{
		"name": "Weekly SIL billing",
		"type": "billing",
		"schedule": map[string]any{
			"kind": "cron",
			"expr": "not a cron line",
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "invalid schedule")
	uow.AutomationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateAutomation_DisableClearsNextRun(t *testing.T) {
	handler, uow := newTestServer()

	existing := apiAutomation()
	next := time.Now().UTC().Add(24 * time.Hour)
	existing.NextRunAt = &next

	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	uow.AutomationRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Automation) bool {
		return !a.Enabled && a.NextRunAt == nil
	})).Return(nil)

	rec := doRequest(t, handler, http.MethodPatch, "/api/automations/5", map[string]any{
		"enabled": false,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var automation entities.Automation
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &automation))
	assert.False(t, automation.Enabled)
	assert.Nil(t, automation.NextRunAt)
	assert.Equal(t, 1, uow.Commits)
}

func TestUpdateAutomation_ScheduleChangeRecomputesNextRun(t *testing.T) {
	handler, uow := newTestServer()

	existing := apiAutomation()
	stale := time.Now().UTC().Add(6 * 24 * time.Hour)
	existing.NextRunAt = &stale

	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	uow.AutomationRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Automation) bool {
		return a.Schedule.Frequency == entities.FrequencyDaily &&
			a.NextRunAt != nil && !a.NextRunAt.Equal(stale)
	})).Return(nil)

	rec := doRequest(t, handler, http.MethodPatch, "/api/automations/5", map[string]any{
		"schedule": map[string]any{
			"kind":      "frequency",
			"frequency": "daily",
			"at":        "02:00",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	uow.AutomationRepo.AssertExpectations(t)
}

func TestListAutomationRuns_UnknownAutomation(t *testing.T) {
	handler, uow := newTestServer()
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/automations/5/runs", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	uow.RunRepo.AssertNotCalled(t, "ListByAutomation", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreflightRun_Ready(t *testing.T) {
	handler, uow := newTestServer()

	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(apiAutomation(), nil)
	uow.ContractRepo.On("List", mock.Anything).Return([]*entities.FundingContract{eligibleContract(100)}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/automations/5/run-now", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result entities.PreflightResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.True(t, result.CanRun)
	assert.Empty(t, result.Reason)
}

func TestPreflightRun_DisabledAutomation(t *testing.T) {
	handler, uow := newTestServer()

	disabled := apiAutomation()
	disabled.Enabled = false
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(disabled, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/automations/5/run-now", nil)

	// The verdict is advisory, so the endpoint still answers 200
	require.Equal(t, http.StatusOK, rec.Code)
	var result entities.PreflightResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.False(t, result.CanRun)
	assert.Equal(t, "automation disabled", result.Reason)
}

func TestPreflightRun_NotFound(t *testing.T) {
	handler, uow := newTestServer()
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/automations/5/run-now", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "automation not found", decodeEnvelope(t, rec).Error)
}

func TestRunNow_PreflightRejectionCreatesNoRun(t *testing.T) {
	handler, uow := newTestServer()

	disabled := apiAutomation()
	disabled.Enabled = false
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(disabled, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/automations/5/run-now", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "automation disabled", decodeEnvelope(t, rec).Error)
	uow.RunRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 0, uow.Commits)
}

func TestRunNow_DisabledBeforeClaim(t *testing.T) {
	handler, uow := newTestServer()

	enabled := apiAutomation()
	disabled := apiAutomation()
	disabled.Enabled = false

	// Preflight passes, then the automation is disabled before the trigger
	// re-reads it under the claim. Still a 422, never a run record.
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(enabled, nil).Once()
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(disabled, nil).Once()
	uow.ContractRepo.On("List", mock.Anything).Return([]*entities.FundingContract{eligibleContract(100)}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/automations/5/run-now", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "automation disabled")
	uow.RunRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 0, uow.Commits)
}

func TestRunNow_ConcurrentClaimConflict(t *testing.T) {
	handler, uow := newTestServer()

	idle := apiAutomation()
	claimed := apiAutomation()
	otherRun := int64(42)
	claimed.RunningRunID = &otherRun

	// Preflight sees an idle automation; by the time the trigger re-reads it
	// another caller holds the claim.
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(idle, nil).Once()
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(claimed, nil).Once()
	uow.ContractRepo.On("List", mock.Anything).Return([]*entities.FundingContract{eligibleContract(100)}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/automations/5/run-now", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "run already in progress", decodeEnvelope(t, rec).Error)
	uow.RunRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunNow_BillsAndReportsOutcome(t *testing.T) {
	handler, uow := newTestServer()

	contract := eligibleContract(100)
	uow.AutomationRepo.On("GetByID", mock.Anything, int64(5)).Return(apiAutomation(), nil)
	uow.ContractRepo.On("List", mock.Anything).Return([]*entities.FundingContract{contract}, nil)
	uow.ContractRepo.On("GetByID", mock.Anything, int64(100)).Return(contract, nil)
	uow.ContractRepo.On("ApplyDrawdown", mock.Anything, int64(100), int64(150000), mock.AnythingOfType("time.Time")).
		Return(&entities.FundingContract{ID: 100, BalanceCents: 250000}, nil)
	uow.DrawdownRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Drawdown")).Return(nil)

	uow.RunRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.AutomationRun")).
		Return(nil).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.AutomationRun).ID = 301
		})
	uow.AutomationRepo.On("Claim", mock.Anything, int64(5), int64(301)).Return(nil)
	uow.RunRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(run *entities.AutomationRun) bool {
		return run.ID == 301 && run.Status == entities.RunStatusSuccess
	})).Return(nil)
	uow.AutomationRepo.On("Release", mock.Anything, int64(5), int64(301), entities.RunStatusSuccess,
		mock.AnythingOfType("time.Time"), mock.Anything).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.DrawdownRecordedEvent")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.AutomationRunCompletedEvent")).Return(nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/automations/5/run-now", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp runNowResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	assert.Equal(t, int64(301), resp.RunID)
	assert.True(t, resp.Success)
	assert.Equal(t, "billed 1 of 1 contracts for $1500.00", resp.Summary)
	assert.Equal(t, 1, resp.Metrics.Processed)
	assert.Equal(t, int64(150000), resp.Metrics.TotalAmountCents)

	// Claim, drawdown, and finalization each commit their own transaction
	assert.Equal(t, 3, uow.Commits)
	uow.AutomationRepo.AssertExpectations(t)
	uow.RunRepo.AssertExpectations(t)
}
