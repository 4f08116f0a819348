package services

import (
	"context"
	"testing"
	"time"

	"careops/domain/entities"
	"careops/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyRunCompleted_FailedRun(t *testing.T) {
	ctx := context.Background()

	mockOrgRepo := new(testhelpers.MockOrganizationRepository)
	mockNotificationRepo := new(testhelpers.MockNotificationRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewNotificationService(mockOrgRepo, mockNotificationRepo, mockPublisher)

	automation := testAutomation(entities.AutomationConfig{})
	finishedAt := time.Now().UTC()
	runErr := "2 of 2 contracts failed"
	run := &entities.AutomationRun{
		ID:           77,
		AutomationID: 5,
		Status:       entities.RunStatusFailed,
		FinishedAt:   &finishedAt,
		Summary:      "billed 0 of 2 contracts for $0.00",
		Metrics:      entities.RunMetrics{Failed: 2},
		Error:        &runErr,
	}

	mockOrgRepo.On("GetByID", ctx, int64(7)).Return(&entities.Organization{
		ID:           7,
		Name:         "Southern Care",
		ContactEmail: "ops@southerncare.org.au",
	}, nil)

	mockNotificationRepo.On("Create", ctx, mock.MatchedBy(func(n *entities.Notification) bool {
		return n.Kind == entities.NotificationKindRunFailed &&
			n.Recipient == "ops@southerncare.org.au" &&
			n.RunID != nil && *n.RunID == 77
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Notification).ID = 12
	})

	mockPublisher.On("Publish", mock.AnythingOfType("events.NotificationQueuedEvent")).Return(nil)

	err := service.NotifyRunCompleted(ctx, automation, run)

	require.NoError(t, err)

	// The queued message names the automation and carries the failure detail
	created := mockNotificationRepo.Calls[0].Arguments.Get(1).(*entities.Notification)
	assert.Contains(t, created.Subject, `"Weekly SIL billing" failed`)
	assert.Contains(t, created.Body, "billed 0 of 2 contracts")
	assert.Contains(t, created.Body, "2 of 2 contracts failed")

	mockOrgRepo.AssertExpectations(t)
	mockNotificationRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestNotificationService_NotifyRunCompleted_SuccessfulRun(t *testing.T) {
	ctx := context.Background()

	mockOrgRepo := new(testhelpers.MockOrganizationRepository)
	mockNotificationRepo := new(testhelpers.MockNotificationRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewNotificationService(mockOrgRepo, mockNotificationRepo, mockPublisher)

	automation := testAutomation(entities.AutomationConfig{})
	finishedAt := time.Now().UTC()
	run := &entities.AutomationRun{
		ID:           77,
		AutomationID: 5,
		Status:       entities.RunStatusSuccess,
		FinishedAt:   &finishedAt,
		Summary:      "billed 2 of 2 contracts for $2500.00",
		Metrics:      entities.RunMetrics{Processed: 2, TotalAmountCents: 250000},
	}

	mockOrgRepo.On("GetByID", ctx, int64(7)).Return(&entities.Organization{
		ID:           7,
		ContactEmail: "ops@southerncare.org.au",
	}, nil)
	mockNotificationRepo.On("Create", ctx, mock.MatchedBy(func(n *entities.Notification) bool {
		return n.Kind == entities.NotificationKindRunCompleted
	})).Return(nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.NotificationQueuedEvent")).Return(nil)

	err := service.NotifyRunCompleted(ctx, automation, run)

	require.NoError(t, err)
	mockNotificationRepo.AssertExpectations(t)
}

func TestNotificationService_NotifyRunCompleted_NoContactEmail(t *testing.T) {
	ctx := context.Background()

	mockOrgRepo := new(testhelpers.MockOrganizationRepository)
	mockNotificationRepo := new(testhelpers.MockNotificationRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewNotificationService(mockOrgRepo, mockNotificationRepo, mockPublisher)

	mockOrgRepo.On("GetByID", ctx, int64(7)).Return(&entities.Organization{ID: 7}, nil)

	run := &entities.AutomationRun{ID: 77, Status: entities.RunStatusFailed}
	err := service.NotifyRunCompleted(ctx, testAutomation(entities.AutomationConfig{}), run)

	// Nothing to send to, nothing queued, no error
	require.NoError(t, err)
	mockNotificationRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestNotificationService_NotifyRunCompleted_OrganizationMissing(t *testing.T) {
	ctx := context.Background()

	mockOrgRepo := new(testhelpers.MockOrganizationRepository)
	mockNotificationRepo := new(testhelpers.MockNotificationRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewNotificationService(mockOrgRepo, mockNotificationRepo, mockPublisher)

	mockOrgRepo.On("GetByID", ctx, int64(7)).Return(nil, nil)

	run := &entities.AutomationRun{ID: 77, Status: entities.RunStatusFailed}
	err := service.NotifyRunCompleted(ctx, testAutomation(entities.AutomationConfig{}), run)

	require.NoError(t, err)
	mockNotificationRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestNotificationService_NotifyLeaseExpiring(t *testing.T) {
	ctx := context.Background()

	mockOrgRepo := new(testhelpers.MockOrganizationRepository)
	mockNotificationRepo := new(testhelpers.MockNotificationRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewNotificationService(mockOrgRepo, mockNotificationRepo, mockPublisher)

	endDate := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	lease := &entities.HeadLease{
		ID:             3,
		OrganizationID: 7,
		HouseID:        10,
		LandlordName:   "Harbour Property Group",
		RentCents:      65000,
		RentFrequency:  entities.FrequencyWeekly,
		EndDate:        &endDate,
		Status:         entities.HeadLeaseStatusActive,
		AgreementRef:   "HL-2023-014",
	}
	house := &entities.House{
		ID:          10,
		AddressLine: "5 Banksia Court",
		Suburb:      "Morphett Vale",
		State:       "SA",
		Postcode:    "5162",
	}

	mockOrgRepo.On("GetByID", ctx, int64(7)).Return(&entities.Organization{
		ID:           7,
		ContactEmail: "ops@southerncare.org.au",
	}, nil)
	mockNotificationRepo.On("Create", ctx, mock.MatchedBy(func(n *entities.Notification) bool {
		return n.Kind == entities.NotificationKindLeaseExpiring && n.RunID == nil
	})).Return(nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.NotificationQueuedEvent")).Return(nil)

	err := service.NotifyLeaseExpiring(ctx, lease, house)

	require.NoError(t, err)

	created := mockNotificationRepo.Calls[0].Arguments.Get(1).(*entities.Notification)
	assert.Contains(t, created.Subject, "5 Banksia Court, Morphett Vale SA 5162")
	assert.Contains(t, created.Subject, "30 Sep 2025")
	assert.Contains(t, created.Body, "Harbour Property Group")

	mockNotificationRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
