package testhelpers

import (
	"context"
	"time"

	"careops/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockAutomationRunner is a mock implementation of AutomationRunner. The
// runner type is a plain field so registration works without expectations.
type MockAutomationRunner struct {
	mock.Mock
	RunnerType entities.AutomationType
}

func (m *MockAutomationRunner) Type() entities.AutomationType {
	if m.RunnerType == "" {
		return entities.AutomationTypeBilling
	}
	return m.RunnerType
}

func (m *MockAutomationRunner) Run(ctx context.Context, automation *entities.Automation, runID int64) (*entities.RunResult, error) {
	args := m.Called(ctx, automation, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RunResult), args.Error(1)
}

// MockAutomationService is a mock implementation of AutomationService
type MockAutomationService struct {
	mock.Mock
}

func (m *MockAutomationService) Preflight(ctx context.Context, automationID int64) (*entities.PreflightResult, error) {
	args := m.Called(ctx, automationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PreflightResult), args.Error(1)
}

func (m *MockAutomationService) TriggerRun(ctx context.Context, automationID int64) (*entities.AutomationRun, error) {
	args := m.Called(ctx, automationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AutomationRun), args.Error(1)
}

// MockEligibilityService is a mock implementation of EligibilityService
type MockEligibilityService struct {
	mock.Mock
}

func (m *MockEligibilityService) EvaluateContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.EligibleContract, error) {
	args := m.Called(ctx, contractIDs, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EligibleContract), args.Error(1)
}

func (m *MockEligibilityService) EligibleContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.FundingContract, error) {
	args := m.Called(ctx, contractIDs, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FundingContract), args.Error(1)
}

// MockNotificationService is a mock implementation of NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyRunCompleted(ctx context.Context, automation *entities.Automation, run *entities.AutomationRun) error {
	args := m.Called(ctx, automation, run)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyLeaseExpiring(ctx context.Context, lease *entities.HeadLease, house *entities.House) error {
	args := m.Called(ctx, lease, house)
	return args.Error(0)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
