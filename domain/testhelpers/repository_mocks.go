package testhelpers

import (
	"context"
	"time"

	"careops/domain/entities"
	"careops/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockOrganizationRepository is a mock implementation of OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id int64) (*entities.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetByTokenDigest(ctx context.Context, digest string) (*entities.Organization, error) {
	args := m.Called(ctx, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *entities.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *entities.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

// MockHouseRepository is a mock implementation of HouseRepository
type MockHouseRepository struct {
	mock.Mock
}

func (m *MockHouseRepository) Create(ctx context.Context, house *entities.House) error {
	args := m.Called(ctx, house)
	return args.Error(0)
}

func (m *MockHouseRepository) GetByID(ctx context.Context, id int64) (*entities.House, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.House), args.Error(1)
}

func (m *MockHouseRepository) List(ctx context.Context) ([]*entities.House, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.House), args.Error(1)
}

func (m *MockHouseRepository) Update(ctx context.Context, house *entities.House) error {
	args := m.Called(ctx, house)
	return args.Error(0)
}

func (m *MockHouseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResidentRepository is a mock implementation of ResidentRepository
type MockResidentRepository struct {
	mock.Mock
}

func (m *MockResidentRepository) Create(ctx context.Context, resident *entities.Resident) error {
	args := m.Called(ctx, resident)
	return args.Error(0)
}

func (m *MockResidentRepository) GetByID(ctx context.Context, id int64) (*entities.Resident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Resident), args.Error(1)
}

func (m *MockResidentRepository) List(ctx context.Context) ([]*entities.Resident, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Resident), args.Error(1)
}

func (m *MockResidentRepository) ListByHouse(ctx context.Context, houseID int64) ([]*entities.Resident, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Resident), args.Error(1)
}

func (m *MockResidentRepository) Update(ctx context.Context, resident *entities.Resident) error {
	args := m.Called(ctx, resident)
	return args.Error(0)
}

func (m *MockResidentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFundingContractRepository is a mock implementation of FundingContractRepository
type MockFundingContractRepository struct {
	mock.Mock
}

func (m *MockFundingContractRepository) Create(ctx context.Context, contract *entities.FundingContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockFundingContractRepository) GetByID(ctx context.Context, id int64) (*entities.FundingContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundingContract), args.Error(1)
}

func (m *MockFundingContractRepository) List(ctx context.Context) ([]*entities.FundingContract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FundingContract), args.Error(1)
}

func (m *MockFundingContractRepository) ListByIDs(ctx context.Context, ids []int64) ([]*entities.FundingContract, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FundingContract), args.Error(1)
}

func (m *MockFundingContractRepository) ListByResident(ctx context.Context, residentID int64) ([]*entities.FundingContract, error) {
	args := m.Called(ctx, residentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FundingContract), args.Error(1)
}

func (m *MockFundingContractRepository) Update(ctx context.Context, contract *entities.FundingContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockFundingContractRepository) ApplyDrawdown(ctx context.Context, contractID int64, amountCents int64, at time.Time) (*entities.FundingContract, error) {
	args := m.Called(ctx, contractID, amountCents, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundingContract), args.Error(1)
}

func (m *MockFundingContractRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDrawdownRepository is a mock implementation of DrawdownRepository
type MockDrawdownRepository struct {
	mock.Mock
}

func (m *MockDrawdownRepository) Create(ctx context.Context, drawdown *entities.Drawdown) error {
	args := m.Called(ctx, drawdown)
	return args.Error(0)
}

func (m *MockDrawdownRepository) ListByContract(ctx context.Context, contractID int64, limit int) ([]*entities.Drawdown, error) {
	args := m.Called(ctx, contractID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drawdown), args.Error(1)
}

func (m *MockDrawdownRepository) ListByRun(ctx context.Context, runID int64) ([]*entities.Drawdown, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drawdown), args.Error(1)
}

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *entities.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id int64) (*entities.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) List(ctx context.Context) ([]*entities.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Update(ctx context.Context, supplier *entities.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHeadLeaseRepository is a mock implementation of HeadLeaseRepository
type MockHeadLeaseRepository struct {
	mock.Mock
}

func (m *MockHeadLeaseRepository) Create(ctx context.Context, lease *entities.HeadLease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockHeadLeaseRepository) GetByID(ctx context.Context, id int64) (*entities.HeadLease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HeadLease), args.Error(1)
}

func (m *MockHeadLeaseRepository) List(ctx context.Context) ([]*entities.HeadLease, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.HeadLease), args.Error(1)
}

func (m *MockHeadLeaseRepository) GetByHouse(ctx context.Context, houseID int64) (*entities.HeadLease, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HeadLease), args.Error(1)
}

func (m *MockHeadLeaseRepository) ListExpiring(ctx context.Context, now time.Time, window time.Duration) ([]*entities.HeadLease, error) {
	args := m.Called(ctx, now, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.HeadLease), args.Error(1)
}

func (m *MockHeadLeaseRepository) GetOrganizationsWithExpiringLeases(ctx context.Context, now time.Time, window time.Duration) ([]int64, error) {
	args := m.Called(ctx, now, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockHeadLeaseRepository) Update(ctx context.Context, lease *entities.HeadLease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockHeadLeaseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExpenseRepository is a mock implementation of ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *entities.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id int64) (*entities.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Expense), args.Error(1)
}

func (m *MockExpenseRepository) List(ctx context.Context) ([]*entities.Expense, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListByHouse(ctx context.Context, houseID int64, limit int) ([]*entities.Expense, error) {
	args := m.Called(ctx, houseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Expense), args.Error(1)
}

func (m *MockExpenseRepository) TotalByHouse(ctx context.Context, from, to time.Time) (map[int64]int64, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *entities.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUtilityReadingRepository is a mock implementation of UtilityReadingRepository
type MockUtilityReadingRepository struct {
	mock.Mock
}

func (m *MockUtilityReadingRepository) Create(ctx context.Context, reading *entities.UtilityReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockUtilityReadingRepository) ListByHouse(ctx context.Context, houseID int64, utilityType *entities.UtilityType, limit int) ([]*entities.UtilityReading, error) {
	args := m.Called(ctx, houseID, utilityType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UtilityReading), args.Error(1)
}

func (m *MockUtilityReadingRepository) GetLatest(ctx context.Context, houseID int64, utilityType entities.UtilityType) (*entities.UtilityReading, error) {
	args := m.Called(ctx, houseID, utilityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UtilityReading), args.Error(1)
}

func (m *MockUtilityReadingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAutomationRepository is a mock implementation of AutomationRepository
type MockAutomationRepository struct {
	mock.Mock
}

func (m *MockAutomationRepository) Create(ctx context.Context, automation *entities.Automation) error {
	args := m.Called(ctx, automation)
	return args.Error(0)
}

func (m *MockAutomationRepository) GetByID(ctx context.Context, id int64) (*entities.Automation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Automation), args.Error(1)
}

func (m *MockAutomationRepository) List(ctx context.Context) ([]*entities.Automation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Automation), args.Error(1)
}

func (m *MockAutomationRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.Automation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Automation), args.Error(1)
}

func (m *MockAutomationRepository) GetOrganizationsWithDueAutomations(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAutomationRepository) Update(ctx context.Context, automation *entities.Automation) error {
	args := m.Called(ctx, automation)
	return args.Error(0)
}

func (m *MockAutomationRepository) Claim(ctx context.Context, automationID, runID int64) error {
	args := m.Called(ctx, automationID, runID)
	return args.Error(0)
}

func (m *MockAutomationRepository) Release(ctx context.Context, automationID, runID int64, status entities.RunStatus, finishedAt time.Time, nextRunAt *time.Time) error {
	args := m.Called(ctx, automationID, runID, status, finishedAt, nextRunAt)
	return args.Error(0)
}

func (m *MockAutomationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAutomationRunRepository is a mock implementation of AutomationRunRepository
type MockAutomationRunRepository struct {
	mock.Mock
}

func (m *MockAutomationRunRepository) Create(ctx context.Context, run *entities.AutomationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAutomationRunRepository) GetByID(ctx context.Context, id int64) (*entities.AutomationRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AutomationRun), args.Error(1)
}

func (m *MockAutomationRunRepository) ListByAutomation(ctx context.Context, automationID int64, limit int) ([]*entities.AutomationRun, error) {
	args := m.Called(ctx, automationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AutomationRun), args.Error(1)
}

func (m *MockAutomationRunRepository) Finalize(ctx context.Context, run *entities.AutomationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id int64) (*entities.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) List(ctx context.Context, limit int) ([]*entities.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListPending(ctx context.Context, limit int) ([]*entities.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) GetOrganizationsWithPendingNotifications(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkFailed(ctx context.Context, id int64, deliveryErr string) error {
	args := m.Called(ctx, id, deliveryErr)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
