package testhelpers

import (
	"context"

	"careops/domain/interfaces"
)

// FakeUnitOfWork implements UnitOfWork on top of the repository mocks it
// holds. Begin, Commit and Rollback only count calls, so flows that span
// several transactions all see the same mocks.
type FakeUnitOfWork struct {
	OrganizationRepo *MockOrganizationRepository
	HouseRepo        *MockHouseRepository
	ResidentRepo     *MockResidentRepository
	ContractRepo     *MockFundingContractRepository
	DrawdownRepo     *MockDrawdownRepository
	SupplierRepo     *MockSupplierRepository
	HeadLeaseRepo    *MockHeadLeaseRepository
	ExpenseRepo      *MockExpenseRepository
	ReadingRepo      *MockUtilityReadingRepository
	AutomationRepo   *MockAutomationRepository
	RunRepo          *MockAutomationRunRepository
	NotificationRepo *MockNotificationRepository
	Publisher        *MockEventPublisher

	BeginErr  error
	CommitErr error

	Begins    int
	Commits   int
	Rollbacks int
}

// NewFakeUnitOfWork creates a fake unit of work with fresh mocks for every
// repository
func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		OrganizationRepo: &MockOrganizationRepository{},
		HouseRepo:        &MockHouseRepository{},
		ResidentRepo:     &MockResidentRepository{},
		ContractRepo:     &MockFundingContractRepository{},
		DrawdownRepo:     &MockDrawdownRepository{},
		SupplierRepo:     &MockSupplierRepository{},
		HeadLeaseRepo:    &MockHeadLeaseRepository{},
		ExpenseRepo:      &MockExpenseRepository{},
		ReadingRepo:      &MockUtilityReadingRepository{},
		AutomationRepo:   &MockAutomationRepository{},
		RunRepo:          &MockAutomationRunRepository{},
		NotificationRepo: &MockNotificationRepository{},
		Publisher:        &MockEventPublisher{},
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	u.Begins++
	return u.BeginErr
}

func (u *FakeUnitOfWork) Commit() error {
	u.Commits++
	return u.CommitErr
}

func (u *FakeUnitOfWork) Rollback() error {
	u.Rollbacks++
	return nil
}

func (u *FakeUnitOfWork) OrganizationRepository() interfaces.OrganizationRepository {
	return u.OrganizationRepo
}

func (u *FakeUnitOfWork) HouseRepository() interfaces.HouseRepository {
	return u.HouseRepo
}

func (u *FakeUnitOfWork) ResidentRepository() interfaces.ResidentRepository {
	return u.ResidentRepo
}

func (u *FakeUnitOfWork) FundingContractRepository() interfaces.FundingContractRepository {
	return u.ContractRepo
}

func (u *FakeUnitOfWork) DrawdownRepository() interfaces.DrawdownRepository {
	return u.DrawdownRepo
}

func (u *FakeUnitOfWork) SupplierRepository() interfaces.SupplierRepository {
	return u.SupplierRepo
}

func (u *FakeUnitOfWork) HeadLeaseRepository() interfaces.HeadLeaseRepository {
	return u.HeadLeaseRepo
}

func (u *FakeUnitOfWork) ExpenseRepository() interfaces.ExpenseRepository {
	return u.ExpenseRepo
}

func (u *FakeUnitOfWork) UtilityReadingRepository() interfaces.UtilityReadingRepository {
	return u.ReadingRepo
}

func (u *FakeUnitOfWork) AutomationRepository() interfaces.AutomationRepository {
	return u.AutomationRepo
}

func (u *FakeUnitOfWork) AutomationRunRepository() interfaces.AutomationRunRepository {
	return u.RunRepo
}

func (u *FakeUnitOfWork) NotificationRepository() interfaces.NotificationRepository {
	return u.NotificationRepo
}

func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.Publisher
}

// FakeUnitOfWorkFactory hands out the same FakeUnitOfWork for every call and
// records which organizations were requested
type FakeUnitOfWorkFactory struct {
	UnitOfWork *FakeUnitOfWork

	CreatedFor []int64
}

// NewFakeUnitOfWorkFactory creates a factory around a fresh FakeUnitOfWork
func NewFakeUnitOfWorkFactory() *FakeUnitOfWorkFactory {
	return &FakeUnitOfWorkFactory{
		UnitOfWork: NewFakeUnitOfWork(),
	}
}

func (f *FakeUnitOfWorkFactory) CreateForOrganization(organizationID int64) interfaces.UnitOfWork {
	f.CreatedFor = append(f.CreatedFor, organizationID)
	return f.UnitOfWork
}
