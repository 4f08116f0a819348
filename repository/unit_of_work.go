package repository

import (
	"context"
	"fmt"

	"careops/database"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	organizationID         int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	organizationRepo       interfaces.OrganizationRepository
	houseRepo              interfaces.HouseRepository
	residentRepo           interfaces.ResidentRepository
	fundingContractRepo    interfaces.FundingContractRepository
	drawdownRepo           interfaces.DrawdownRepository
	supplierRepo           interfaces.SupplierRepository
	headLeaseRepo          interfaces.HeadLeaseRepository
	expenseRepo            interfaces.ExpenseRepository
	utilityReadingRepo     interfaces.UtilityReadingRepository
	automationRepo         interfaces.AutomationRepository
	automationRunRepo      interfaces.AutomationRunRepository
	notificationRepo       interfaces.NotificationRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

type unitOfWorkFactory struct {
	db *database.DB
}

// CreateForOrganizationWithPublisher creates a new UnitOfWork with a specific
// transactional publisher
func (f *unitOfWorkFactory) CreateForOrganizationWithPublisher(organizationID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		organizationID:         organizationID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create organization-scoped repositories with the transaction
	u.organizationRepo = NewOrganizationRepositoryWithTx(tx) // Organizations are the scope, not scoped
	u.houseRepo = NewHouseRepositoryScoped(tx, u.organizationID)
	u.residentRepo = NewResidentRepositoryScoped(tx, u.organizationID)
	u.fundingContractRepo = NewFundingContractRepositoryScoped(tx, u.organizationID)
	u.drawdownRepo = NewDrawdownRepositoryScoped(tx, u.organizationID)
	u.supplierRepo = NewSupplierRepositoryScoped(tx, u.organizationID)
	u.headLeaseRepo = NewHeadLeaseRepositoryScoped(tx, u.organizationID)
	u.expenseRepo = NewExpenseRepositoryScoped(tx, u.organizationID)
	u.utilityReadingRepo = NewUtilityReadingRepositoryScoped(tx, u.organizationID)
	u.automationRepo = NewAutomationRepositoryScoped(tx, u.organizationID)
	u.automationRunRepo = NewAutomationRunRepositoryScoped(tx, u.organizationID)
	u.notificationRepo = NewNotificationRepositoryScoped(tx, u.organizationID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// OrganizationRepository returns the organization repository for this unit of work
func (u *unitOfWork) OrganizationRepository() interfaces.OrganizationRepository {
	if u.organizationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.organizationRepo
}

// HouseRepository returns the house repository for this unit of work
func (u *unitOfWork) HouseRepository() interfaces.HouseRepository {
	if u.houseRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.houseRepo
}

// ResidentRepository returns the resident repository for this unit of work
func (u *unitOfWork) ResidentRepository() interfaces.ResidentRepository {
	if u.residentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.residentRepo
}

// FundingContractRepository returns the funding contract repository for this unit of work
func (u *unitOfWork) FundingContractRepository() interfaces.FundingContractRepository {
	if u.fundingContractRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.fundingContractRepo
}

// DrawdownRepository returns the drawdown repository for this unit of work
func (u *unitOfWork) DrawdownRepository() interfaces.DrawdownRepository {
	if u.drawdownRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawdownRepo
}

// SupplierRepository returns the supplier repository for this unit of work
func (u *unitOfWork) SupplierRepository() interfaces.SupplierRepository {
	if u.supplierRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.supplierRepo
}

// HeadLeaseRepository returns the head lease repository for this unit of work
func (u *unitOfWork) HeadLeaseRepository() interfaces.HeadLeaseRepository {
	if u.headLeaseRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.headLeaseRepo
}

// ExpenseRepository returns the expense repository for this unit of work
func (u *unitOfWork) ExpenseRepository() interfaces.ExpenseRepository {
	if u.expenseRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.expenseRepo
}

// UtilityReadingRepository returns the utility reading repository for this unit of work
func (u *unitOfWork) UtilityReadingRepository() interfaces.UtilityReadingRepository {
	if u.utilityReadingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.utilityReadingRepo
}

// AutomationRepository returns the automation repository for this unit of work
func (u *unitOfWork) AutomationRepository() interfaces.AutomationRepository {
	if u.automationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.automationRepo
}

// AutomationRunRepository returns the automation run repository for this unit of work
func (u *unitOfWork) AutomationRunRepository() interfaces.AutomationRunRepository {
	if u.automationRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.automationRunRepo
}

// NotificationRepository returns the notification repository for this unit of work
func (u *unitOfWork) NotificationRepository() interfaces.NotificationRepository {
	if u.notificationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.notificationRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
