package interfaces

import (
	"context"
)

// UnitOfWork defines the interface for transactional repository operations.
// All repositories obtained from one unit of work share a single database
// transaction and are scoped to the unit's organization.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// Repository getters
	OrganizationRepository() OrganizationRepository
	HouseRepository() HouseRepository
	ResidentRepository() ResidentRepository
	FundingContractRepository() FundingContractRepository
	DrawdownRepository() DrawdownRepository
	SupplierRepository() SupplierRepository
	HeadLeaseRepository() HeadLeaseRepository
	ExpenseRepository() ExpenseRepository
	UtilityReadingRepository() UtilityReadingRepository
	AutomationRepository() AutomationRepository
	AutomationRunRepository() AutomationRunRepository
	NotificationRepository() NotificationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForOrganization creates a new UnitOfWork instance scoped to a
	// specific organization
	CreateForOrganization(organizationID int64) UnitOfWork
}
