package infrastructure

import (
	"careops/database"
	"careops/domain/interfaces"
	"careops/repository"
)

// TestUnitOfWorkFactory is a test factory that creates new unit of work instances.
// It lives in the infrastructure package to avoid circular dependencies between
// application and repository packages.
type TestUnitOfWorkFactory struct {
	db                     *database.DB
	transactionalPublisher interfaces.TransactionalEventPublisher
}

// NewTestUnitOfWorkFactory creates a new test unit of work factory
func NewTestUnitOfWorkFactory(db *database.DB, transactionalPublisher interfaces.TransactionalEventPublisher) *TestUnitOfWorkFactory {
	return &TestUnitOfWorkFactory{
		db:                     db,
		transactionalPublisher: transactionalPublisher,
	}
}

// CreateForOrganization creates a new UnitOfWork instance for testing
func (f *TestUnitOfWorkFactory) CreateForOrganization(organizationID int64) interfaces.UnitOfWork {
	// Create a fresh UoW for each call to avoid transaction state issues
	return repository.CreateTestUnitOfWork(f.db, organizationID, f.transactionalPublisher)
}
