package repository

import (
	"careops/database"
	"careops/domain/interfaces"
)

// NewTestUnitOfWorkFactory creates a unit of work factory for tests
// Tests should provide their own transactional publisher mock
func NewTestUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return NewUnitOfWorkFactory(db)
}

// CreateTestUnitOfWork creates a unit of work for testing with the provided transactional publisher
func CreateTestUnitOfWork(db *database.DB, organizationID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	factory := NewTestUnitOfWorkFactory(db)
	return factory.CreateForOrganizationWithPublisher(organizationID, transactionalPublisher)
}
