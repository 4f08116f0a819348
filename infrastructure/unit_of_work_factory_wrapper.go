package infrastructure

import (
	"careops/database"
	"careops/domain/interfaces"
	"careops/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide transactional publishers
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateForOrganizationWithPublisher(organizationID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements interfaces.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	repoFactory := repository.NewUnitOfWorkFactory(db)
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
	}
}

// CreateForOrganization creates a new UnitOfWork with a transactional event publisher
func (w *UnitOfWorkFactoryWrapper) CreateForOrganization(organizationID int64) interfaces.UnitOfWork {
	// Create a transactional publisher for this unit of work
	transactionalPublisher := NewNATSTransactionalPublisher(w.eventPublisher)

	// Create the unit of work with the transactional publisher
	return w.repoFactory.CreateForOrganizationWithPublisher(organizationID, transactionalPublisher)
}
