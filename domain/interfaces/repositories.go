package interfaces

import (
	"context"
	"time"

	"careops/domain/entities"
	"careops/domain/events"
)

// OrganizationRepository defines the interface for organization data access.
// Organizations are the tenancy root and the only records queried outside an
// organization scope.
type OrganizationRepository interface {
	// GetByID retrieves an organization by its ID
	GetByID(ctx context.Context, id int64) (*entities.Organization, error)

	// GetByTokenDigest retrieves the organization owning an API token digest
	GetByTokenDigest(ctx context.Context, digest string) (*entities.Organization, error)

	// Create creates a new organization
	Create(ctx context.Context, org *entities.Organization) error

	// Update updates an organization's mutable fields
	Update(ctx context.Context, org *entities.Organization) error
}

// HouseRepository defines the interface for house data access
type HouseRepository interface {
	// Create creates a new house record
	Create(ctx context.Context, house *entities.House) error

	// GetByID retrieves a house by its ID
	GetByID(ctx context.Context, id int64) (*entities.House, error)

	// List returns all houses for the repository's organization
	List(ctx context.Context) ([]*entities.House, error)

	// Update updates a house's mutable fields
	Update(ctx context.Context, house *entities.House) error

	// Delete removes a house
	Delete(ctx context.Context, id int64) error
}

// ResidentRepository defines the interface for resident data access
type ResidentRepository interface {
	// Create creates a new resident record
	Create(ctx context.Context, resident *entities.Resident) error

	// GetByID retrieves a resident by their ID
	GetByID(ctx context.Context, id int64) (*entities.Resident, error)

	// List returns all residents for the repository's organization
	List(ctx context.Context) ([]*entities.Resident, error)

	// ListByHouse returns all residents placed in a specific house
	ListByHouse(ctx context.Context, houseID int64) ([]*entities.Resident, error)

	// Update updates a resident's mutable fields
	Update(ctx context.Context, resident *entities.Resident) error

	// Delete removes a resident
	Delete(ctx context.Context, id int64) error
}

// FundingContractRepository defines the interface for funding contract data access
type FundingContractRepository interface {
	// Create creates a new funding contract
	Create(ctx context.Context, contract *entities.FundingContract) error

	// GetByID retrieves a contract by its ID
	GetByID(ctx context.Context, id int64) (*entities.FundingContract, error)

	// List returns all contracts for the repository's organization
	List(ctx context.Context) ([]*entities.FundingContract, error)

	// ListByIDs returns the contracts matching the given IDs, skipping any
	// that do not exist in the organization
	ListByIDs(ctx context.Context, ids []int64) ([]*entities.FundingContract, error)

	// ListByResident returns all contracts held by a resident
	ListByResident(ctx context.Context, residentID int64) ([]*entities.FundingContract, error)

	// Update updates a contract's mutable fields
	Update(ctx context.Context, contract *entities.FundingContract) error

	// ApplyDrawdown atomically decrements a contract's balance and stamps the
	// drawdown time. Fails if the balance would go negative.
	ApplyDrawdown(ctx context.Context, contractID int64, amountCents int64, at time.Time) (*entities.FundingContract, error)

	// Delete removes a contract
	Delete(ctx context.Context, id int64) error
}

// DrawdownRepository defines the interface for the append-only charge ledger
type DrawdownRepository interface {
	// Create appends a drawdown record
	Create(ctx context.Context, drawdown *entities.Drawdown) error

	// ListByContract returns drawdowns against a contract, newest first
	ListByContract(ctx context.Context, contractID int64, limit int) ([]*entities.Drawdown, error)

	// ListByRun returns the drawdowns written by a specific automation run
	ListByRun(ctx context.Context, runID int64) ([]*entities.Drawdown, error)
}

// SupplierRepository defines the interface for supplier data access
type SupplierRepository interface {
	// Create creates a new supplier record
	Create(ctx context.Context, supplier *entities.Supplier) error

	// GetByID retrieves a supplier by its ID
	GetByID(ctx context.Context, id int64) (*entities.Supplier, error)

	// List returns all suppliers for the repository's organization
	List(ctx context.Context) ([]*entities.Supplier, error)

	// Update updates a supplier's mutable fields
	Update(ctx context.Context, supplier *entities.Supplier) error

	// Delete removes a supplier
	Delete(ctx context.Context, id int64) error
}

// HeadLeaseRepository defines the interface for head lease data access
type HeadLeaseRepository interface {
	// Create creates a new head lease record
	Create(ctx context.Context, lease *entities.HeadLease) error

	// GetByID retrieves a lease by its ID
	GetByID(ctx context.Context, id int64) (*entities.HeadLease, error)

	// List returns all leases for the repository's organization
	List(ctx context.Context) ([]*entities.HeadLease, error)

	// GetByHouse returns the active lease over a house, or nil when unleased
	GetByHouse(ctx context.Context, houseID int64) (*entities.HeadLease, error)

	// ListExpiring returns active leases ending within the window after now
	ListExpiring(ctx context.Context, now time.Time, window time.Duration) ([]*entities.HeadLease, error)

	// GetOrganizationsWithExpiringLeases returns IDs of organizations that
	// have at least one active lease ending within the window after now. Not
	// scoped to the repository's organization; used by the reminder worker to
	// fan out per-organization work.
	GetOrganizationsWithExpiringLeases(ctx context.Context, now time.Time, window time.Duration) ([]int64, error)

	// Update updates a lease's mutable fields
	Update(ctx context.Context, lease *entities.HeadLease) error

	// Delete removes a lease
	Delete(ctx context.Context, id int64) error
}

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	// Create creates a new expense record
	Create(ctx context.Context, expense *entities.Expense) error

	// GetByID retrieves an expense by its ID
	GetByID(ctx context.Context, id int64) (*entities.Expense, error)

	// List returns all expenses for the repository's organization
	List(ctx context.Context) ([]*entities.Expense, error)

	// ListByHouse returns expenses charged against a house, newest first
	ListByHouse(ctx context.Context, houseID int64, limit int) ([]*entities.Expense, error)

	// TotalByHouse sums expense amounts (including GST) per house over a period
	TotalByHouse(ctx context.Context, from, to time.Time) (map[int64]int64, error)

	// Update updates an expense's mutable fields
	Update(ctx context.Context, expense *entities.Expense) error

	// Delete removes an expense
	Delete(ctx context.Context, id int64) error
}

// UtilityReadingRepository defines the interface for meter reading data access
type UtilityReadingRepository interface {
	// Create records a new meter reading
	Create(ctx context.Context, reading *entities.UtilityReading) error

	// ListByHouse returns readings for a house, newest first, optionally
	// filtered to one utility type
	ListByHouse(ctx context.Context, houseID int64, utilityType *entities.UtilityType, limit int) ([]*entities.UtilityReading, error)

	// GetLatest returns the most recent reading of one meter, or nil when the
	// house has no readings of that type
	GetLatest(ctx context.Context, houseID int64, utilityType entities.UtilityType) (*entities.UtilityReading, error)

	// Delete removes a reading
	Delete(ctx context.Context, id int64) error
}

// AutomationRepository defines the interface for automation definition data access
type AutomationRepository interface {
	// Create creates a new automation definition
	Create(ctx context.Context, automation *entities.Automation) error

	// GetByID retrieves an automation by its ID
	GetByID(ctx context.Context, id int64) (*entities.Automation, error)

	// List returns all automations for the repository's organization
	List(ctx context.Context) ([]*entities.Automation, error)

	// ListDue returns enabled automations whose next run time is at or before now
	ListDue(ctx context.Context, now time.Time) ([]*entities.Automation, error)

	// GetOrganizationsWithDueAutomations returns IDs of organizations that have
	// at least one automation due at now. Not scoped to the repository's
	// organization; used by the scheduler to fan out per-organization work.
	GetOrganizationsWithDueAutomations(ctx context.Context, now time.Time) ([]int64, error)

	// Update updates an automation's definition fields
	Update(ctx context.Context, automation *entities.Automation) error

	// Claim atomically takes the run slot for an automation on behalf of a
	// run. Returns domain.ErrAlreadyRunning when another run holds the slot.
	Claim(ctx context.Context, automationID, runID int64) error

	// Release clears the run slot and records the run outcome bookkeeping
	Release(ctx context.Context, automationID, runID int64, status entities.RunStatus, finishedAt time.Time, nextRunAt *time.Time) error

	// Delete removes an automation and its run history
	Delete(ctx context.Context, id int64) error
}

// AutomationRunRepository defines the interface for the run ledger
type AutomationRunRepository interface {
	// Create inserts a run in the running state
	Create(ctx context.Context, run *entities.AutomationRun) error

	// GetByID retrieves a run by its ID
	GetByID(ctx context.Context, id int64) (*entities.AutomationRun, error)

	// ListByAutomation returns runs for an automation, newest first
	ListByAutomation(ctx context.Context, automationID int64, limit int) ([]*entities.AutomationRun, error)

	// Finalize writes a run's terminal status, metrics and summary. A run may
	// only be finalized once.
	Finalize(ctx context.Context, run *entities.AutomationRun) error
}

// NotificationRepository defines the interface for the outbound notification queue
type NotificationRepository interface {
	// Create queues a new notification
	Create(ctx context.Context, notification *entities.Notification) error

	// GetByID retrieves a notification by its ID
	GetByID(ctx context.Context, id int64) (*entities.Notification, error)

	// List returns notifications for the repository's organization, newest first
	List(ctx context.Context, limit int) ([]*entities.Notification, error)

	// ListPending returns queued notifications ready for delivery, oldest first
	ListPending(ctx context.Context, limit int) ([]*entities.Notification, error)

	// GetOrganizationsWithPendingNotifications returns IDs of organizations
	// that have queued notifications. Not scoped to the repository's
	// organization; used by the dispatcher to fan out per-organization work.
	GetOrganizationsWithPendingNotifications(ctx context.Context) ([]int64, error)

	// MarkSent records a successful delivery
	MarkSent(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a delivery failure and its error text
	MarkFailed(ctx context.Context, id int64, deliveryErr string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers published events until the surrounding
// transaction resolves. Flush delivers the buffer after a successful commit;
// Discard drops it on rollback.
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all buffered events
	Flush(ctx context.Context) error

	// Discard clears all buffered events without publishing them
	Discard()
}
