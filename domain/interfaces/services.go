package interfaces

import (
	"context"
	"time"

	"careops/domain/entities"
)

// EligibilityService defines the interface for billing eligibility evaluation
type EligibilityService interface {
	// EvaluateContracts returns the eligibility view of the given contracts at
	// today. An empty contractIDs slice evaluates every contract in the
	// organization.
	EvaluateContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.EligibleContract, error)

	// EligibleContracts returns only the contracts a billing run would charge
	// at today
	EligibleContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.FundingContract, error)
}

// AutomationRunner executes one automation type. The dispatcher selects a
// runner by the automation's type and records its result on the run ledger.
type AutomationRunner interface {
	// Type names the automation type this runner handles
	Type() entities.AutomationType

	// Run executes the automation. Item-level failures are reported inside
	// the result; the error return is reserved for failures that prevented
	// the run from executing at all.
	Run(ctx context.Context, automation *entities.Automation, runID int64) (*entities.RunResult, error)
}

// AutomationService defines the interface for automation lifecycle and dispatch
type AutomationService interface {
	// Preflight evaluates whether an automation may run right now without
	// starting it
	Preflight(ctx context.Context, automationID int64) (*entities.PreflightResult, error)

	// TriggerRun claims the automation, executes its runner and finalizes the
	// run ledger entry. Returns the finalized run.
	TriggerRun(ctx context.Context, automationID int64) (*entities.AutomationRun, error)
}

// NotificationService defines the interface for queueing outbound notifications
type NotificationService interface {
	// NotifyRunCompleted queues a run outcome notification to the
	// organization's contact address. A nop when the organization has no
	// contact email.
	NotifyRunCompleted(ctx context.Context, automation *entities.Automation, run *entities.AutomationRun) error

	// NotifyLeaseExpiring queues an expiry warning for a head lease
	NotifyLeaseExpiring(ctx context.Context, lease *entities.HeadLease, house *entities.House) error
}

// Mailer delivers rendered notifications to the outbound email provider
type Mailer interface {
	// Send delivers one message. Returns an error when the provider rejects
	// or cannot be reached; the caller decides on retry.
	Send(ctx context.Context, to, subject, body string) error
}
