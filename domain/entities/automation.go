package entities

import (
	"fmt"
	"time"
)

// AutomationType identifies the runner used to execute an automation
type AutomationType string

const (
	AutomationTypeBilling AutomationType = "billing"
)

// IsValid checks whether the automation type has a registered runner
func (t AutomationType) IsValid() bool {
	return t == AutomationTypeBilling
}

// Automation is a stored definition of a recurring billing/administrative
// task. It is mutated only by the run pipeline (bookkeeping fields) and by
// user edits through the update endpoint.
type Automation struct {
	ID             int64            `db:"id" json:"id"`
	OrganizationID int64            `db:"organization_id" json:"organization_id"`
	Name           string           `db:"name" json:"name"`
	Type           AutomationType   `db:"type" json:"type"`
	Enabled        bool             `db:"enabled" json:"enabled"`
	Schedule       Schedule         `db:"schedule" json:"schedule"`
	Config         AutomationConfig `db:"config" json:"config"`
	LastRunAt      *time.Time       `db:"last_run_at" json:"last_run_at,omitempty"`
	LastRunStatus  *RunStatus       `db:"last_run_status" json:"last_run_status,omitempty"`
	NextRunAt      *time.Time       `db:"next_run_at" json:"next_run_at,omitempty"`
	RunningRunID   *int64           `db:"running_run_id" json:"running_run_id,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// AutomationConfig carries the runner policy for an automation. ContractIDs
// limits the target set; empty means every contract in the organization.
type AutomationConfig struct {
	ContractIDs     []int64 `json:"contract_ids,omitempty"`
	ContinueOnError bool    `json:"continue_on_error"`
	MaxRetries      int     `json:"max_retries"`
	RetryDelayMs    int     `json:"retry_delay_ms"`
}

// RetryDelay returns the configured pause between item attempts
func (c *AutomationConfig) RetryDelay() time.Duration {
	if c.RetryDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Attempts returns the total attempts per item (first try plus retries)
func (c *AutomationConfig) Attempts() int {
	if c.MaxRetries < 0 {
		return 1
	}
	return c.MaxRetries + 1
}

// Validate checks the config bounds
func (c *AutomationConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.RetryDelayMs < 0 {
		return fmt.Errorf("retry_delay_ms must not be negative")
	}
	return nil
}

// IsRunning reports whether a run currently holds the claim on this automation
func (a *Automation) IsRunning() bool {
	return a.RunningRunID != nil
}

// IsDue reports whether the automation should be triggered at now
func (a *Automation) IsDue(now time.Time) bool {
	return a.Enabled && a.NextRunAt != nil && !a.NextRunAt.After(now)
}

// Validate checks the definition is complete enough to store
func (a *Automation) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Type == "" {
		return fmt.Errorf("type is required")
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("unknown automation type %q", a.Type)
	}
	if err := a.Schedule.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// PreflightResult reports whether an automation may run right now. Reason is
// populated only when CanRun is false, naming the first failing condition.
type PreflightResult struct {
	CanRun bool   `json:"can_run"`
	Reason string `json:"reason,omitempty"`
}
