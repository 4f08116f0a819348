package entities

import (
	"time"
)

// RunStatus represents the lifecycle state of an automation run.
// Transitions are running -> success or running -> failed; a finalized
// run is never rewritten.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// AutomationRun is the ledger entry for one execution attempt of an
// automation. Created in the running state before dispatch and finalized to a
// terminal status in the same request.
type AutomationRun struct {
	ID             int64      `db:"id" json:"id"`
	AutomationID   int64      `db:"automation_id" json:"automation_id"`
	OrganizationID int64      `db:"organization_id" json:"organization_id"`
	Status         RunStatus  `db:"status" json:"status"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	FinishedAt     *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Summary        string     `db:"summary" json:"summary"`
	Metrics        RunMetrics `db:"metrics" json:"metrics"`
	Error          *string    `db:"error" json:"error,omitempty"`
}

// IsTerminal reports whether the run has been finalized
func (r *AutomationRun) IsTerminal() bool {
	return r.Status == RunStatusSuccess || r.Status == RunStatusFailed
}

// Duration returns the elapsed run time, zero until finalized
func (r *AutomationRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunMetrics aggregates per-item outcomes of a run. Failures carries one
// entry per item that exhausted its retries; a run can therefore finish as
// success while still reporting failed items (partial success).
type RunMetrics struct {
	Processed        int              `json:"processed"`
	Failed           int              `json:"failed"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Failures         []RunItemFailure `json:"failures,omitempty"`
}

// RunItemFailure records a single item that could not be processed
type RunItemFailure struct {
	ContractID int64  `json:"contract_id"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error"`
}

// RunResult is what a runner returns to the ledger. Err holds the text of a
// run-level failure; per-item errors live in Metrics.Failures.
type RunResult struct {
	Success bool       `json:"success"`
	Summary string     `json:"summary"`
	Metrics RunMetrics `json:"metrics"`
	Err     string     `json:"error,omitempty"`
}

// Status maps the result onto the run ledger's terminal status
func (r *RunResult) Status() RunStatus {
	if r.Success {
		return RunStatusSuccess
	}
	return RunStatusFailed
}
