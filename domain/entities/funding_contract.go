package entities

import (
	"time"
)

// ContractStatus represents the lifecycle state of a funding contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusExpired   ContractStatus = "expired"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// FundingContract represents a resident's funding agreement. The balance is
// drawn down by billing runs at the configured rate and frequency.
type FundingContract struct {
	ID                int64          `db:"id" json:"id"`
	OrganizationID    int64          `db:"organization_id" json:"organization_id"`
	ResidentID        int64          `db:"resident_id" json:"resident_id"`
	Name              string         `db:"name" json:"name"`
	SupportItemCode   string         `db:"support_item_code" json:"support_item_code"`
	Status            ContractStatus `db:"status" json:"status"`
	StartDate         time.Time      `db:"start_date" json:"start_date"`
	EndDate           *time.Time     `db:"end_date" json:"end_date,omitempty"`
	TotalValueCents   int64          `db:"total_value_cents" json:"total_value_cents"`
	BalanceCents      int64          `db:"balance_cents" json:"balance_cents"`
	DrawdownRateCents int64          `db:"drawdown_rate_cents" json:"drawdown_rate_cents"`
	Frequency         Frequency      `db:"frequency" json:"frequency"`
	LastDrawdownAt    *time.Time     `db:"last_drawdown_at" json:"last_drawdown_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the contract can be billed
func (c *FundingContract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// NextDrawdownDate returns the date the next drawdown falls due: the start
// date for a never-billed contract, otherwise one frequency period after the
// last drawdown.
func (c *FundingContract) NextDrawdownDate() time.Time {
	if c.LastDrawdownAt == nil {
		return dateOnly(c.StartDate)
	}
	return dateOnly(c.Frequency.Next(*c.LastDrawdownAt))
}

// RunAmountCents returns how much a billing run would draw down now: the
// configured rate, capped so the balance never goes negative.
func (c *FundingContract) RunAmountCents() int64 {
	if c.DrawdownRateCents < c.BalanceCents {
		return c.DrawdownRateCents
	}
	return c.BalanceCents
}

// EligibleAt evaluates the three eligibility conditions against the given
// day. Reason names the first failing condition and is empty when eligible.
func (c *FundingContract) EligibleAt(today time.Time) (bool, string) {
	if !c.IsActive() {
		return false, "contract not active"
	}
	if c.BalanceCents <= 0 {
		return false, "balance exhausted"
	}
	if c.NextDrawdownDate().After(dateOnly(today)) {
		return false, "not yet due"
	}
	return true, ""
}

// EligibleContract is the derived, never-persisted eligibility view of a
// funding contract. Recomputed on every query.
type EligibleContract struct {
	ContractID      int64     `json:"contract_id"`
	ResidentID      int64     `json:"resident_id"`
	ResidentName    string    `json:"resident_name"`
	HouseAddress    string    `json:"house_address,omitempty"`
	BalanceCents    int64     `json:"balance_cents"`
	RunAmountCents  int64     `json:"run_amount_cents"`
	NextRunDate     time.Time `json:"next_run_date"`
	Frequency       Frequency `json:"frequency"`
	SupportItemCode string    `json:"support_item_code"`
	IsEligible      bool      `json:"is_eligible"`
	Reason          string    `json:"reason,omitempty"`
}

// dateOnly truncates a timestamp to midnight UTC
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
