package entities

import (
	"time"
)

// Drawdown is an append-only charge against a funding contract's balance.
// RunID links drawdowns created by an automation run; manual drawdowns leave
// it nil.
type Drawdown struct {
	ID              int64     `db:"id" json:"id"`
	OrganizationID  int64     `db:"organization_id" json:"organization_id"`
	ContractID      int64     `db:"contract_id" json:"contract_id"`
	RunID           *int64    `db:"run_id" json:"run_id,omitempty"`
	AmountCents     int64     `db:"amount_cents" json:"amount_cents"`
	SupportItemCode string    `db:"support_item_code" json:"support_item_code"`
	Note            string    `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
