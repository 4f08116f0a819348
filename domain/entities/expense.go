package entities

import (
	"time"
)

// ExpenseCategory classifies what an expense was for
type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "rent"
	ExpenseCategoryUtilities   ExpenseCategory = "utilities"
	ExpenseCategoryMaintenance ExpenseCategory = "maintenance"
	ExpenseCategoryCleaning    ExpenseCategory = "cleaning"
	ExpenseCategoryInsurance   ExpenseCategory = "insurance"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

// IsValid reports whether the category is one of the known values
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategoryMaintenance,
		ExpenseCategoryCleaning, ExpenseCategoryInsurance, ExpenseCategoryOther:
		return true
	}
	return false
}

// ExpenseStatus represents where an expense sits in the payment lifecycle
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusPaid     ExpenseStatus = "paid"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

// Expense represents a cost incurred against a house, optionally attributed to a supplier
type Expense struct {
	ID             int64           `db:"id" json:"id"`
	OrganizationID int64           `db:"organization_id" json:"organization_id"`
	HouseID        int64           `db:"house_id" json:"house_id"`
	SupplierID     *int64          `db:"supplier_id" json:"supplier_id,omitempty"`
	Category       ExpenseCategory `db:"category" json:"category"`
	Description    string          `db:"description" json:"description"`
	AmountCents    int64           `db:"amount_cents" json:"amount_cents"`
	GSTCents       int64           `db:"gst_cents" json:"gst_cents"`
	IncurredOn     time.Time       `db:"incurred_on" json:"incurred_on"`
	Status         ExpenseStatus   `db:"status" json:"status"`
	InvoiceRef     string          `db:"invoice_ref" json:"invoice_ref,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// TotalCents returns the amount including GST
func (e *Expense) TotalCents() int64 {
	return e.AmountCents + e.GSTCents
}

// IsSettled reports whether the expense has been paid out
func (e *Expense) IsSettled() bool {
	return e.Status == ExpenseStatusPaid
}
