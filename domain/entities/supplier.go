package entities

import (
	"time"
)

// SupplierCategory classifies what a supplier provides
type SupplierCategory string

const (
	SupplierCategoryUtility     SupplierCategory = "utility"
	SupplierCategoryMaintenance SupplierCategory = "maintenance"
	SupplierCategoryCleaning    SupplierCategory = "cleaning"
	SupplierCategoryOther       SupplierCategory = "other"
)

// IsValid reports whether the category is one of the known values
func (c SupplierCategory) IsValid() bool {
	switch c {
	case SupplierCategoryUtility, SupplierCategoryMaintenance, SupplierCategoryCleaning, SupplierCategoryOther:
		return true
	}
	return false
}

// Supplier represents a vendor the organization pays for goods or services
type Supplier struct {
	ID             int64            `db:"id" json:"id"`
	OrganizationID int64            `db:"organization_id" json:"organization_id"`
	Name           string           `db:"name" json:"name"`
	Category       SupplierCategory `db:"category" json:"category"`
	ABN            string           `db:"abn" json:"abn,omitempty"`
	ContactName    string           `db:"contact_name" json:"contact_name,omitempty"`
	ContactEmail   string           `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone   string           `db:"contact_phone" json:"contact_phone,omitempty"`
	Active         bool             `db:"active" json:"active"`
	Notes          string           `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
