package entities

import (
	"time"
)

// UtilityType identifies the metered service a reading belongs to
type UtilityType string

const (
	UtilityTypeElectricity UtilityType = "electricity"
	UtilityTypeGas         UtilityType = "gas"
	UtilityTypeWater       UtilityType = "water"
	UtilityTypeInternet    UtilityType = "internet"
)

// IsValid reports whether the utility type is one of the known values
func (u UtilityType) IsValid() bool {
	switch u {
	case UtilityTypeElectricity, UtilityTypeGas, UtilityTypeWater, UtilityTypeInternet:
		return true
	}
	return false
}

// UtilityReading represents a meter reading recorded for a house
type UtilityReading struct {
	ID             int64       `db:"id" json:"id"`
	OrganizationID int64       `db:"organization_id" json:"organization_id"`
	HouseID        int64       `db:"house_id" json:"house_id"`
	SupplierID     *int64      `db:"supplier_id" json:"supplier_id,omitempty"`
	UtilityType    UtilityType `db:"utility_type" json:"utility_type"`
	Reading        float64     `db:"reading" json:"reading"`
	Unit           string      `db:"unit" json:"unit"`
	ReadAt         time.Time   `db:"read_at" json:"read_at"`
	CostCents      *int64      `db:"cost_cents" json:"cost_cents,omitempty"`
	Notes          string      `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// UsageSince returns the consumption delta against an earlier reading of the
// same meter. Returns 0 when the meter was replaced or rolled back.
func (r *UtilityReading) UsageSince(prev *UtilityReading) float64 {
	if prev == nil || prev.Reading > r.Reading {
		return 0
	}
	return r.Reading - prev.Reading
}
