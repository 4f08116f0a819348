package entities

import (
	"time"
)

// HeadLeaseStatus represents the lifecycle state of a head lease
type HeadLeaseStatus string

const (
	HeadLeaseStatusActive     HeadLeaseStatus = "active"
	HeadLeaseStatusExpired    HeadLeaseStatus = "expired"
	HeadLeaseStatusTerminated HeadLeaseStatus = "terminated"
)

// HeadLease represents the organization's master lease over a house,
// held with an external landlord and sublet to residents
type HeadLease struct {
	ID              int64           `db:"id" json:"id"`
	OrganizationID  int64           `db:"organization_id" json:"organization_id"`
	HouseID         int64           `db:"house_id" json:"house_id"`
	LandlordName    string          `db:"landlord_name" json:"landlord_name"`
	LandlordEmail   string          `db:"landlord_email" json:"landlord_email,omitempty"`
	RentCents       int64           `db:"rent_cents" json:"rent_cents"`
	RentFrequency   Frequency       `db:"rent_frequency" json:"rent_frequency"`
	BondCents       int64           `db:"bond_cents" json:"bond_cents"`
	StartDate       time.Time       `db:"start_date" json:"start_date"`
	EndDate         *time.Time      `db:"end_date" json:"end_date,omitempty"`
	Status          HeadLeaseStatus `db:"status" json:"status"`
	AgreementRef    string          `db:"agreement_ref" json:"agreement_ref,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the lease is currently in force
func (l *HeadLease) IsActive() bool {
	return l.Status == HeadLeaseStatusActive
}

// IsExpiringWithin reports whether the lease ends within the given window of now.
// Leases without an end date never expire.
func (l *HeadLease) IsExpiringWithin(now time.Time, window time.Duration) bool {
	if l.EndDate == nil || !l.IsActive() {
		return false
	}
	end := *l.EndDate
	return !end.Before(now) && end.Sub(now) <= window
}
