package entities

import (
	"time"
)

// ResidentStatus represents a resident's occupancy state
type ResidentStatus string

const (
	ResidentStatusActive   ResidentStatus = "active"
	ResidentStatusInactive ResidentStatus = "inactive"
	ResidentStatusDeparted ResidentStatus = "departed"
)

// Resident represents a person living in one of an organization's houses
type Resident struct {
	ID             int64          `db:"id" json:"id"`
	OrganizationID int64          `db:"organization_id" json:"organization_id"`
	HouseID        *int64         `db:"house_id" json:"house_id,omitempty"`
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	DateOfBirth    *time.Time     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	NDISNumber     string         `db:"ndis_number" json:"ndis_number,omitempty"`
	Status         ResidentStatus `db:"status" json:"status"`
	MoveInDate     *time.Time     `db:"move_in_date" json:"move_in_date,omitempty"`
	MoveOutDate    *time.Time     `db:"move_out_date" json:"move_out_date,omitempty"`
	Notes          string         `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName returns the resident's display name
func (r *Resident) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// IsActive reports whether the resident currently occupies a house
func (r *Resident) IsActive() bool {
	return r.Status == ResidentStatusActive
}

// IsPlaced reports whether the resident is assigned to a house
func (r *Resident) IsPlaced() bool {
	return r.HouseID != nil
}
