package entities

import (
	"fmt"
	"time"
)

// HouseStatus represents whether a property is in service
type HouseStatus string

const (
	HouseStatusActive   HouseStatus = "active"
	HouseStatusInactive HouseStatus = "inactive"
)

// House represents a residential-care property
type House struct {
	ID             int64       `db:"id" json:"id"`
	OrganizationID int64       `db:"organization_id" json:"organization_id"`
	Name           string      `db:"name" json:"name"`
	AddressLine    string      `db:"address_line" json:"address_line"`
	Suburb         string      `db:"suburb" json:"suburb"`
	State          string      `db:"state" json:"state"`
	Postcode       string      `db:"postcode" json:"postcode"`
	Capacity       int         `db:"capacity" json:"capacity"`
	Status         HouseStatus `db:"status" json:"status"`
	Notes          string      `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// FullAddress renders the single-line address used in eligibility listings
func (h *House) FullAddress() string {
	if h.Suburb == "" {
		return h.AddressLine
	}
	return fmt.Sprintf("%s, %s %s %s", h.AddressLine, h.Suburb, h.State, h.Postcode)
}

// IsActive reports whether the house is in service
func (h *House) IsActive() bool {
	return h.Status == HouseStatusActive
}
