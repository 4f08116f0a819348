package entities

import (
	"time"
)

// Organization is the tenant boundary. Every other record in the system is
// scoped to exactly one organization.
type Organization struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	ContactEmail   string    `db:"contact_email" json:"contact_email"`
	APITokenDigest string    `db:"api_token_digest" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// HasContactEmail reports whether operational notifications can be delivered
func (o *Organization) HasContactEmail() bool {
	return o.ContactEmail != ""
}
