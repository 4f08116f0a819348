package entities

import (
	"time"
)

// NotificationKind identifies what event a notification reports
type NotificationKind string

const (
	NotificationKindRunCompleted   NotificationKind = "run_completed"
	NotificationKindRunFailed      NotificationKind = "run_failed"
	NotificationKindLeaseExpiring  NotificationKind = "lease_expiring"
	NotificationKindContractExpiry NotificationKind = "contract_expiring"
	NotificationKindLowBalance     NotificationKind = "low_balance"
)

// NotificationStatus represents delivery state
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "queued"
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification represents an outbound message queued for email delivery
type Notification struct {
	ID             int64              `db:"id" json:"id"`
	OrganizationID int64              `db:"organization_id" json:"organization_id"`
	Kind           NotificationKind   `db:"kind" json:"kind"`
	Recipient      string             `db:"recipient" json:"recipient"`
	Subject        string             `db:"subject" json:"subject"`
	Body           string             `db:"body" json:"body"`
	Status         NotificationStatus `db:"status" json:"status"`
	RunID          *int64             `db:"run_id" json:"run_id,omitempty"`
	Attempts       int                `db:"attempts" json:"attempts"`
	LastError      *string            `db:"last_error" json:"last_error,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	SentAt         *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}

// IsPending reports whether the notification still needs delivery
func (n *Notification) IsPending() bool {
	return n.Status == NotificationStatusQueued
}
