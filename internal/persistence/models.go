package persistence

import "time"

// Status enumerates the lifecycle states of an appointment record.
type Status string

const (
	// StatusPending marks a freshly minted record awaiting a decision.
	StatusPending Status = "pending"
	// StatusConfirmed marks a record the client accepted.
	StatusConfirmed Status = "confirmed"
	// StatusDeclined marks a record the client turned down.
	StatusDeclined Status = "declined"
)

// Appointment represents an appointment record persisted for the
// confirmation-link protocol. SigningSalt and ExpiresAt belong to the
// protocol; the client fields are opaque payload carried for display and
// notification purposes only.
type Appointment struct {
	ID          int64
	ClientName  string
	ClientPhone string
	ScheduledAt string
	Status      Status
	SigningSalt string
	ExpiresAt   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
