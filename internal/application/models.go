package application

import "time"

// Status enumerates the lifecycle states of an appointment record.
type Status string

const (
	// StatusPending marks a record awaiting a decision.
	StatusPending Status = "pending"
	// StatusConfirmed marks a record the client accepted.
	StatusConfirmed Status = "confirmed"
	// StatusDeclined marks a record the client turned down.
	StatusDeclined Status = "declined"
)

// Action identifies the decision a capability link carries.
type Action string

const (
	// ActionOK confirms the appointment.
	ActionOK Action = "ok"
	// ActionNo declines the appointment.
	ActionNo Action = "no"
)

// ParseAction validates a caller supplied action string.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionOK:
		return ActionOK, nil
	case ActionNo:
		return ActionNo, nil
	}
	return "", ErrInvalidAction
}

// TargetStatus returns the status an action transitions a pending record to.
func (a Action) TargetStatus() Status {
	if a == ActionNo {
		return StatusDeclined
	}
	return StatusConfirmed
}

// Appointment represents an appointment record as seen by the service layer.
// SigningSalt never leaves the service except inside signature computations.
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

// MintParams captures caller provided fields for minting a link set. A nil
// TTL selects the configured default; a zero TTL mints an already expired
// link set, which is honored as given.
type MintParams struct {
	ClientName  string
	ClientPhone string
	ScheduledAt string
	TTL         *time.Duration
}

// MintResult carries the assigned identifier and the three relative link
// paths. The signature is embedded in each path; the salt is not.
type MintResult struct {
	ID          int64
	Status      Status
	ConfirmPage string
	OKPath      string
	NoPath      string
}

// DecideParams captures an inbound decision request.
type DecideParams struct {
	ID        int64
	Action    string
	Signature string
}

// DecideResult reports the persisted outcome of a decision. AlreadyApplied is
// true when the request repeated an action that had already been recorded and
// the call was a no-op.
type DecideResult struct {
	ID             int64
	Status         Status
	AlreadyApplied bool
}

// ConfirmationPage carries the data a confirmation page renders: the record
// summary plus the two action paths sharing the validated signature.
type ConfirmationPage struct {
	Appointment Appointment
	OKPath      string
	NoPath      string
}

// DecisionEvent describes a persisted decision handed to the notifier.
type DecisionEvent struct {
	ID        int64
	Status    Status
	DecidedAt time.Time
}
