// Package model holds the domain types shared by the client: the registered
// identity, tasks owned by it, the paid-plan entitlement record, and the
// ephemeral list filter.
package model

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists all valid task statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the human-readable form shown in the list.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Identity is the registered user record identifying the task owner. It is
// created once via registration and immutable afterwards.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Task is a single task entry. Its lifecycle is server-authoritative; the
// client only holds a transient cached copy.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
}

// CreatedDay returns the creation time truncated to day granularity in
// YYYY-MM-DD form, the shape filter dates are compared against.
func (t Task) CreatedDay() string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Format("2006-01-02")
}

// Entitlement is the record written after a verified payment. Its presence
// with an approved status is the sole source of truth for unlimited access.
type Entitlement struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Plan          string `json:"plan"`
}

// EntitlementApproved is the status value that grants unlimited tasks.
const EntitlementApproved = "approved"

// Approved reports whether this record grants the unlimited plan.
func (e Entitlement) Approved() bool { return e.Status == EntitlementApproved }

// Filter is the ephemeral list filter. Zero values mean "no constraint".
// Date, when set, must already be normalized to YYYY-MM-DD.
type Filter struct {
	Name   string
	Status Status
	Date   string
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool { return f.Name == "" && f.Status == "" && f.Date == "" }
