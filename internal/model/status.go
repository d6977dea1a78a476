package model

import "strings"

// Status is the fixed displayed-status vocabulary. Unrecognized backend
// statuses pass through as their own literal value and are styled like
// StatusInProgress.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// NormalizeStatus maps the variable backend status vocabulary onto the fixed
// display set. Matching is case-insensitive.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "processing", "shipped", "in-progress":
		return StatusInProgress
	case "completed":
		return StatusCompleted
	case "delivered":
		return StatusDelivered
	case "cancelled", "canceled":
		return StatusCancelled
	case "":
		return StatusInProgress
	default:
		return Status(raw)
	}
}

// Known reports whether s is one of the fixed display statuses.
func (s Status) Known() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the displayed status may move from s to next:
// in-progress may complete, deliver or cancel; completed may still deliver.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusInProgress:
		return next == StatusCompleted || next == StatusDelivered || next == StatusCancelled
	case StatusCompleted:
		return next == StatusDelivered
	default:
		return false
	}
}

// Cancellable reports whether the cancel action is offered for a raw backend
// status. Only orders still in flight can be cancelled.
func Cancellable(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "processing", "in-progress":
		return true
	}
	return false
}
