package model

import "fmt"

// ValidationError covers incomplete or inconsistent booking input.
// Always recoverable: the workflow stays in selection and the caller
// re-prompts.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ConflictError means the interviewer already holds a scheduled booking
// for the requested slot. The caller should re-run the availability
// filter and re-prompt.
type ConflictError struct {
	InterviewerID int64
	Date          string
	Time          string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: interviewer %d already booked for %s %s", e.InterviewerID, e.Date, e.Time)
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PersistenceError wraps a failed write. Fatal to the attempt; since no
// id was returned the whole commit is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DeliveryKind classifies why a notification send failed. The kind
// decides retry policy: connectivity and timeout are transient,
// authentication means broken configuration and is never retried.
type DeliveryKind string

const (
	DeliveryConnectivity DeliveryKind = "connectivity"
	DeliveryAuth         DeliveryKind = "authentication"
	DeliveryTimeout      DeliveryKind = "timeout"
)

// DeliveryError means a notification could not be sent. Never fatal to
// the booking it belongs to.
type DeliveryError struct {
	Kind DeliveryKind
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery (%s): %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Transient reports whether a retry could plausibly succeed.
func (e *DeliveryError) Transient() bool {
	return e.Kind == DeliveryConnectivity || e.Kind == DeliveryTimeout
}

// TemplateError means rendering failed before any transport attempt.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
