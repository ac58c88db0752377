package services

import "errors"

// Error taxonomy shared by the waitlist engine and its collaborators.
// Controllers map these onto HTTP statuses; nothing below is retried here.
var (
	// ErrNotFound means the referenced entry or appointment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the entry was already booked, or a concurrent
	// conversion won the race. Callers may re-select and retry with a
	// different entry.
	ErrConflict = errors.New("conflict")

	// ErrInvalidStateTransition means the requested transition is not
	// permitted from the entry's current status.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrValidation means the input was malformed and nothing was persisted.
	ErrValidation = errors.New("validation failed")

	// ErrCollaborator wraps failures from the persistence layer or the
	// appointment collaborator. Conversions leave no partial state behind it.
	ErrCollaborator = errors.New("collaborator failure")
)
