package repository

import "errors"

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskProjectMismatch is returned when a sequence update names a project the task does not belong to
	ErrTaskProjectMismatch = errors.New("task does not belong to project")

	// ErrSequenceOutOfRange is returned when the requested sequence is outside [0, n-1]
	ErrSequenceOutOfRange = errors.New("sequence out of range")

	ErrTimeEntryNotFound = errors.New("time entry not found")
)
