package sequencer

import (
	"context"
	"errors"
	"fmt"
)

// Store persists a new sequence for a task and optionally returns the refreshed
// collection. A transport failure is reported through the error; an application
// failure through Result.Success.
type Store interface {
	UpdateSequence(ctx context.Context, taskID, collectionID int64, newSequence int) (Result, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, taskID, collectionID int64, newSequence int) (Result, error)

func (f StoreFunc) UpdateSequence(ctx context.Context, taskID, collectionID int64, newSequence int) (Result, error) {
	return f(ctx, taskID, collectionID, newSequence)
}

// Result is the outcome of a persistence call. UpdatedCollection is nil when the
// store did not send a list back.
type Result struct {
	Success           bool
	UpdatedCollection []Row
	Message           string
}

var (
	// ErrRejectedDragStart is returned when a drag starts while the collection is
	// locked or the row cannot be dragged.
	ErrRejectedDragStart = errors.New("drag start rejected")
	// ErrCommitFailure wraps every failed persistence attempt.
	ErrCommitFailure = errors.New("sequence commit failed")
	// ErrMalformedResponse is a success reply whose collection cannot be trusted.
	ErrMalformedResponse = errors.New("malformed sequence response")
	// ErrUnknownTask is returned for gestures about a task outside the collection.
	ErrUnknownTask = errors.New("task not in collection")
	// ErrInvalidIndex is returned for a drop outside the collection bounds.
	ErrInvalidIndex = errors.New("index out of range")
	// ErrBusy is returned by Reload while a drag or commit is in progress.
	ErrBusy = errors.New("collection busy")
)

// validateCollection checks a served collection before it replaces the local one.
func validateCollection(rows []Row, movedID int64) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: empty collection", ErrMalformedResponse)
	}
	seen := make(map[int64]struct{}, len(rows))
	for i, r := range rows {
		if r.ID <= 0 {
			return fmt.Errorf("%w: invalid task id %d", ErrMalformedResponse, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %d", ErrMalformedResponse, r.ID)
		}
		seen[r.ID] = struct{}{}
		if i > 0 && r.Sequence < rows[i-1].Sequence {
			return fmt.Errorf("%w: collection not ordered at index %d", ErrMalformedResponse, i)
		}
	}
	if _, ok := seen[movedID]; !ok {
		return fmt.Errorf("%w: moved task %d missing", ErrMalformedResponse, movedID)
	}
	return nil
}
