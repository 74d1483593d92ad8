package project

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict covers mutations rejected because of the project's current
	// state: deleting a non-planned project, or a status write that lost a
	// race against a concurrent transition.
	ErrConflict = errors.New("project state conflict")
)

// InvalidTransitionError reports an illegal status change together with the
// destinations that are legal from the current state, so a caller can present
// valid choices without guessing.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}

	return fmt.Sprintf("invalid transition %s -> %s: allowed destinations %v", e.From, e.To, e.Allowed)
}
